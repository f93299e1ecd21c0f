package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

func (f *fakeSessionStore) Get(sessionID int) (*db.Session, error) {
	return f.sessions[sessionID], nil
}

func (f *fakeSessionStore) ListByVehicle(vehicleID int) ([]db.Session, error) {
	var out []db.Session
	for _, s := range f.sessions {
		if s.VehicleID == vehicleID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Delete(sessionID int) error {
	delete(f.sessions, sessionID)
	return nil
}

type sessionFixture struct {
	svc      *SessionService
	sessions *fakeSessionStore
	vehicles *fakeVehicleGetter
	now      time.Time
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions: newFakeSessionStore(),
		vehicles: &fakeVehicleGetter{vehicles: map[int]*db.Vehicle{1: {ID: 1}}},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewSessionService(f.sessions, f.vehicles)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestManualSessionStart(t *testing.T) {
	f := newSessionFixture()

	sess, err := f.svc.Start(1, nil)
	require.NoError(t, err)
	assert.Equal(t, db.SessionOpen, sess.Status)
	assert.Equal(t, f.now, sess.StartedAt)
}

func TestManualSessionStartEnforcesOneOpen(t *testing.T) {
	f := newSessionFixture()
	_, err := f.svc.Start(1, nil)
	require.NoError(t, err)

	_, err = f.svc.Start(1, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestManualSessionStartRejectsBlacklisted(t *testing.T) {
	f := newSessionFixture()
	f.vehicles.vehicles[1].IsBlacklisted = true

	_, err := f.svc.Start(1, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestManualSessionEnd(t *testing.T) {
	f := newSessionFixture()
	sess, _ := f.svc.Start(1, nil)

	endedAt := f.now.Add(30 * time.Minute)
	closed, err := f.svc.End(sess.ID, &endedAt)
	require.NoError(t, err)
	assert.Equal(t, db.SessionClosed, closed.Status)
	assert.Equal(t, endedAt, *closed.EndedAt)

	_, err = f.svc.End(sess.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestManualSessionEndRejectsTimeBeforeStart(t *testing.T) {
	f := newSessionFixture()
	sess, _ := f.svc.Start(1, nil)

	endedAt := f.now.Add(-time.Minute)
	_, err := f.svc.End(sess.ID, &endedAt)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSessionDeleteUnknown(t *testing.T) {
	f := newSessionFixture()

	err := f.svc.Delete(42)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
