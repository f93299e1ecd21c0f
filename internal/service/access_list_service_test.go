package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

type fakeAccessVehicleStore struct {
	vehicles map[int]*db.Vehicle
	deleted  []int
}

func (f *fakeAccessVehicleStore) GetByID(vehicleID int) (*db.Vehicle, error) {
	return f.vehicles[vehicleID], nil
}

func (f *fakeAccessVehicleStore) SetBlacklist(vehicleID int, blacklisted bool) (*db.Vehicle, error) {
	v := f.vehicles[vehicleID]
	if v == nil {
		return nil, nil
	}
	v.IsBlacklisted = blacklisted
	return v, nil
}

func (f *fakeAccessVehicleStore) DeleteIfBlacklisted(vehicleID int) (bool, error) {
	v := f.vehicles[vehicleID]
	if v == nil || !v.IsBlacklisted {
		return false, nil
	}
	delete(f.vehicles, vehicleID)
	f.deleted = append(f.deleted, vehicleID)
	return true, nil
}

type fakeAccessSubscriptionStore struct {
	canceled int64
	resumed  int64

	cancelCalls []int
	resumeCalls []int
}

func (f *fakeAccessSubscriptionStore) CancelAllActiveForVehicle(vehicleID int) (int64, error) {
	f.cancelCalls = append(f.cancelCalls, vehicleID)
	return f.canceled, nil
}

func (f *fakeAccessSubscriptionStore) ResumePausedForVehicle(vehicleID int) (int64, error) {
	f.resumeCalls = append(f.resumeCalls, vehicleID)
	return f.resumed, nil
}

type fakeAuditStore struct {
	events []db.AuditEvent
}

func (f *fakeAuditStore) Insert(adminID, vehicleID *int, action, reason string) (*db.AuditEvent, error) {
	evt := db.AuditEvent{ID: len(f.events) + 1, AdminID: adminID, VehicleID: vehicleID, Action: action, Reason: reason}
	f.events = append(f.events, evt)
	return &evt, nil
}

func (f *fakeAuditStore) ListByVehicle(vehicleID int) ([]db.AuditEvent, error) {
	var out []db.AuditEvent
	for _, e := range f.events {
		if e.VehicleID != nil && *e.VehicleID == vehicleID {
			out = append(out, e)
		}
	}
	return out, nil
}

type accessListFixture struct {
	svc      *AccessListService
	vehicles *fakeAccessVehicleStore
	subs     *fakeAccessSubscriptionStore
	audit    *fakeAuditStore
}

func newAccessListFixture() *accessListFixture {
	f := &accessListFixture{
		vehicles: &fakeAccessVehicleStore{vehicles: map[int]*db.Vehicle{1: {ID: 1}}},
		subs:     &fakeAccessSubscriptionStore{},
		audit:    &fakeAuditStore{},
	}
	f.svc = NewAccessListService(f.vehicles, f.subs, f.audit)
	return f
}

func TestBlacklistCancelsSubscriptionsAndAudits(t *testing.T) {
	f := newAccessListFixture()
	f.subs.canceled = 2
	adminID := 5

	vehicle, err := f.svc.Blacklist(1, &adminID, "repeated barrier tailgating")
	require.NoError(t, err)
	assert.True(t, vehicle.IsBlacklisted)
	assert.Equal(t, []int{1}, f.subs.cancelCalls)

	require.Len(t, f.audit.events, 1)
	evt := f.audit.events[0]
	assert.Equal(t, "vehicle.blacklist", evt.Action)
	assert.Equal(t, "repeated barrier tailgating", evt.Reason)
	require.NotNil(t, evt.AdminID)
	assert.Equal(t, 5, *evt.AdminID)
}

func TestBlacklistUnknownVehicle(t *testing.T) {
	f := newAccessListFixture()

	_, err := f.svc.Blacklist(99, nil, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Empty(t, f.audit.events)
}

func TestWhitelistClearsFlagWithoutResume(t *testing.T) {
	f := newAccessListFixture()
	f.vehicles.vehicles[1].IsBlacklisted = true

	vehicle, err := f.svc.Whitelist(1, nil, "dispute resolved", false)
	require.NoError(t, err)
	assert.False(t, vehicle.IsBlacklisted)
	assert.Empty(t, f.subs.resumeCalls)

	require.Len(t, f.audit.events, 1)
	assert.Equal(t, "vehicle.whitelist", f.audit.events[0].Action)
}

func TestWhitelistWithResume(t *testing.T) {
	f := newAccessListFixture()
	f.vehicles.vehicles[1].IsBlacklisted = true
	f.subs.resumed = 1

	_, err := f.svc.Whitelist(1, nil, "", true)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, f.subs.resumeCalls)
}

func TestDeleteBlacklistedRequiresFlag(t *testing.T) {
	f := newAccessListFixture()

	err := f.svc.DeleteBlacklisted(1, nil, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Empty(t, f.vehicles.deleted)
}

func TestDeleteBlacklistedWritesAuditFirst(t *testing.T) {
	f := newAccessListFixture()
	f.vehicles.vehicles[1].IsBlacklisted = true

	err := f.svc.DeleteBlacklisted(1, nil, "purged after retention period")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, f.vehicles.deleted)

	// The audit row survives the vehicle row.
	require.Len(t, f.audit.events, 1)
	assert.Equal(t, "vehicle.delete_blacklisted", f.audit.events[0].Action)
}

func TestAuditTrail(t *testing.T) {
	f := newAccessListFixture()
	f.svc.Blacklist(1, nil, "first")
	f.svc.Whitelist(1, nil, "second", false)

	events, err := f.svc.AuditTrail(1)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
