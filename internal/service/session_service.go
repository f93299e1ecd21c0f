package service

import (
	"time"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

type SessionStore interface {
	Create(vehicleID int, startedAt time.Time) (*db.Session, error)
	Get(sessionID int) (*db.Session, error)
	ListByVehicle(vehicleID int) ([]db.Session, error)
	GetOpenForVehicle(vehicleID int) (*db.Session, error)
	Close(sessionID int, endedAt time.Time) (*db.Session, error)
	Delete(sessionID int) error
}

// SessionService covers the back-office view of stays: the gate drives the
// usual lifecycle, these operations exist for operators and cleanup.
type SessionService struct {
	sessions SessionStore
	vehicles VehicleGetter

	now func() time.Time
}

func NewSessionService(sessions SessionStore, vehicles VehicleGetter) *SessionService {
	return &SessionService{
		sessions: sessions,
		vehicles: vehicles,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a stay manually, e.g. when a camera missed the entry. The
// one-open-session rule still applies.
func (s *SessionService) Start(vehicleID int, startedAt *time.Time) (*db.Session, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}
	if vehicle.IsBlacklisted {
		return nil, apperrors.Forbidden("vehicle is blacklisted")
	}

	at := s.now()
	if startedAt != nil {
		at = startedAt.UTC()
	}
	return s.sessions.Create(vehicleID, at)
}

func (s *SessionService) Get(sessionID int) (*db.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (s *SessionService) ListForVehicle(vehicleID int) ([]db.Session, error) {
	return s.sessions.ListByVehicle(vehicleID)
}

// End closes a stay from the back office without charging it.
func (s *SessionService) End(sessionID int, endedAt *time.Time) (*db.Session, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == db.SessionClosed {
		return nil, apperrors.Conflict("session is already closed")
	}

	at := s.now()
	if endedAt != nil {
		at = endedAt.UTC()
	}
	if at.Before(sess.StartedAt) {
		return nil, apperrors.Validation("ended_at must not precede started_at")
	}
	return s.sessions.Close(sess.ID, at)
}

func (s *SessionService) Delete(sessionID int) error {
	if _, err := s.Get(sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(sessionID)
}
