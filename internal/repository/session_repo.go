package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(database *sql.DB) *SessionRepository {
	return &SessionRepository{DB: database}
}

const sessionColumns = `id, vehicle_id, started_at, ended_at, status, plan_id, duration, amount_charged, created_at, updated_at`

func (r *SessionRepository) scanSession(row *sql.Row) (*db.Session, error) {
	var s db.Session
	err := row.Scan(&s.ID, &s.VehicleID, &s.StartedAt, &s.EndedAt, &s.Status,
		&s.PlanID, &s.Duration, &s.AmountCharged, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Create(vehicleID int, startedAt time.Time) (*db.Session, error) {
	query := `
		INSERT INTO sessions (vehicle_id, started_at, status)
		VALUES ($1, $2, 'open')
		RETURNING ` + sessionColumns
	s, err := r.scanSession(r.DB.QueryRow(query, vehicleID, startedAt))
	if err != nil {
		// Partial unique index "one session with ended_at IS NULL per
		// vehicle" backs the check-then-act sequence in the gate service.
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("vehicle already has an open session")
		}
		return nil, fmt.Errorf("error creating session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Get(sessionID int) (*db.Session, error) {
	s, err := r.scanSession(r.DB.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying session %d: %w", sessionID, err)
	}
	return s, nil
}

func (r *SessionRepository) ListByVehicle(vehicleID int) ([]db.Session, error) {
	rows, err := r.DB.Query(`SELECT `+sessionColumns+` FROM sessions WHERE vehicle_id = $1 ORDER BY id DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("error listing sessions for vehicle %d: %w", vehicleID, err)
	}
	defer rows.Close()

	var sessions []db.Session
	for rows.Next() {
		var s db.Session
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.StartedAt, &s.EndedAt, &s.Status,
			&s.PlanID, &s.Duration, &s.AmountCharged, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetOpenForVehicle returns the session the vehicle is currently inside on,
// or nil. Open means ended_at has not been recorded yet.
func (r *SessionRepository) GetOpenForVehicle(vehicleID int) (*db.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE vehicle_id = $1 AND ended_at IS NULL
		ORDER BY id DESC
		LIMIT 1`
	s, err := r.scanSession(r.DB.QueryRow(query, vehicleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying open session for vehicle %d: %w", vehicleID, err)
	}
	return s, nil
}

// LatestAwaitingPaymentForVehicle finds a recent unpaid exit so a duplicate
// exit scan can be answered with the same quote.
func (r *SessionRepository) LatestAwaitingPaymentForVehicle(vehicleID int, endedAfter time.Time) (*db.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE vehicle_id = $1 AND status = 'awaiting_payment' AND ended_at >= $2
		ORDER BY id DESC
		LIMIT 1`
	s, err := r.scanSession(r.DB.QueryRow(query, vehicleID, endedAfter))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying awaiting-payment session for vehicle %d: %w", vehicleID, err)
	}
	return s, nil
}

// Close ends a session for free or after settlement: records ended_at (when
// not already recorded) and flips status to closed.
func (r *SessionRepository) Close(sessionID int, endedAt time.Time) (*db.Session, error) {
	query := `
		UPDATE sessions
		SET ended_at = COALESCE(ended_at, $2), status = 'closed', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	s, err := r.scanSession(r.DB.QueryRow(query, sessionID, endedAt))
	if err != nil {
		return nil, fmt.Errorf("error closing session %d: %w", sessionID, err)
	}
	return s, nil
}

// MarkAwaitingPayment snapshots the computed charge on the session and takes
// it out of the open set. The session stays unpaid until the ledger settles it.
func (r *SessionRepository) MarkAwaitingPayment(sessionID int, endedAt time.Time, planID int, durationMin int, amountCents int64) (*db.Session, error) {
	query := `
		UPDATE sessions
		SET ended_at = $2, status = 'awaiting_payment', plan_id = $3, duration = $4, amount_charged = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns
	s, err := r.scanSession(r.DB.QueryRow(query, sessionID, endedAt, planID, durationMin, amountCents))
	if err != nil {
		return nil, fmt.Errorf("error marking session %d awaiting payment: %w", sessionID, err)
	}
	return s, nil
}

func (r *SessionRepository) Delete(sessionID int) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("error deleting session %d: %w", sessionID, err)
	}
	return nil
}
