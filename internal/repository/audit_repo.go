package repository

import (
	"database/sql"
	"fmt"

	"petroffparking/internal/db"
)

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(database *sql.DB) *AuditRepository {
	return &AuditRepository{DB: database}
}

// Insert appends one audit event. The table is append-only; there are no
// update or delete methods on purpose.
func (r *AuditRepository) Insert(adminID, vehicleID *int, action, reason string) (*db.AuditEvent, error) {
	var evt db.AuditEvent
	query := `
		INSERT INTO audit_events (admin_id, vehicle_id, action, reason)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, admin_id, vehicle_id, action, COALESCE(reason, ''), created_at`
	err := r.DB.QueryRow(query, adminID, vehicleID, action, reason).
		Scan(&evt.ID, &evt.AdminID, &evt.VehicleID, &evt.Action, &evt.Reason, &evt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error writing audit event: %w", err)
	}
	return &evt, nil
}

func (r *AuditRepository) ListByVehicle(vehicleID int) ([]db.AuditEvent, error) {
	rows, err := r.DB.Query(`
		SELECT id, admin_id, vehicle_id, action, COALESCE(reason, ''), created_at
		FROM audit_events
		WHERE vehicle_id = $1
		ORDER BY id DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("error listing audit events for vehicle %d: %w", vehicleID, err)
	}
	defer rows.Close()

	var events []db.AuditEvent
	for rows.Next() {
		var evt db.AuditEvent
		if err := rows.Scan(&evt.ID, &evt.AdminID, &evt.VehicleID, &evt.Action, &evt.Reason, &evt.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
