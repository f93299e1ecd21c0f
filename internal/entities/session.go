package entities

import "time"

type SessionResponse struct {
	ID            int        `json:"id"`
	VehicleID     int        `json:"vehicle_id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	Status        string     `json:"status"`
	PlanID        *int       `json:"plan_id,omitempty"`
	Duration      *int       `json:"duration,omitempty"`
	AmountCharged *int64     `json:"amount_charged,omitempty"`
}
