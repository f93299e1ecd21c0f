package entities

import "time"

type ScanRequest struct {
	RegionCode string `json:"region_code"`
	PlateText  string `json:"plate_text"`
	GateID     string `json:"gate_id,omitempty"`
	Source     string `json:"source,omitempty"`
}

// EntryScanResult is what the gate decides for an entry scan.
// Status is "open" on success; denials are reported as errors by the service.
type EntryScanResult struct {
	SessionID     int       `json:"session_id"`
	Status        string    `json:"status"`         // "open"
	Reason        string    `json:"reason"`         // "created" | "existing_open_session"
	BarrierAction string    `json:"barrier_action"` // "open" | "hold"
	CreatedAtUTC  time.Time `json:"created_at_utc"`
}

type ExitScanResult struct {
	SessionID       *int   `json:"session_id"`
	Status          string `json:"status"` // "closed" | "awaiting_payment" | "error"
	BarrierAction   string `json:"barrier_action"`
	Detail          string `json:"detail,omitempty"`
	AmountCents     *int64 `json:"amount_cents,omitempty"`
	Currency        string `json:"currency,omitempty"`
	MinutesBillable *int   `json:"minutes_billable,omitempty"`
	PlanID          *int   `json:"plan_id,omitempty"`
}
