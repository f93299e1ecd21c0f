package entities

import (
	"time"

	"petroffparking/internal/db"
)

type SubscriptionCreateRequest struct {
	VehicleID int       `json:"vehicle_id"`
	PlanID    int       `json:"plan_id"`
	AutoRenew *bool     `json:"auto_renew,omitempty"` // defaults to true
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
}

type SubscriptionStatusUpdateRequest struct {
	Status    db.SubscriptionStatus `json:"status"`
	AutoRenew *bool                 `json:"auto_renew,omitempty"`
}

type SubscriptionResponse struct {
	ID        int                   `json:"id"`
	VehicleID int                   `json:"vehicle_id"`
	PlanID    int                   `json:"plan_id"`
	Status    db.SubscriptionStatus `json:"status"`
	AutoRenew bool                  `json:"auto_renew"`
	ValidFrom time.Time             `json:"valid_from"`
	ValidTo   time.Time             `json:"valid_to"`
}

func NewSubscriptionResponse(s *db.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        s.ID,
		VehicleID: s.VehicleID,
		PlanID:    s.PlanID,
		Status:    s.Status,
		AutoRenew: s.AutoRenew,
		ValidFrom: s.ValidFrom,
		ValidTo:   s.ValidTo,
	}
}
