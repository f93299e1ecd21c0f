package entities

import "petroffparking/internal/db"

type PlanRequest struct {
	Type                db.PlanType       `json:"type"`
	Currency            string            `json:"currency"`
	PeriodPriceCents    *int64            `json:"period_price_cents,omitempty"`
	BillingPeriod       *db.BillingPeriod `json:"billing_period,omitempty"`
	PricePerMinuteCents *int64            `json:"price_per_minute_cents,omitempty"`
	Method              string            `json:"method,omitempty"`
	StripePriceID       string            `json:"stripe_price_id,omitempty"`
}

type PlanResponse struct {
	ID                  int               `json:"id"`
	Type                db.PlanType       `json:"type"`
	Currency            string            `json:"currency"`
	PeriodPriceCents    *int64            `json:"period_price_cents,omitempty"`
	BillingPeriod       *db.BillingPeriod `json:"billing_period,omitempty"`
	PricePerMinuteCents *int64            `json:"price_per_minute_cents,omitempty"`
	Method              string            `json:"method,omitempty"`
}

func NewPlanResponse(p *db.Plan) PlanResponse {
	return PlanResponse{
		ID:                  p.ID,
		Type:                p.Type,
		Currency:            p.Currency,
		PeriodPriceCents:    p.PeriodPriceCents,
		BillingPeriod:       p.BillingPeriod,
		PricePerMinuteCents: p.PricePerMinuteCents,
		Method:              p.Method,
	}
}
