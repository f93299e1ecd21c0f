package entities

import "petroffparking/internal/db"

type PaymentCreateRequest struct {
	SessionID      *int   `json:"session_id,omitempty"`
	SubscriptionID *int   `json:"subscription_id,omitempty"`
	Currency       string `json:"currency"`
	AmountCents    int64  `json:"amount_cents"`
	Method         string `json:"method,omitempty"`
}

type PaymentStatusUpdateRequest struct {
	Status db.PaymentStatus `json:"status"`
}

type PaymentResponse struct {
	ID             int              `json:"id"`
	SessionID      *int             `json:"session_id,omitempty"`
	SubscriptionID *int             `json:"subscription_id,omitempty"`
	Status         db.PaymentStatus `json:"status"`
	Currency       string           `json:"currency"`
	AmountCents    int64            `json:"amount_cents"`
	Method         string           `json:"method,omitempty"`
}

func NewPaymentResponse(p *db.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		SessionID:      p.SessionID,
		SubscriptionID: p.SubscriptionID,
		Status:         p.Status,
		Currency:       p.Currency,
		AmountCents:    p.AmountCents,
		Method:         p.Method,
	}
}

// CheckoutResponse is returned after creating a hosted checkout for a
// pending charge. The URL is where the payer completes the payment.
type CheckoutResponse struct {
	PaymentID  int    `json:"payment_id"`
	CheckoutID string `json:"checkout_id"`
	URL        string `json:"url"`
}
