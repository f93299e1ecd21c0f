package db

// Status values were free-form strings in earlier iterations of this system.
// Keeping them as closed types with explicit transition tables makes these
// the single place that decides which moves are legal.

type SessionStatus string

const (
	SessionOpen            SessionStatus = "open"
	SessionAwaitingPayment SessionStatus = "awaiting_payment"
	SessionClosed          SessionStatus = "closed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// CanTransitionTo reports whether moving to next is legal. Requesting the
// current status again is treated as a no-op by callers, not here.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentPending:
		return next == PaymentSucceeded || next == PaymentFailed
	case PaymentSucceeded:
		return next == PaymentRefunded
	default: // failed and refunded are terminal
		return false
	}
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSucceeded, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionActive         SubscriptionStatus = "active"
	SubscriptionPaused         SubscriptionStatus = "paused"
	SubscriptionCanceled       SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionPendingPayment, SubscriptionActive, SubscriptionPaused, SubscriptionCanceled:
		return true
	}
	return false
}

type PlanType string

const (
	PlanSubscription PlanType = "subscription"
	PlanVisitor      PlanType = "visitor"
)

func (t PlanType) Valid() bool {
	return t == PlanSubscription || t == PlanVisitor
}

type BillingPeriod string

const (
	BillingMonth BillingPeriod = "month"
	BillingWeek  BillingPeriod = "week"
	BillingDay   BillingPeriod = "day"
	BillingYear  BillingPeriod = "year"
)

func (b BillingPeriod) Valid() bool {
	switch b {
	case BillingMonth, BillingWeek, BillingDay, BillingYear:
		return true
	}
	return false
}
