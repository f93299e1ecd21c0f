package db

import "time"

type Driver struct {
	ID        int
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

type Vehicle struct {
	ID            int
	DriverID      int
	RegionCode    string
	PlateText     string
	IsBlacklisted bool
	CreatedAt     time.Time
}

type Session struct {
	ID            int
	VehicleID     int
	StartedAt     time.Time
	EndedAt       *time.Time // nil while the vehicle is still inside
	Status        SessionStatus
	PlanID        *int
	Duration      *int   // billable minutes, snapshot taken at exit
	AmountCharged *int64 // cents, snapshot taken at exit
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Plan struct {
	ID                  int
	Type                PlanType
	Currency            string
	PeriodPriceCents    *int64 // subscription plans
	BillingPeriod       *BillingPeriod
	PricePerMinuteCents *int64 // visitor plans
	Method              string
	StripePriceID       string
	CreatedAt           time.Time
}

type Subscription struct {
	ID                   int
	VehicleID            int
	PlanID               int
	Status               SubscriptionStatus
	AutoRenew            bool
	ValidFrom            time.Time
	ValidTo              time.Time
	StripeSubscriptionID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Payment struct {
	ID                    int
	SessionID             *int
	SubscriptionID        *int
	Status                PaymentStatus
	Currency              string
	AmountCents           int64
	Method                string
	StripeCheckoutID      string
	StripePaymentIntentID string
	CreatedAt             time.Time
}

type AuditEvent struct {
	ID        int
	AdminID   *int
	VehicleID *int
	Action    string
	Reason    string
	CreatedAt time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
