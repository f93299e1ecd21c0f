package service

import (
	"time"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

type SubscriptionStore interface {
	Create(vehicleID, planID int, status db.SubscriptionStatus, autoRenew bool, validFrom, validTo time.Time) (*db.Subscription, error)
	Get(subID int) (*db.Subscription, error)
	ListByVehicle(vehicleID int) ([]db.Subscription, error)
	HasOverlappingActive(vehicleID int, start, end time.Time) (bool, error)
	HasSuccessfulPayment(subID int) (bool, error)
	UpdateStatus(subID int, status db.SubscriptionStatus, autoRenew *bool) (*db.Subscription, error)
	Delete(subID int) error
}

type VehicleGetter interface {
	GetByID(vehicleID int) (*db.Vehicle, error)
}

type PlanGetter interface {
	Get(planID int) (*db.Plan, error)
}

// SubscriptionService owns the subscription state machine:
// pending_payment → active (gated on payment proof) → {paused, canceled}.
type SubscriptionService struct {
	subs     SubscriptionStore
	vehicles VehicleGetter
	plans    PlanGetter

	now func() time.Time
}

func NewSubscriptionService(subs SubscriptionStore, vehicles VehicleGetter, plans PlanGetter) *SubscriptionService {
	return &SubscriptionService{
		subs:     subs,
		vehicles: vehicles,
		plans:    plans,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *SubscriptionService) ensureRefs(vehicleID, planID int) (*db.Plan, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}
	plan, err := s.plans.Get(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFound("plan not found")
	}
	if plan.Type != db.PlanSubscription {
		return nil, apperrors.Validation("plan is not a subscription plan")
	}
	return plan, nil
}

// Create records the operator approval. The grant starts in pending_payment
// and only a successful payment can activate it.
func (s *SubscriptionService) Create(req entities.SubscriptionCreateRequest) (*db.Subscription, error) {
	if _, err := s.ensureRefs(req.VehicleID, req.PlanID); err != nil {
		return nil, err
	}
	if !req.ValidFrom.Before(req.ValidTo) {
		return nil, apperrors.Validation("valid_from must be before valid_to")
	}

	overlapping, err := s.subs.HasOverlappingActive(req.VehicleID, req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, apperrors.Conflict("overlapping active subscription exists")
	}

	autoRenew := true
	if req.AutoRenew != nil {
		autoRenew = *req.AutoRenew
	}
	return s.subs.Create(req.VehicleID, req.PlanID, db.SubscriptionPendingPayment, autoRenew, req.ValidFrom, req.ValidTo)
}

func (s *SubscriptionService) Get(subID int) (*db.Subscription, error) {
	sub, err := s.subs.Get(subID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NotFound("subscription not found")
	}
	return sub, nil
}

func (s *SubscriptionService) ListForVehicle(vehicleID int) ([]db.Subscription, error) {
	return s.subs.ListByVehicle(vehicleID)
}

func (s *SubscriptionService) ensurePaymentThenActivate(sub *db.Subscription) (*db.Subscription, error) {
	paid, err := s.subs.HasSuccessfulPayment(sub.ID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, apperrors.Conflict("no successful payment for this subscription")
	}
	if !sub.ValidTo.After(s.now()) {
		return nil, apperrors.Validation("subscription validity window has already ended")
	}
	return s.subs.UpdateStatus(sub.ID, db.SubscriptionActive, nil)
}

// SetStatus is the operator-driven transition. Activation is gated on
// payment proof; pausing and canceling are operational overrides.
func (s *SubscriptionService) SetStatus(subID int, status db.SubscriptionStatus, autoRenew *bool) (*db.Subscription, error) {
	sub, err := s.Get(subID)
	if err != nil {
		return nil, err
	}

	switch status {
	case db.SubscriptionActive:
		return s.ensurePaymentThenActivate(sub)
	case db.SubscriptionPaused, db.SubscriptionCanceled:
		return s.subs.UpdateStatus(sub.ID, status, autoRenew)
	case db.SubscriptionPendingPayment:
		return nil, apperrors.Validation("status transition not allowed")
	default:
		return nil, apperrors.Validation("unsupported status value")
	}
}

// ActivateOnPayment is invoked by the payment ledger after a payment
// referencing this subscription succeeds.
func (s *SubscriptionService) ActivateOnPayment(subID int) (*db.Subscription, error) {
	sub, err := s.Get(subID)
	if err != nil {
		return nil, err
	}
	return s.ensurePaymentThenActivate(sub)
}

func (s *SubscriptionService) Delete(subID int) error {
	if _, err := s.Get(subID); err != nil {
		return err
	}
	return s.subs.Delete(subID)
}
