package service

import (
	"strings"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

type PlanStore interface {
	Create(p *db.Plan) (*db.Plan, error)
	Get(planID int) (*db.Plan, error)
	List(planType string) ([]db.Plan, error)
	Update(p *db.Plan) (*db.Plan, error)
	Delete(planID int) error
}

type PlanService struct {
	plans PlanStore
}

func NewPlanService(plans PlanStore) *PlanService {
	return &PlanService{plans: plans}
}

// validate checks that the pricing shape matches the plan type: subscription
// plans price a billing period, visitor plans price a minute.
func (s *PlanService) validate(req entities.PlanRequest) (*db.Plan, error) {
	if len(req.Currency) != 3 {
		return nil, apperrors.Validation("currency must be a 3-letter ISO-4217 code")
	}

	plan := &db.Plan{
		Type:          req.Type,
		Currency:      strings.ToUpper(req.Currency),
		Method:        req.Method,
		StripePriceID: req.StripePriceID,
	}

	switch plan.Type {
	case db.PlanSubscription:
		if req.PeriodPriceCents == nil || *req.PeriodPriceCents < 0 {
			return nil, apperrors.Validation("subscription plan requires a non-negative period_price_cents")
		}
		if req.BillingPeriod == nil || !req.BillingPeriod.Valid() {
			return nil, apperrors.Validation("subscription plan requires a billing_period of day, week, month or year")
		}
		plan.PeriodPriceCents = req.PeriodPriceCents
		plan.BillingPeriod = req.BillingPeriod
	case db.PlanVisitor:
		if req.PricePerMinuteCents == nil || *req.PricePerMinuteCents < 0 {
			return nil, apperrors.Validation("visitor plan requires a non-negative price_per_minute_cents")
		}
		plan.PricePerMinuteCents = req.PricePerMinuteCents
	default:
		return nil, apperrors.Validation("plan type must be subscription or visitor")
	}
	return plan, nil
}

func (s *PlanService) Create(req entities.PlanRequest) (*db.Plan, error) {
	plan, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	return s.plans.Create(plan)
}

func (s *PlanService) Get(planID int) (*db.Plan, error) {
	plan, err := s.plans.Get(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFound("plan not found")
	}
	return plan, nil
}

func (s *PlanService) List(planType string) ([]db.Plan, error) {
	if planType != "" && !db.PlanType(planType).Valid() {
		return nil, apperrors.Validation("unknown plan type filter")
	}
	return s.plans.List(planType)
}

func (s *PlanService) Update(planID int, req entities.PlanRequest) (*db.Plan, error) {
	if _, err := s.Get(planID); err != nil {
		return nil, err
	}
	plan, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	plan.ID = planID
	return s.plans.Update(plan)
}

func (s *PlanService) Delete(planID int) error {
	if _, err := s.Get(planID); err != nil {
		return err
	}
	return s.plans.Delete(planID)
}
