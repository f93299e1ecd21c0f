package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

type fakePlanStore struct {
	plans  map[int]*db.Plan
	nextID int
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: map[int]*db.Plan{}, nextID: 1}
}

func (f *fakePlanStore) Create(p *db.Plan) (*db.Plan, error) {
	cp := *p
	cp.ID = f.nextID
	f.nextID++
	f.plans[cp.ID] = &cp
	return &cp, nil
}

func (f *fakePlanStore) Get(planID int) (*db.Plan, error) {
	return f.plans[planID], nil
}

func (f *fakePlanStore) List(planType string) ([]db.Plan, error) {
	var out []db.Plan
	for _, p := range f.plans {
		if planType == "" || string(p.Type) == planType {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlanStore) Update(p *db.Plan) (*db.Plan, error) {
	cp := *p
	f.plans[cp.ID] = &cp
	return &cp, nil
}

func (f *fakePlanStore) Delete(planID int) error {
	delete(f.plans, planID)
	return nil
}

func monthlyPlanRequest() entities.PlanRequest {
	price := int64(3000)
	period := db.BillingMonth
	return entities.PlanRequest{
		Type:             db.PlanSubscription,
		Currency:         "eur",
		PeriodPriceCents: &price,
		BillingPeriod:    &period,
	}
}

func TestPlanCreateSubscriptionShape(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())

	plan, err := svc.Create(monthlyPlanRequest())
	require.NoError(t, err)
	assert.Equal(t, "EUR", plan.Currency)
	require.NotNil(t, plan.BillingPeriod)
	assert.Equal(t, db.BillingMonth, *plan.BillingPeriod)
}

func TestPlanCreateSubscriptionRequiresPeriod(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())
	req := monthlyPlanRequest()
	req.BillingPeriod = nil

	_, err := svc.Create(req)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPlanCreateVisitorShape(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())
	price := int64(5)

	plan, err := svc.Create(entities.PlanRequest{
		Type:                db.PlanVisitor,
		Currency:            "EUR",
		PricePerMinuteCents: &price,
	})
	require.NoError(t, err)
	require.NotNil(t, plan.PricePerMinuteCents)
	assert.Equal(t, int64(5), *plan.PricePerMinuteCents)
	assert.Nil(t, plan.PeriodPriceCents)
}

func TestPlanCreateVisitorRequiresMinutePrice(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())

	_, err := svc.Create(entities.PlanRequest{Type: db.PlanVisitor, Currency: "EUR"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPlanCreateRejectsUnknownType(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())

	_, err := svc.Create(entities.PlanRequest{Type: "hourly", Currency: "EUR"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPlanListRejectsUnknownTypeFilter(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())

	_, err := svc.List("hourly")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPlanUpdateUnknown(t *testing.T) {
	svc := NewPlanService(newFakePlanStore())

	_, err := svc.Update(42, monthlyPlanRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
