package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

type fakeSubscriptionStore struct {
	subs     map[int]*db.Subscription
	nextID   int
	overlaps bool
	paid     map[int]bool
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: map[int]*db.Subscription{}, nextID: 1, paid: map[int]bool{}}
}

func (f *fakeSubscriptionStore) Create(vehicleID, planID int, status db.SubscriptionStatus, autoRenew bool, validFrom, validTo time.Time) (*db.Subscription, error) {
	s := &db.Subscription{
		ID: f.nextID, VehicleID: vehicleID, PlanID: planID, Status: status,
		AutoRenew: autoRenew, ValidFrom: validFrom, ValidTo: validTo,
	}
	f.nextID++
	f.subs[s.ID] = s
	return s, nil
}

func (f *fakeSubscriptionStore) Get(subID int) (*db.Subscription, error) {
	return f.subs[subID], nil
}

func (f *fakeSubscriptionStore) ListByVehicle(vehicleID int) ([]db.Subscription, error) {
	var out []db.Subscription
	for _, s := range f.subs {
		if s.VehicleID == vehicleID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionStore) HasOverlappingActive(vehicleID int, start, end time.Time) (bool, error) {
	return f.overlaps, nil
}

func (f *fakeSubscriptionStore) HasSuccessfulPayment(subID int) (bool, error) {
	return f.paid[subID], nil
}

func (f *fakeSubscriptionStore) UpdateStatus(subID int, status db.SubscriptionStatus, autoRenew *bool) (*db.Subscription, error) {
	s := f.subs[subID]
	s.Status = status
	if autoRenew != nil {
		s.AutoRenew = *autoRenew
	}
	return s, nil
}

func (f *fakeSubscriptionStore) Delete(subID int) error {
	delete(f.subs, subID)
	return nil
}

type fakeVehicleGetter struct {
	vehicles map[int]*db.Vehicle
}

func (f *fakeVehicleGetter) GetByID(vehicleID int) (*db.Vehicle, error) {
	return f.vehicles[vehicleID], nil
}

type subscriptionFixture struct {
	svc      *SubscriptionService
	subs     *fakeSubscriptionStore
	vehicles *fakeVehicleGetter
	plans    *fakePlanGetter
	now      time.Time
}

func newSubscriptionFixture() *subscriptionFixture {
	f := &subscriptionFixture{
		subs:     newFakeSubscriptionStore(),
		vehicles: &fakeVehicleGetter{vehicles: map[int]*db.Vehicle{1: {ID: 1}}},
		plans:    &fakePlanGetter{plans: map[int]*db.Plan{2: {ID: 2, Type: db.PlanSubscription, Currency: "EUR"}}},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewSubscriptionService(f.subs, f.vehicles, f.plans)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *subscriptionFixture) createRequest() entities.SubscriptionCreateRequest {
	return entities.SubscriptionCreateRequest{
		VehicleID: 1,
		PlanID:    2,
		ValidFrom: f.now,
		ValidTo:   f.now.AddDate(0, 1, 0),
	}
}

func TestSubscriptionCreateStartsPendingPayment(t *testing.T) {
	f := newSubscriptionFixture()

	sub, err := f.svc.Create(f.createRequest())
	require.NoError(t, err)
	assert.Equal(t, db.SubscriptionPendingPayment, sub.Status)
	assert.True(t, sub.AutoRenew)
}

func TestSubscriptionCreateRejectsInvertedWindow(t *testing.T) {
	f := newSubscriptionFixture()
	req := f.createRequest()
	req.ValidTo = req.ValidFrom

	_, err := f.svc.Create(req)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubscriptionCreateRejectsOverlap(t *testing.T) {
	f := newSubscriptionFixture()
	f.subs.overlaps = true

	_, err := f.svc.Create(f.createRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestSubscriptionCreateRejectsVisitorPlan(t *testing.T) {
	f := newSubscriptionFixture()
	price := int64(5)
	f.plans.plans[2] = &db.Plan{ID: 2, Type: db.PlanVisitor, PricePerMinuteCents: &price}

	_, err := f.svc.Create(f.createRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubscriptionActivationRequiresPayment(t *testing.T) {
	f := newSubscriptionFixture()
	sub, _ := f.svc.Create(f.createRequest())

	_, err := f.svc.SetStatus(sub.ID, db.SubscriptionActive, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	f.subs.paid[sub.ID] = true
	activated, err := f.svc.SetStatus(sub.ID, db.SubscriptionActive, nil)
	require.NoError(t, err)
	assert.Equal(t, db.SubscriptionActive, activated.Status)
}

func TestSubscriptionActivationRejectsElapsedWindow(t *testing.T) {
	f := newSubscriptionFixture()
	sub, _ := f.svc.Create(f.createRequest())
	f.subs.paid[sub.ID] = true

	f.now = sub.ValidTo.Add(time.Hour)
	_, err := f.svc.SetStatus(sub.ID, db.SubscriptionActive, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubscriptionSetStatusRejectsPendingPayment(t *testing.T) {
	f := newSubscriptionFixture()
	sub, _ := f.svc.Create(f.createRequest())

	_, err := f.svc.SetStatus(sub.ID, db.SubscriptionPendingPayment, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSubscriptionPauseAndCancel(t *testing.T) {
	f := newSubscriptionFixture()
	sub, _ := f.svc.Create(f.createRequest())
	f.subs.paid[sub.ID] = true
	f.svc.SetStatus(sub.ID, db.SubscriptionActive, nil)

	paused, err := f.svc.SetStatus(sub.ID, db.SubscriptionPaused, nil)
	require.NoError(t, err)
	assert.Equal(t, db.SubscriptionPaused, paused.Status)

	off := false
	canceled, err := f.svc.SetStatus(sub.ID, db.SubscriptionCanceled, &off)
	require.NoError(t, err)
	assert.Equal(t, db.SubscriptionCanceled, canceled.Status)
	assert.False(t, canceled.AutoRenew)
}

func TestActivateOnPayment(t *testing.T) {
	f := newSubscriptionFixture()
	sub, _ := f.svc.Create(f.createRequest())
	f.subs.paid[sub.ID] = true

	activated, err := f.svc.ActivateOnPayment(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, db.SubscriptionActive, activated.Status)
}
