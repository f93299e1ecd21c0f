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

type fakePaymentStore struct {
	payments map[int]*db.Payment
	nextID   int
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[int]*db.Payment{}, nextID: 1}
}

func (f *fakePaymentStore) Create(p *db.Payment) (*db.Payment, error) {
	cp := *p
	cp.ID = f.nextID
	f.nextID++
	f.payments[cp.ID] = &cp
	return &cp, nil
}

func (f *fakePaymentStore) Get(paymentID int) (*db.Payment, error) {
	return f.payments[paymentID], nil
}

func (f *fakePaymentStore) List(sessionID, subscriptionID *int, status string) ([]db.Payment, error) {
	var out []db.Payment
	for _, p := range f.payments {
		if sessionID != nil && (p.SessionID == nil || *p.SessionID != *sessionID) {
			continue
		}
		if subscriptionID != nil && (p.SubscriptionID == nil || *p.SubscriptionID != *subscriptionID) {
			continue
		}
		if status != "" && string(p.Status) != status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePaymentStore) SetStatus(paymentID int, status db.PaymentStatus) (*db.Payment, error) {
	p := f.payments[paymentID]
	p.Status = status
	return p, nil
}

func (f *fakePaymentStore) Delete(paymentID int) error {
	delete(f.payments, paymentID)
	return nil
}

func (f *fakePaymentStore) GetPendingForSession(sessionID int) (*db.Payment, error) {
	for _, p := range f.payments {
		if p.SessionID != nil && *p.SessionID == sessionID && p.Status == db.PaymentPending {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) GetPendingForSubscription(subscriptionID int) (*db.Payment, error) {
	for _, p := range f.payments {
		if p.SubscriptionID != nil && *p.SubscriptionID == subscriptionID && p.Status == db.PaymentPending {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) AttachStripeIDs(paymentID int, checkoutID, paymentIntentID string) error {
	p := f.payments[paymentID]
	if checkoutID != "" {
		p.StripeCheckoutID = checkoutID
	}
	if paymentIntentID != "" {
		p.StripePaymentIntentID = paymentIntentID
	}
	return nil
}

func (f *fakePaymentStore) GetByCheckoutID(checkoutID string) (*db.Payment, error) {
	for _, p := range f.payments {
		if p.StripeCheckoutID == checkoutID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) GetByPaymentIntentID(paymentIntentID string) (*db.Payment, error) {
	for _, p := range f.payments {
		if p.StripePaymentIntentID == paymentIntentID {
			return p, nil
		}
	}
	return nil, nil
}

type fakePaymentSessionStore struct {
	sessions map[int]*db.Session
}

func (f *fakePaymentSessionStore) Get(sessionID int) (*db.Session, error) {
	return f.sessions[sessionID], nil
}

func (f *fakePaymentSessionStore) Close(sessionID int, endedAt time.Time) (*db.Session, error) {
	s := f.sessions[sessionID]
	if s.EndedAt == nil {
		s.EndedAt = &endedAt
	}
	s.Status = db.SessionClosed
	return s, nil
}

type fakePaymentSubscriptionStore struct {
	subs map[int]*db.Subscription
}

func (f *fakePaymentSubscriptionStore) Get(subID int) (*db.Subscription, error) {
	return f.subs[subID], nil
}

func (f *fakePaymentSubscriptionStore) SetStripeSubscriptionID(subID int, stripeSubID string) error {
	f.subs[subID].StripeSubscriptionID = stripeSubID
	return nil
}

func (f *fakePaymentSubscriptionStore) GetByStripeSubscriptionID(stripeSubID string) (*db.Subscription, error) {
	for _, s := range f.subs {
		if s.StripeSubscriptionID == stripeSubID {
			return s, nil
		}
	}
	return nil, nil
}

type fakePlanGetter struct {
	plans map[int]*db.Plan
}

func (f *fakePlanGetter) Get(planID int) (*db.Plan, error) {
	return f.plans[planID], nil
}

type fakeActivator struct {
	activated []int
}

func (f *fakeActivator) ActivateOnPayment(subID int) (*db.Subscription, error) {
	f.activated = append(f.activated, subID)
	return &db.Subscription{ID: subID, Status: db.SubscriptionActive}, nil
}

type fakeStripeGateway struct {
	checkouts    int
	subCheckouts int
	refunds      []string
}

func (f *fakeStripeGateway) CreateCheckoutSession(amountCents int64, currency, description string) (string, string, error) {
	f.checkouts++
	return "https://checkout.test/pay", "cs_test_123", nil
}

func (f *fakeStripeGateway) CreateSubscriptionCheckout(priceID string) (string, string, error) {
	f.subCheckouts++
	return "https://checkout.test/sub", "cs_test_sub", nil
}

func (f *fakeStripeGateway) RefundByPaymentIntent(paymentIntentID string) error {
	f.refunds = append(f.refunds, paymentIntentID)
	return nil
}

type paymentFixture struct {
	svc       *PaymentService
	payments  *fakePaymentStore
	sessions  *fakePaymentSessionStore
	subs      *fakePaymentSubscriptionStore
	plans     *fakePlanGetter
	activator *fakeActivator
	stripe    *fakeStripeGateway
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		payments:  newFakePaymentStore(),
		sessions:  &fakePaymentSessionStore{sessions: map[int]*db.Session{}},
		subs:      &fakePaymentSubscriptionStore{subs: map[int]*db.Subscription{}},
		plans:     &fakePlanGetter{plans: map[int]*db.Plan{}},
		activator: &fakeActivator{},
		stripe:    &fakeStripeGateway{},
	}
	f.svc = NewPaymentService(f.payments, f.sessions, f.subs, f.plans, f.activator, f.stripe)
	return f
}

func (f *paymentFixture) addSession(id int) *db.Session {
	s := &db.Session{ID: id, VehicleID: 1, StartedAt: time.Now().UTC().Add(-time.Hour), Status: db.SessionOpen}
	f.sessions.sessions[id] = s
	return s
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestPaymentCreateRequiresExactlyOneRef(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = f.svc.Create(entities.PaymentCreateRequest{
		Currency: "EUR", AmountCents: 100, SessionID: intPtr(1), SubscriptionID: intPtr(2),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestPaymentCreateUppercasesCurrency(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)

	p, err := f.svc.Create(entities.PaymentCreateRequest{Currency: "eur", AmountCents: 100, SessionID: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, db.PaymentPending, p.Status)
}

func TestPaymentCreateMissingRef(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100, SessionID: intPtr(42)})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestPaymentStatusTransitions(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)
	p, err := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100, SessionID: intPtr(1)})
	require.NoError(t, err)

	// pending -> succeeded
	p, err = f.svc.SetStatus(p.ID, db.PaymentSucceeded)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentSucceeded, p.Status)

	// repeating the current status is a no-op, not an error
	p, err = f.svc.SetStatus(p.ID, db.PaymentSucceeded)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentSucceeded, p.Status)

	// succeeded -> pending is illegal
	_, err = f.svc.SetStatus(p.ID, db.PaymentPending)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// succeeded -> refunded, then refunded is terminal
	p, err = f.svc.SetStatus(p.ID, db.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentRefunded, p.Status)

	_, err = f.svc.SetStatus(p.ID, db.PaymentSucceeded)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestPaymentFailedIsTerminal(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)
	p, _ := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100, SessionID: intPtr(1)})

	p, err := f.svc.SetStatus(p.ID, db.PaymentFailed)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(p.ID, db.PaymentSucceeded)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestPaymentSucceededActivatesSubscription(t *testing.T) {
	f := newPaymentFixture()
	f.subs.subs[9] = &db.Subscription{ID: 9, Status: db.SubscriptionPendingPayment}
	p, err := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 3000, SubscriptionID: intPtr(9)})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(p.ID, db.PaymentSucceeded)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, f.activator.activated)
}

func TestPaymentDeleteGuard(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)
	p, _ := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100, SessionID: intPtr(1)})
	f.svc.SetStatus(p.ID, db.PaymentSucceeded)

	err := f.svc.Delete(p.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCheckoutForSessionReusesPendingPayment(t *testing.T) {
	f := newPaymentFixture()
	sess := f.addSession(1)
	ended := time.Now().UTC()
	sess.Status = db.SessionAwaitingPayment
	sess.EndedAt = &ended
	sess.PlanID = intPtr(7)
	sess.AmountCharged = int64Ptr(210)
	f.plans.plans[7] = &db.Plan{ID: 7, Type: db.PlanVisitor, Currency: "EUR"}

	first, err := f.svc.CreateCheckoutForSession(1)
	require.NoError(t, err)
	second, err := f.svc.CreateCheckoutForSession(1)
	require.NoError(t, err)

	assert.Equal(t, first.PaymentID, second.PaymentID)
	assert.Equal(t, 2, f.stripe.checkouts)

	p, _ := f.payments.Get(first.PaymentID)
	assert.Equal(t, int64(210), p.AmountCents)
	assert.Equal(t, "EUR", p.Currency)
}

func TestCheckoutForSessionWithoutCharge(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)

	_, err := f.svc.CreateCheckoutForSession(1)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestHandleCheckoutCompletedClosesSession(t *testing.T) {
	f := newPaymentFixture()
	sess := f.addSession(1)
	ended := time.Now().UTC().Add(-2 * time.Minute)
	sess.Status = db.SessionAwaitingPayment
	sess.EndedAt = &ended
	sess.PlanID = intPtr(7)
	sess.AmountCharged = int64Ptr(210)
	f.plans.plans[7] = &db.Plan{ID: 7, Type: db.PlanVisitor, Currency: "EUR"}

	checkout, err := f.svc.CreateCheckoutForSession(1)
	require.NoError(t, err)

	err = f.svc.HandleCheckoutCompleted(checkout.CheckoutID, "pi_test_1", "")
	require.NoError(t, err)

	p, _ := f.payments.Get(checkout.PaymentID)
	assert.Equal(t, db.PaymentSucceeded, p.Status)
	assert.Equal(t, "pi_test_1", p.StripePaymentIntentID)
	assert.Equal(t, db.SessionClosed, sess.Status)
	// The exit timestamp recorded at the gate is kept.
	assert.Equal(t, ended, *sess.EndedAt)
}

func TestHandleCheckoutCompletedIsIdempotent(t *testing.T) {
	f := newPaymentFixture()
	sess := f.addSession(1)
	ended := time.Now().UTC()
	sess.Status = db.SessionAwaitingPayment
	sess.EndedAt = &ended
	sess.PlanID = intPtr(7)
	sess.AmountCharged = int64Ptr(210)
	f.plans.plans[7] = &db.Plan{ID: 7, Type: db.PlanVisitor, Currency: "EUR"}

	checkout, _ := f.svc.CreateCheckoutForSession(1)
	require.NoError(t, f.svc.HandleCheckoutCompleted(checkout.CheckoutID, "pi_test_1", ""))
	require.NoError(t, f.svc.HandleCheckoutCompleted(checkout.CheckoutID, "pi_test_1", ""))

	p, _ := f.payments.Get(checkout.PaymentID)
	assert.Equal(t, db.PaymentSucceeded, p.Status)
}

func TestHandleCheckoutCompletedUnknownCheckout(t *testing.T) {
	f := newPaymentFixture()
	assert.NoError(t, f.svc.HandleCheckoutCompleted("cs_unknown", "pi_x", ""))
}

func TestHandleInvoicePaidActivates(t *testing.T) {
	f := newPaymentFixture()
	f.subs.subs[9] = &db.Subscription{ID: 9, Status: db.SubscriptionPendingPayment, StripeSubscriptionID: "sub_abc"}

	err := f.svc.HandleInvoicePaid("sub_abc", 3000, "eur")
	require.NoError(t, err)
	assert.Equal(t, []int{9}, f.activator.activated)

	payments, _ := f.payments.List(nil, intPtr(9), string(db.PaymentSucceeded))
	require.Len(t, payments, 1)
	assert.Equal(t, int64(3000), payments[0].AmountCents)
	assert.Equal(t, "EUR", payments[0].Currency)
}

func TestHandleChargeRefunded(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)
	p, _ := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100, SessionID: intPtr(1)})
	f.payments.AttachStripeIDs(p.ID, "cs_1", "pi_1")
	f.svc.SetStatus(p.ID, db.PaymentSucceeded)

	require.NoError(t, f.svc.HandleChargeRefunded("pi_1"))
	got, _ := f.payments.Get(p.ID)
	assert.Equal(t, db.PaymentRefunded, got.Status)
}

func TestRefundCallsProviderThenLedger(t *testing.T) {
	f := newPaymentFixture()
	f.addSession(1)
	p, _ := f.svc.Create(entities.PaymentCreateRequest{Currency: "EUR", AmountCents: 100, SessionID: intPtr(1)})
	f.payments.AttachStripeIDs(p.ID, "cs_1", "pi_1")
	f.svc.SetStatus(p.ID, db.PaymentSucceeded)

	refunded, err := f.svc.Refund(p.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentRefunded, refunded.Status)
	assert.Equal(t, []string{"pi_1"}, f.stripe.refunds)
}
