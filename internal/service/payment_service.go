package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

type PaymentStore interface {
	Create(p *db.Payment) (*db.Payment, error)
	Get(paymentID int) (*db.Payment, error)
	List(sessionID, subscriptionID *int, status string) ([]db.Payment, error)
	SetStatus(paymentID int, status db.PaymentStatus) (*db.Payment, error)
	Delete(paymentID int) error
	GetPendingForSession(sessionID int) (*db.Payment, error)
	GetPendingForSubscription(subscriptionID int) (*db.Payment, error)
	AttachStripeIDs(paymentID int, checkoutID, paymentIntentID string) error
	GetByCheckoutID(checkoutID string) (*db.Payment, error)
	GetByPaymentIntentID(paymentIntentID string) (*db.Payment, error)
}

type PaymentSessionStore interface {
	Get(sessionID int) (*db.Session, error)
	Close(sessionID int, endedAt time.Time) (*db.Session, error)
}

type PaymentSubscriptionStore interface {
	Get(subID int) (*db.Subscription, error)
	SetStripeSubscriptionID(subID int, stripeSubID string) error
	GetByStripeSubscriptionID(stripeSubID string) (*db.Subscription, error)
}

// SubscriptionActivator is the one side effect the ledger triggers: a
// succeeded payment is the sole event that can activate a subscription.
type SubscriptionActivator interface {
	ActivateOnPayment(subID int) (*db.Subscription, error)
}

// PaymentService is the payment ledger: it records transactions against a
// session or a subscription, enforces the monotone status machine and
// reconciles asynchronous provider confirmations.
type PaymentService struct {
	payments  PaymentStore
	sessions  PaymentSessionStore
	subs      PaymentSubscriptionStore
	plans     PlanGetter
	activator SubscriptionActivator
	stripe    StripeGateway

	now func() time.Time
}

func NewPaymentService(payments PaymentStore, sessions PaymentSessionStore, subs PaymentSubscriptionStore,
	plans PlanGetter, activator SubscriptionActivator, stripe StripeGateway) *PaymentService {
	return &PaymentService{
		payments:  payments,
		sessions:  sessions,
		subs:      subs,
		plans:     plans,
		activator: activator,
		stripe:    stripe,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *PaymentService) ensureRefs(sessionID, subscriptionID *int) error {
	if (sessionID == nil) == (subscriptionID == nil) {
		return apperrors.Validation("provide exactly one of session_id or subscription_id")
	}
	if sessionID != nil {
		sess, err := s.sessions.Get(*sessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return apperrors.NotFound("session not found")
		}
	}
	if subscriptionID != nil {
		sub, err := s.subs.Get(*subscriptionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return apperrors.NotFound("subscription not found")
		}
	}
	return nil
}

func (s *PaymentService) Create(req entities.PaymentCreateRequest) (*db.Payment, error) {
	if len(req.Currency) != 3 {
		return nil, apperrors.Validation("currency must be a 3-letter ISO-4217 code")
	}
	if req.AmountCents < 1 {
		return nil, apperrors.Validation("amount_cents must be positive")
	}
	if err := s.ensureRefs(req.SessionID, req.SubscriptionID); err != nil {
		return nil, err
	}

	return s.payments.Create(&db.Payment{
		SessionID:      req.SessionID,
		SubscriptionID: req.SubscriptionID,
		Status:         db.PaymentPending,
		Currency:       strings.ToUpper(req.Currency),
		AmountCents:    req.AmountCents,
		Method:         req.Method,
	})
}

func (s *PaymentService) Get(paymentID int) (*db.Payment, error) {
	p, err := s.payments.Get(paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("payment not found")
	}
	return p, nil
}

func (s *PaymentService) List(sessionID, subscriptionID *int, status string) ([]db.Payment, error) {
	if status != "" && !db.PaymentStatus(status).Valid() {
		return nil, apperrors.Validation("unknown payment status filter")
	}
	return s.payments.List(sessionID, subscriptionID, status)
}

// SetStatus applies one transition of the ledger state machine. Requesting
// the current status again is a no-op, which is what absorbs webhook replays.
func (s *PaymentService) SetStatus(paymentID int, newStatus db.PaymentStatus) (*db.Payment, error) {
	if !newStatus.Valid() {
		return nil, apperrors.Validation("unknown payment status")
	}
	p, err := s.Get(paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == newStatus {
		return p, nil
	}
	if !p.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.Conflict(fmt.Sprintf("illegal payment transition %s -> %s", p.Status, newStatus))
	}

	p, err = s.payments.SetStatus(p.ID, newStatus)
	if err != nil {
		return nil, err
	}

	if newStatus == db.PaymentSucceeded && p.SubscriptionID != nil {
		if _, err := s.activator.ActivateOnPayment(*p.SubscriptionID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *PaymentService) Delete(paymentID int) error {
	p, err := s.Get(paymentID)
	if err != nil {
		return err
	}
	if p.Status == db.PaymentSucceeded {
		return apperrors.Conflict("cannot delete succeeded payment; refund instead")
	}
	return s.payments.Delete(paymentID)
}

// CreateCheckoutForSession starts (or resumes) the hosted checkout for an
// unpaid visitor exit. Repeated calls reuse the pending ledger row.
func (s *PaymentService) CreateCheckoutForSession(sessionID int) (*entities.CheckoutResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperrors.NotFound("session not found")
	}
	if sess.Status != db.SessionAwaitingPayment || sess.AmountCharged == nil || sess.PlanID == nil {
		return nil, apperrors.Conflict("session has no pending charge")
	}

	plan, err := s.plans.Get(*sess.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFound("plan not found")
	}

	payment, err := s.payments.GetPendingForSession(sess.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		payment, err = s.payments.Create(&db.Payment{
			SessionID:   &sess.ID,
			Status:      db.PaymentPending,
			Currency:    strings.ToUpper(plan.Currency),
			AmountCents: *sess.AmountCharged,
			Method:      "card",
		})
		if err != nil {
			return nil, err
		}
	}

	description := fmt.Sprintf("Parking session #%d", sess.ID)
	url, checkoutID, err := s.stripe.CreateCheckoutSession(payment.AmountCents, plan.Currency, description)
	if err != nil {
		return nil, apperrors.Upstream("payment provider unavailable", err)
	}
	if err := s.payments.AttachStripeIDs(payment.ID, checkoutID, ""); err != nil {
		return nil, err
	}
	return &entities.CheckoutResponse{PaymentID: payment.ID, CheckoutID: checkoutID, URL: url}, nil
}

// CreateCheckoutForSubscription starts the hosted checkout for a
// pending_payment subscription. When the plan carries a provider price id the
// checkout runs in subscription mode and renewals arrive as invoice events.
func (s *PaymentService) CreateCheckoutForSubscription(subID int) (*entities.CheckoutResponse, error) {
	sub, err := s.subs.Get(subID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NotFound("subscription not found")
	}
	if sub.Status != db.SubscriptionPendingPayment {
		return nil, apperrors.Conflict("subscription is not awaiting payment")
	}

	plan, err := s.plans.Get(sub.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NotFound("plan not found")
	}
	if plan.PeriodPriceCents == nil {
		return nil, apperrors.Validation("plan has no period price")
	}

	payment, err := s.payments.GetPendingForSubscription(sub.ID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		payment, err = s.payments.Create(&db.Payment{
			SubscriptionID: &sub.ID,
			Status:         db.PaymentPending,
			Currency:       strings.ToUpper(plan.Currency),
			AmountCents:    *plan.PeriodPriceCents,
			Method:         "card",
		})
		if err != nil {
			return nil, err
		}
	}

	var url, checkoutID string
	if plan.StripePriceID != "" {
		url, checkoutID, err = s.stripe.CreateSubscriptionCheckout(plan.StripePriceID)
	} else {
		description := fmt.Sprintf("Parking subscription #%d", sub.ID)
		url, checkoutID, err = s.stripe.CreateCheckoutSession(payment.AmountCents, plan.Currency, description)
	}
	if err != nil {
		return nil, apperrors.Upstream("payment provider unavailable", err)
	}
	if err := s.payments.AttachStripeIDs(payment.ID, checkoutID, ""); err != nil {
		return nil, err
	}
	return &entities.CheckoutResponse{PaymentID: payment.ID, CheckoutID: checkoutID, URL: url}, nil
}

// Refund reverses a settled payment at the provider, then in the ledger.
func (s *PaymentService) Refund(paymentID int) (*db.Payment, error) {
	p, err := s.Get(paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != db.PaymentSucceeded {
		return nil, apperrors.Conflict("only succeeded payments can be refunded")
	}
	if p.StripePaymentIntentID != "" {
		if err := s.stripe.RefundByPaymentIntent(p.StripePaymentIntentID); err != nil {
			return nil, apperrors.Upstream("refund failed at payment provider", err)
		}
	}
	return s.SetStatus(p.ID, db.PaymentRefunded)
}

// HandleCheckoutCompleted reconciles a "checkout completed" provider event.
// Payment-mode checkouts settle the payment and, once the exit timestamp is
// on record, close the session. Subscription-mode checkouts only pin the
// provider's subscription id; activation waits for the first invoice event.
func (s *PaymentService) HandleCheckoutCompleted(checkoutID, paymentIntentID, stripeSubscriptionID string) error {
	payment, err := s.payments.GetByCheckoutID(checkoutID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("Webhook: no payment matches checkout %s", checkoutID)
		return nil
	}
	if paymentIntentID != "" {
		if err := s.payments.AttachStripeIDs(payment.ID, "", paymentIntentID); err != nil {
			return err
		}
	}

	if payment.SubscriptionID != nil && stripeSubscriptionID != "" {
		return s.subs.SetStripeSubscriptionID(*payment.SubscriptionID, stripeSubscriptionID)
	}

	if _, err := s.SetStatus(payment.ID, db.PaymentSucceeded); err != nil {
		return err
	}
	if payment.SessionID != nil {
		sess, err := s.sessions.Get(*payment.SessionID)
		if err != nil {
			return err
		}
		if sess != nil && sess.EndedAt != nil && sess.Status != db.SessionClosed {
			if _, err := s.sessions.Close(sess.ID, *sess.EndedAt); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandleInvoicePaid reconciles a recurring-invoice confirmation: it settles
// the pending ledger row for the subscription (creating one for renewals)
// and lets the activation gate run.
func (s *PaymentService) HandleInvoicePaid(stripeSubscriptionID string, amountCents int64, currency string) error {
	sub, err := s.subs.GetByStripeSubscriptionID(stripeSubscriptionID)
	if err != nil {
		return err
	}
	if sub == nil {
		log.Printf("Webhook: no subscription matches provider id %s", stripeSubscriptionID)
		return nil
	}

	payment, err := s.payments.GetPendingForSubscription(sub.ID)
	if err != nil {
		return err
	}
	if payment == nil {
		payment, err = s.payments.Create(&db.Payment{
			SubscriptionID: &sub.ID,
			Status:         db.PaymentPending,
			Currency:       strings.ToUpper(currency),
			AmountCents:    amountCents,
			Method:         "card",
		})
		if err != nil {
			return err
		}
	}
	_, err = s.SetStatus(payment.ID, db.PaymentSucceeded)
	return err
}

// HandleChargeRefunded reconciles a provider-initiated refund.
func (s *PaymentService) HandleChargeRefunded(paymentIntentID string) error {
	payment, err := s.payments.GetByPaymentIntentID(paymentIntentID)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("Webhook: no payment matches payment intent %s", paymentIntentID)
		return nil
	}
	_, err = s.SetStatus(payment.ID, db.PaymentRefunded)
	return err
}
