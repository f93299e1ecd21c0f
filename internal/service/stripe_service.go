package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
)

// StripeGateway is the provider surface the payment ledger depends on.
type StripeGateway interface {
	CreateCheckoutSession(amountCents int64, currency, description string) (url, checkoutID string, err error)
	CreateSubscriptionCheckout(priceID string) (url, checkoutID string, err error)
	RefundByPaymentIntent(paymentIntentID string) error
}

type StripeService struct {
	successURL string
	cancelURL  string
}

func NewStripeService(successURL, cancelURL string) *StripeService {
	return &StripeService{successURL: successURL, cancelURL: cancelURL}
}

// CreateCheckoutSession starts a one-off payment checkout with an ad-hoc
// price, used for visitor exit charges.
func (s *StripeService) CreateCheckoutSession(amountCents int64, currency, description string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

// CreateSubscriptionCheckout starts a recurring checkout against a price
// already registered with the provider.
func (s *StripeService) CreateSubscriptionCheckout(priceID string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

func (s *StripeService) RefundByPaymentIntent(paymentIntentID string) error {
	if paymentIntentID == "" {
		return fmt.Errorf("no payment intent recorded for this payment")
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	_, err := refund.New(params)
	return err
}

var _ StripeGateway = (*StripeService)(nil)
