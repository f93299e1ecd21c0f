package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"petroffparking/internal/service"
)

type StripeWebhookHandler struct {
	WebhookSecret  string
	paymentService *service.PaymentService
}

func NewStripeWebhookHandler(webhookSecret string, paymentService *service.PaymentService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		WebhookSecret:  webhookSecret,
		paymentService: paymentService,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Printf("No session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentIntentID := ""
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}
		stripeSubscriptionID := ""
		if sess.Subscription != nil {
			stripeSubscriptionID = sess.Subscription.ID
		}
		if err := h.paymentService.HandleCheckoutCompleted(sess.ID, paymentIntentID, stripeSubscriptionID); err != nil {
			log.Printf("DB error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "invoice.paid":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			log.Printf("Error parsing invoice: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		stripeSubscriptionID := ""
		if invoice.Parent != nil && invoice.Parent.SubscriptionDetails != nil && invoice.Parent.SubscriptionDetails.Subscription != nil {
			stripeSubscriptionID = invoice.Parent.SubscriptionDetails.Subscription.ID
		}
		if stripeSubscriptionID == "" {
			log.Printf("No subscription on invoice %s", invoice.ID)
			break
		}
		if err := h.paymentService.HandleInvoicePaid(stripeSubscriptionID, invoice.AmountPaid, string(invoice.Currency)); err != nil {
			log.Printf("DB error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			log.Printf("Error parsing charge: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			if err := h.paymentService.HandleChargeRefunded(charge.PaymentIntent.ID); err != nil {
				log.Printf("DB error: %v", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
