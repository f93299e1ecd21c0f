package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type SubscriptionHandler struct {
	Subscriptions *service.SubscriptionService
	Payments      *service.PaymentService
	Vehicles      *service.VehicleService
	Drivers       *service.DriverService
	Sender        *service.SenderService
}

func NewSubscriptionHandler(subscriptions *service.SubscriptionService, payments *service.PaymentService,
	vehicles *service.VehicleService, drivers *service.DriverService, sender *service.SenderService) *SubscriptionHandler {
	return &SubscriptionHandler{
		Subscriptions: subscriptions,
		Payments:      payments,
		Vehicles:      vehicles,
		Drivers:       drivers,
		Sender:        sender,
	}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.SubscriptionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.Subscriptions.Create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	sub, err := h.Subscriptions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewSubscriptionResponse(sub))
}

func (h *SubscriptionHandler) ListForVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	subs, err := h.Subscriptions.ListForVehicle(vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entities.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		resp = append(resp, entities.NewSubscriptionResponse(&subs[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SubscriptionHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	var req entities.SubscriptionStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.Subscriptions.SetStatus(id, req.Status, req.AutoRenew)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewSubscriptionResponse(sub))
}

// Checkout starts the hosted payment flow for a pending_payment subscription
// and delivers the payment link to the vehicle's driver.
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	checkout, err := h.Payments.CreateCheckoutForSubscription(id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.deliverPaymentLink(id, checkout)
	writeJSON(w, http.StatusCreated, checkout)
}

// deliverPaymentLink is best effort: the checkout already exists, so a missing
// driver contact or a lookup failure only gets logged.
func (h *SubscriptionHandler) deliverPaymentLink(subID int, checkout *entities.CheckoutResponse) {
	payment, err := h.Payments.Get(checkout.PaymentID)
	if err != nil {
		log.Printf("payment link for subscription %d: could not load payment: %v", subID, err)
		return
	}
	sub, err := h.Subscriptions.Get(subID)
	if err != nil {
		log.Printf("payment link for subscription %d: could not load subscription: %v", subID, err)
		return
	}
	vehicle, err := h.Vehicles.Get(sub.VehicleID)
	if err != nil {
		log.Printf("payment link for subscription %d: could not load vehicle: %v", subID, err)
		return
	}
	driver, err := h.Drivers.Get(vehicle.DriverID)
	if err != nil {
		log.Printf("payment link for subscription %d: could not load driver: %v", subID, err)
		return
	}

	description := fmt.Sprintf("parking subscription #%d", subID)
	if driver.Email != "" {
		h.Sender.SendPaymentLinkEmail(driver.Email, driver.Name, description, payment.AmountCents, payment.Currency, checkout.URL)
	}
	if driver.Phone != "" {
		h.Sender.SendPaymentLinkSMS(driver.Phone, description, payment.AmountCents, payment.Currency, checkout.URL)
	}
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	if err := h.Subscriptions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
