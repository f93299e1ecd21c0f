package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.PaymentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payment, err := h.Payments.Create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewPaymentResponse(payment))
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid payment id")
		return
	}
	payment, err := h.Payments.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewPaymentResponse(payment))
}

func queryIntFilter(r *http.Request, name string) (*int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := queryIntFilter(r, "session_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid session_id filter")
		return
	}
	subscriptionID, ok := queryIntFilter(r, "subscription_id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid subscription_id filter")
		return
	}
	status := r.URL.Query().Get("status")

	payments, err := h.Payments.List(sessionID, subscriptionID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entities.PaymentResponse, 0, len(payments))
	for i := range payments {
		resp = append(resp, entities.NewPaymentResponse(&payments[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid payment id")
		return
	}
	var req entities.PaymentStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payment, err := h.Payments.SetStatus(id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewPaymentResponse(payment))
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid payment id")
		return
	}
	payment, err := h.Payments.Refund(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewPaymentResponse(payment))
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid payment id")
		return
	}
	if err := h.Payments.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionCheckout starts the hosted payment flow for an unpaid visitor exit.
func (h *PaymentHandler) SessionCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid session id")
		return
	}
	checkout, err := h.Payments.CreateCheckoutForSession(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkout)
}
