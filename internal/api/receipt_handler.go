package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type ReceiptHandler struct {
	Sessions *service.SessionService
	Vehicles *service.VehicleService
	Plans    *service.PlanService
	Sender   *service.SenderService
}

func NewReceiptHandler(sessions *service.SessionService, vehicles *service.VehicleService,
	plans *service.PlanService, sender *service.SenderService) *ReceiptHandler {
	return &ReceiptHandler{Sessions: sessions, Vehicles: vehicles, Plans: plans, Sender: sender}
}

// SendReceipt mails the receipt for a settled stay to the address the driver
// typed at the pay station.
func (h *ReceiptHandler) SendReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req entities.ReceiptEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeDetail(w, http.StatusBadRequest, "a valid email address is required")
		return
	}

	sess, err := h.Sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if sess.Status != db.SessionClosed {
		writeDetail(w, http.StatusConflict, "session is not settled yet")
		return
	}
	vehicle, err := h.Vehicles.Get(sess.VehicleID)
	if err != nil {
		writeError(w, err)
		return
	}

	currency := ""
	if sess.PlanID != nil {
		if plan, planErr := h.Plans.Get(*sess.PlanID); planErr == nil {
			currency = plan.Currency
		}
	}

	h.Sender.SendReceiptEmail(sess, vehicle, req.Email, currency)
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Receipt email queued"})
}
