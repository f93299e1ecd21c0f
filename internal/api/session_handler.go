package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type SessionHandler struct {
	Sessions *service.SessionService
}

func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

func sessionResponse(sess *db.Session) entities.SessionResponse {
	return entities.SessionResponse{
		ID:            sess.ID,
		VehicleID:     sess.VehicleID,
		StartedAt:     sess.StartedAt,
		EndedAt:       sess.EndedAt,
		Status:        string(sess.Status),
		PlanID:        sess.PlanID,
		Duration:      sess.Duration,
		AmountCharged: sess.AmountCharged,
	}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleID int        `json:"vehicle_id"`
		StartedAt *time.Time `json:"started_at,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.Sessions.Start(req.VehicleID, req.StartedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(sess))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid session id")
		return
	}
	sess, err := h.Sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (h *SessionHandler) ListForVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	sessions, err := h.Sessions.ListForVehicle(vehicleID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entities.SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, sessionResponse(&sessions[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req struct {
		EndedAt *time.Time `json:"ended_at,omitempty"`
	}
	// Body is optional; an empty body ends the session now.
	json.NewDecoder(r.Body).Decode(&req)

	sess, err := h.Sessions.End(id, req.EndedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := h.Sessions.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
