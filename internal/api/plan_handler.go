package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type PlanHandler struct {
	Plans *service.PlanService
}

func NewPlanHandler(plans *service.PlanService) *PlanHandler {
	return &PlanHandler{Plans: plans}
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plan, err := h.Plans.Create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewPlanResponse(plan))
}

func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	plan, err := h.Plans.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewPlanResponse(plan))
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Plans.List(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entities.PlanResponse, 0, len(plans))
	for i := range plans {
		resp = append(resp, entities.NewPlanResponse(&plans[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	var req entities.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	plan, err := h.Plans.Update(id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewPlanResponse(plan))
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	if err := h.Plans.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
