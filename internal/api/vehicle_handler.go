package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"petroffparking/internal/auth"
	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type VehicleHandler struct {
	Vehicles   *service.VehicleService
	AccessList *service.AccessListService
}

func NewVehicleHandler(vehicles *service.VehicleService, accessList *service.AccessListService) *VehicleHandler {
	return &VehicleHandler{Vehicles: vehicles, AccessList: accessList}
}

func (h *VehicleHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.VehicleRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	vehicle, err := h.Vehicles.Register(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewVehicleResponse(vehicle))
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	vehicle, err := h.Vehicles.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewVehicleResponse(vehicle))
}

func (h *VehicleHandler) ListForDriver(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	vehicles, err := h.Vehicles.ListForDriver(driverID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponses(vehicles))
}

func (h *VehicleHandler) decodeAccessListRequest(r *http.Request) entities.AccessListRequest {
	var req entities.AccessListRequest
	// Body is optional; an empty reason is allowed.
	json.NewDecoder(r.Body).Decode(&req)
	return req
}

func (h *VehicleHandler) Blacklist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	req := h.decodeAccessListRequest(r)
	vehicle, err := h.AccessList.Blacklist(id, auth.AdminIDFromContext(r.Context()), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewVehicleResponse(vehicle))
}

func (h *VehicleHandler) Whitelist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	req := h.decodeAccessListRequest(r)
	vehicle, err := h.AccessList.Whitelist(id, auth.AdminIDFromContext(r.Context()), req.Reason, req.ResumeSubscriptions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewVehicleResponse(vehicle))
}

func (h *VehicleHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	events, err := h.AccessList.AuditTrail(id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entities.AuditEventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, entities.NewAuditEventResponse(&events[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *VehicleHandler) DeleteBlacklisted(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid vehicle id")
		return
	}
	req := h.decodeAccessListRequest(r)
	if err := h.AccessList.DeleteBlacklisted(id, auth.AdminIDFromContext(r.Context()), req.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type DriverHandler struct {
	Drivers *service.DriverService
}

func NewDriverHandler(drivers *service.DriverService) *DriverHandler {
	return &DriverHandler{Drivers: drivers}
}

func (h *DriverHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entities.DriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	driver, err := h.Drivers.Create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewDriverResponse(driver))
}

func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeDetail(w, http.StatusBadRequest, "invalid driver id")
		return
	}
	driver, err := h.Drivers.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewDriverResponse(driver))
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.Drivers.List()
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]entities.DriverResponse, 0, len(drivers))
	for i := range drivers {
		resp = append(resp, entities.NewDriverResponse(&drivers[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func vehicleResponses(vehicles []db.Vehicle) []entities.VehicleResponse {
	resp := make([]entities.VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		resp = append(resp, entities.NewVehicleResponse(&vehicles[i]))
	}
	return resp
}
