package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"petroffparking/internal/entities"
	"petroffparking/internal/service"
)

type ScanHandler struct {
	Gate *service.GateService
}

func NewScanHandler(gate *service.GateService) *ScanHandler {
	return &ScanHandler{Gate: gate}
}

func (h *ScanHandler) decodeScan(w http.ResponseWriter, r *http.Request) (*entities.ScanRequest, bool) {
	var req entities.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if strings.TrimSpace(req.RegionCode) == "" || strings.TrimSpace(req.PlateText) == "" {
		writeDetail(w, http.StatusBadRequest, "region_code and plate_text are required")
		return nil, false
	}
	return &req, true
}

func (h *ScanHandler) EntryScan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScan(w, r)
	if !ok {
		return
	}
	result, err := h.Gate.HandleEntryScan(*req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *ScanHandler) ExitScan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeScan(w, r)
	if !ok {
		return
	}
	result, err := h.Gate.HandleExitScan(*req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
