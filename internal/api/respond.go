package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	apperrors "petroffparking/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// without a kind is an internal failure and gets logged, not echoed.
func writeError(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		writeDetail(w, http.StatusBadRequest, err.Error())
	case apperrors.KindNotFound:
		writeDetail(w, http.StatusNotFound, err.Error())
	case apperrors.KindConflict:
		writeDetail(w, http.StatusConflict, err.Error())
	case apperrors.KindForbidden:
		writeDetail(w, http.StatusForbidden, err.Error())
	case apperrors.KindUpstream:
		writeDetail(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(vars map[string]string, name string) (int, bool) {
	id, err := strconv.Atoi(vars[name])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
