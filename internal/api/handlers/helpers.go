package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"spacetime-service/internal/domain"
	"spacetime-service/internal/platform/obs"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps engine error kinds onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCostRejected):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrNoCandidate):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	default:
		log.Printf("req_id=%s %s failed: %v", obs.RequestID(r.Context()), op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Printf("req_id=%s %s failed: status=%d err=%v", obs.RequestID(r.Context()), op, status, err)
	writeError(w, r, status, err.Error())
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// decodeBody reads exactly one JSON object with no unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func validateLocations(field string, locs []domain.Location) error {
	if len(locs) == 0 {
		return fmt.Errorf("%s: %w: must be non-empty", field, domain.ErrInvalidInput)
	}
	for i, l := range locs {
		if _, err := domain.NewLocation(l.Lat, l.Lng); err != nil {
			return fmt.Errorf("%s[%d]: %w", field, i, err)
		}
	}
	return nil
}

// parseMode falls back to def for an empty mode.
func parseMode(s string, def domain.TravelMode) (domain.TravelMode, error) {
	if s == "" {
		return def, nil
	}
	return domain.ParseTravelMode(s)
}
