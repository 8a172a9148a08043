package handlers

import (
	"log"
	"net/http"
	"spacetime-service/internal/api/dto"
	"spacetime-service/internal/domain"
)

type HealthHandler struct {
	Cache            CacheAdmin
	APIKeyConfigured bool
}

// Health reports liveness, whether a provider key is set and cache stats.
// Cache failures do not fail the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	res := dto.HealthResponse{Status: "ok", APIKeyConfigured: h.APIKeyConfigured}
	if h.Cache != nil {
		if s, err := h.Cache.Stats(r.Context()); err != nil {
			log.Printf("health: cache stats failed: %v", err)
		} else {
			res.Cache = statsResponse(s)
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}

// TravelModes lists the supported travel modes.
func TravelModes(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	res := dto.ListTravelModesResponse{TravelModes: make([]dto.TravelModeResponse, 0, len(domain.TravelModes))}
	for _, m := range domain.TravelModes {
		res.TravelModes = append(res.TravelModes, dto.TravelModeResponse{
			Mode:     m.String(),
			Label:    m.Label(),
			SpeedKmh: m.NominalSpeedKmh(),
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}
