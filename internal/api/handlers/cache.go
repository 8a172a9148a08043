package handlers

import (
	"context"
	"net/http"
	"spacetime-service/internal/adapters/cache"
	"spacetime-service/internal/api/dto"
)

type CacheAdmin interface {
	Stats(ctx context.Context) (cache.Stats, error)
	Sweep(ctx context.Context) (int, error)
}

type CacheHandler struct {
	Cache CacheAdmin
}

func statsResponse(s cache.Stats) *dto.CacheStatsResponse {
	return &dto.CacheStatsResponse{
		TotalEntries:   s.Entries,
		TotalSizeBytes: s.TotalBytes,
		TotalSizeMB:    s.SizeMB(),
		Backend:        s.Backend,
	}
}

func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	s, err := h.Cache.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, "cache stats", err)
		return
	}
	writeJSON(w, r, http.StatusOK, statsResponse(s))
}

// Clear removes expired and unreadable entries.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	n, err := h.Cache.Sweep(r.Context())
	if err != nil {
		writeServiceError(w, r, "cache sweep", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.CacheClearResponse{
		Message:        "expired cache entries removed",
		RemovedEntries: n,
	})
}
