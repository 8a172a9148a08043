package handlers

import (
	"context"
	"net/http"
	"spacetime-service/internal/api/dto"
	"spacetime-service/internal/domain"
)

type DenseQuerier interface {
	QueryDense(ctx context.Context, origins, destinations []domain.Location, mode domain.TravelMode) (domain.SparseMatrix, error)
}

// MatrixHandler serves route matrices for arbitrary origin and destination lists.
type MatrixHandler struct {
	Batcher DenseQuerier
}

func (h *MatrixHandler) DistanceMatrix(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.DistanceMatrixRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validateLocations("origins", req.Origins); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateLocations("destinations", req.Destinations); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	mode, err := parseMode(req.TravelMode, domain.TravelModeDrive)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	matrix, err := h.Batcher.QueryDense(r.Context(), req.Origins, req.Destinations, mode)
	if err != nil {
		writeServiceError(w, r, "distance matrix", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DistanceMatrixResponse{
		Origins:      req.Origins,
		Destinations: req.Destinations,
		TravelMode:   mode,
		Matrix:       matrix,
	})
}
