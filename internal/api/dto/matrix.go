package dto

import "spacetime-service/internal/domain"

type DistanceMatrixRequest struct {
	Origins      []domain.Location `json:"origins"`
	Destinations []domain.Location `json:"destinations"`
	TravelMode   string            `json:"travel_mode"`
}

type DistanceMatrixResponse struct {
	Origins      []domain.Location   `json:"origins"`
	Destinations []domain.Location   `json:"destinations"`
	TravelMode   domain.TravelMode   `json:"travel_mode"`
	Matrix       domain.SparseMatrix `json:"matrix"`
}
