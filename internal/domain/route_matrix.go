package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Condition reported by the provider for a matrix element.
type Condition string

const (
	ConditionRouteExists   Condition = "ROUTE_EXISTS"
	ConditionRouteNotFound Condition = "ROUTE_NOT_FOUND"
)

// ElementStatus is the per-element status. A zero Code means OK.
type ElementStatus struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Seconds is a travel duration encoded on the wire as "<seconds>s".
type Seconds int64

func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatInt(int64(s), 10) + "s")
}

func (s *Seconds) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	v, err := ParseSeconds(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSeconds parses a provider duration like "123s". Fractional values are
// rounded to the nearest second.
func ParseSeconds(raw string) (Seconds, error) {
	if !strings.HasSuffix(raw, "s") || len(raw) < 2 {
		return 0, fmt.Errorf("duration %q: expected <seconds>s", raw)
	}
	f, err := strconv.ParseFloat(raw[:len(raw)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", raw, err)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("duration %q: must be a non-negative number", raw)
	}
	return Seconds(math.Round(f)), nil
}

// RouteMatrixElement is one (origin, destination) measurement. Indices are
// local to the request that produced it until a caller rebases them.
// originIndex and destinationIndex are omitted on the wire when zero.
type RouteMatrixElement struct {
	OriginIndex      int           `json:"originIndex"`
	DestinationIndex int           `json:"destinationIndex"`
	Status           ElementStatus `json:"status"`
	DistanceMeters   int           `json:"distanceMeters"`
	Duration         Seconds       `json:"duration"`
	Condition        Condition     `json:"condition"`
}

// Routable reports whether the element carries a usable duration.
func (e RouteMatrixElement) Routable() bool {
	return e.Condition == ConditionRouteExists && e.Status.Code == 0
}

// SparseMatrix is a partial set of measured elements.
type SparseMatrix []RouteMatrixElement

// Routable returns the elements with an existing route.
func (m SparseMatrix) Routable() SparseMatrix {
	out := make(SparseMatrix, 0, len(m))
	for _, e := range m {
		if e.Routable() {
			out = append(out, e)
		}
	}
	return out
}
