package domain

import (
	"fmt"
	"strings"
)

type TravelMode string

const (
	TravelModeDrive   TravelMode = "DRIVE"
	TravelModeTransit TravelMode = "TRANSIT"
	TravelModeWalk    TravelMode = "WALK"
)

// TravelModes lists the supported modes in display order.
var TravelModes = []TravelMode{TravelModeWalk, TravelModeDrive, TravelModeTransit}

func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("travel mode %q: %w: want one of WALK, DRIVE, TRANSIT", s, ErrInvalidInput)
	}
	return m, nil
}

func (m TravelMode) Valid() bool {
	switch m {
	case TravelModeDrive, TravelModeTransit, TravelModeWalk:
		return true
	}
	return false
}

func (m TravelMode) String() string { return string(m) }

// RootTileSize is the side of the square tile that fits in one provider request.
// Transit matrices are limited to 100 elements per request, the others to 625.
func (m TravelMode) RootTileSize() int {
	if m == TravelModeTransit {
		return 10
	}
	return 25
}

// MaxElements is the most origin×destination pairs one provider request may carry.
func (m TravelMode) MaxElements() int {
	n := m.RootTileSize()
	return n * n
}

// Label and nominal speed for client display.
func (m TravelMode) Label() string {
	switch m {
	case TravelModeDrive:
		return "Driving"
	case TravelModeTransit:
		return "Public Transit"
	default:
		return "Walking"
	}
}

func (m TravelMode) NominalSpeedKmh() int {
	switch m {
	case TravelModeDrive:
		return 30
	case TravelModeTransit:
		return 20
	default:
		return 5
	}
}
