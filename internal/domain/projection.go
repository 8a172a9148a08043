package domain

import (
	"fmt"
	"math"
)

const (
	// StaticMapSizeCoef narrows the grid below the raw viewport so edge
	// points stay snappable.
	StaticMapSizeCoef = 0.7

	// MaxSnapNormalizedDistance is the largest accepted snap displacement,
	// as a fraction of the normalized map extent.
	MaxSnapNormalizedDistance = 0.05

	MaxZoom       = 21
	MaxSizePixels = 640

	kmPerDegreeLat = 111.0
)

// MercatorScaleFactor is the Mercator stretch at a latitude.
func MercatorScaleFactor(lat float64) float64 {
	return 1 / math.Cos(lat*math.Pi/180)
}

// Viewport describes the area a static map of SizePixels at Zoom displays.
type Viewport struct {
	Center     Location
	Zoom       int
	SizePixels int
}

func (v Viewport) Validate() error {
	if v.Zoom < 0 || v.Zoom > MaxZoom {
		return fmt.Errorf("viewport: %w: zoom must be between 0 and %d", ErrInvalidInput, MaxZoom)
	}
	if v.SizePixels < 1 || v.SizePixels > MaxSizePixels {
		return fmt.Errorf("viewport: %w: size_pixels must be between 1 and %d", ErrInvalidInput, MaxSizePixels)
	}
	return nil
}

// Dimensions returns the (lat, lng) span of the grid area in degrees.
func (v Viewport) Dimensions() (float64, float64) {
	lng := StaticMapSizeCoef * 2 * float64(v.SizePixels) / math.Exp2(float64(v.Zoom))
	return lng / MercatorScaleFactor(v.Center.Lat), lng
}

// Normalize projects a location onto the map, with [0,1] covering the grid
// area along both axes. y grows southwards.
func (v Viewport) Normalize(l Location) (x, y float64) {
	maxLng := StaticMapSizeCoef * float64(v.SizePixels) / math.Exp2(float64(v.Zoom))
	maxLat := maxLng / MercatorScaleFactor(l.Lat)

	x = (l.Lng - v.Center.Lng + maxLng) / (2 * maxLng)
	y = (-l.Lat + v.Center.Lat + maxLat) / (2 * maxLat)
	return x, y
}

// NormalizedDistance is the Euclidean distance of two projected locations.
func (v Viewport) NormalizedDistance(a, b Location) float64 {
	ax, ay := v.Normalize(a)
	bx, by := v.Normalize(b)
	return math.Hypot(ax-bx, ay-by)
}

// Lattice lays out size×size evenly spaced locations over the grid area,
// row by row from the southern edge.
func (v Viewport) Lattice(size int) [][]Location {
	latSpan, lngSpan := v.Dimensions()
	lats := linspace(v.Center.Lat-latSpan/2, v.Center.Lat+latSpan/2, size)
	lngs := linspace(v.Center.Lng-lngSpan/2, v.Center.Lng+lngSpan/2, size)

	rows := make([][]Location, 0, size)
	for _, lat := range lats {
		row := make([]Location, 0, size)
		for _, lng := range lngs {
			row = append(row, Location{Lat: lat, Lng: lng})
		}
		rows = append(rows, row)
	}
	return rows
}

// RadiusLattice lays out size×size points within radiusKm of center.
// Points are ordered column by column (x outer, y inner).
func RadiusLattice(center Location, radiusKm float64, size int) []Location {
	latOff := radiusKm / kmPerDegreeLat
	lngOff := radiusKm / (kmPerDegreeLat * math.Cos(center.Lat*math.Pi/180))

	norm := linspace(-1, 1, size)
	out := make([]Location, 0, size*size)
	for _, x := range norm {
		for _, y := range norm {
			out = append(out, Location{
				Lat: center.Lat + y*latOff,
				Lng: center.Lng + x*lngOff,
			})
		}
	}
	return out
}

func linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{(a + b) / 2}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	return out
}
