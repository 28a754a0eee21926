package geo

import "errors"

// ErrInvalidPath is returned when a path has fewer than two coordinates.
var ErrInvalidPath = errors.New("path needs at least two coordinates")

// Path is an immutable ordered coordinate sequence with precomputed
// per-segment great-circle distances. One Path is built per simulation run
// from the directions-provider response and does not outlive it.
type Path struct {
	coords          []Coordinate
	segmentDistance []float64 // meters, len == len(coords)-1
	totalDistance   float64   // meters, provider total
	totalDuration   float64   // seconds, provider total
}

// NewPath builds a Path from ordered coordinates plus the provider's total
// distance (meters) and duration (seconds).
func NewPath(coords []Coordinate, totalDistanceMeters, totalDurationSeconds float64) (*Path, error) {
	if len(coords) < 2 {
		return nil, ErrInvalidPath
	}

	own := make([]Coordinate, len(coords))
	copy(own, coords)

	segs := make([]float64, len(own)-1)
	for i := 0; i < len(own)-1; i++ {
		segs[i] = own[i].DistanceMeters(own[i+1])
	}

	return &Path{
		coords:          own,
		segmentDistance: segs,
		totalDistance:   totalDistanceMeters,
		totalDuration:   totalDurationSeconds,
	}, nil
}

// Len returns the number of coordinates.
func (p *Path) Len() int { return len(p.coords) }

// At returns the coordinate at index i.
func (p *Path) At(i int) Coordinate { return p.coords[i] }

// SegmentDistance returns the distance in meters between coordinates i and i+1.
func (p *Path) SegmentDistance(i int) float64 { return p.segmentDistance[i] }

// Coordinates returns a copy of the full coordinate sequence (for client-side
// route previews).
func (p *Path) Coordinates() []Coordinate {
	out := make([]Coordinate, len(p.coords))
	copy(out, p.coords)
	return out
}

// TotalDistance returns the provider-reported total distance in meters.
func (p *Path) TotalDistance() float64 { return p.totalDistance }

// TotalDuration returns the provider-reported total duration in seconds.
func (p *Path) TotalDuration() float64 { return p.totalDuration }

// AverageSpeed returns totalDistance/totalDuration in m/s. Used as the
// initial simulated speed of a run. Returns 0 for a zero duration.
func (p *Path) AverageSpeed() float64 {
	if p.totalDuration <= 0 {
		return 0
	}
	return p.totalDistance / p.totalDuration
}
