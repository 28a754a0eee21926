package geo

import (
	"errors"
	"math"
)

// Coordinate is an immutable latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// Validate checks coordinate ranges.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return ErrInvalidLatitude
	}
	if c.Lng < -180 || c.Lng > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// DistanceMeters returns the great-circle distance to other in meters
// (haversine on a spherical earth).
func (c Coordinate) DistanceMeters(other Coordinate) float64 {
	const earthRadiusM = 6371000.0

	a1 := c.Lat * math.Pi / 180
	a2 := other.Lat * math.Pi / 180
	da := (other.Lat - c.Lat) * math.Pi / 180
	db := (other.Lng - c.Lng) * math.Pi / 180

	a := math.Sin(da/2)*math.Sin(da/2) +
		math.Cos(a1)*math.Cos(a2)*math.Sin(db/2)*math.Sin(db/2)
	chord := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * chord
}
