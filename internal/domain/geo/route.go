package geo

// Route is a normalized directions-provider response: the ordered turn
// geometry plus provider totals in meters/seconds.
type Route struct {
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	Coordinates          []Coordinate
}

// Path builds the simulation Path for this route.
func (r *Route) Path() (*Path, error) {
	return NewPath(r.Coordinates, r.TotalDistanceMeters, r.TotalDurationSeconds)
}
