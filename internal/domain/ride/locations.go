package ride

import "eoncab/internal/domain/geo"

// Locations is the fixed origin/destination pair of a ride: pickup for the
// incoming leg, destination for the drop leg. Owned by the ride record; the
// trip core only reads it.
type Locations struct {
	Pickup      geo.Coordinate
	Destination geo.Coordinate
}

// LegEndpoints returns origin and destination for the given leg, with from
// overriding the origin when supplied (driver reports an explicit start).
func (loc Locations) LegEndpoints(leg Leg, from *geo.Coordinate) (geo.Coordinate, geo.Coordinate) {
	switch leg {
	case LegPickup:
		if from != nil {
			return *from, loc.Pickup
		}
		return loc.Pickup, loc.Pickup
	default:
		if from != nil {
			return *from, loc.Destination
		}
		return loc.Pickup, loc.Destination
	}
}
