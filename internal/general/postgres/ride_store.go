package postgres

import (
	"context"
	"errors"
	"fmt"

	"eoncab/internal/domain/ride"
	"eoncab/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRideNotFound is recoverable: callers fall back to the default state.
var ErrRideNotFound = errors.New("ride not found")

// RideStore persists ride lifecycle state using pgx and plain SQL.
type RideStore struct {
	pool *pgxpool.Pool
}

func NewRideStore(pool *pgxpool.Pool) ports.RideStore {
	return &RideStore{pool: pool}
}

// GetState reads the ride's current state.
func (s *RideStore) GetState(ctx context.Context, rideID string) (ride.State, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM rides WHERE id = $1`,
		rideID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRideNotFound
		}
		return "", fmt.Errorf("query ride state: %w", err)
	}

	st, err := ride.ParseState(raw)
	if err != nil {
		return "", fmt.Errorf("ride %s holds state %q: %w", rideID, raw, err)
	}
	return st, nil
}

// GetLocations reads the ride's fixed pickup/destination pair.
func (s *RideStore) GetLocations(ctx context.Context, rideID string) (ride.Locations, error) {
	var loc ride.Locations
	err := s.pool.QueryRow(ctx,
		`SELECT pickup_lat, pickup_lng, destination_lat, destination_lng
		 FROM rides WHERE id = $1`,
		rideID,
	).Scan(&loc.Pickup.Lat, &loc.Pickup.Lng, &loc.Destination.Lat, &loc.Destination.Lng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ride.Locations{}, ErrRideNotFound
		}
		return ride.Locations{}, fmt.Errorf("query ride locations: %w", err)
	}
	return loc, nil
}

// SetState writes the ride's state. Terminal states also release the ride's
// user and driver associations so both parties become assignable again.
func (s *RideStore) SetState(ctx context.Context, rideID string, state ride.State) error {
	query := `UPDATE rides SET state = $2, updated_at = now() WHERE id = $1`
	if state.Terminal() {
		query = `UPDATE rides
		         SET state = $2, user_id = NULL, driver_id = NULL, updated_at = now()
		         WHERE id = $1`
	}

	tag, err := s.pool.Exec(ctx, query, rideID, state.String())
	if err != nil {
		return fmt.Errorf("update ride state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRideNotFound
	}
	return nil
}
