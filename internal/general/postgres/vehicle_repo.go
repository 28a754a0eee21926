package postgres

import (
	"context"
	"errors"
	"fmt"

	"eoncab/internal/domain/driver"
	"eoncab/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VehicleRepo reads driver vehicle records for idle-pool enrichment.
type VehicleRepo struct {
	pool *pgxpool.Pool
}

func NewVehicleRepo(pool *pgxpool.Pool) ports.VehicleRepository {
	return &VehicleRepo{pool: pool}
}

// GetByDriver returns the driver's registered vehicle, or (nil, nil) when
// none is on file.
func (r *VehicleRepo) GetByDriver(ctx context.Context, driverID string) (*driver.Vehicle, error) {
	var (
		v       driver.Vehicle
		rawType string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT driver_id, vehicle_type, vehicle_number, seat_capacity
		 FROM vehicles WHERE driver_id = $1`,
		driverID,
	).Scan(&v.DriverID, &rawType, &v.Number, &v.SeatCapacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query vehicle by driver: %w", err)
	}

	vt, err := driver.ParseVehicleType(rawType)
	if err != nil {
		return nil, fmt.Errorf("driver %s vehicle holds type %q: %w", driverID, rawType, err)
	}
	v.Type = vt

	return &v, nil
}
