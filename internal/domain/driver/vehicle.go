package driver

import (
	"errors"
	"strings"
)

// VehicleType is a vehicle type as stored in the `vehicles` table.
type VehicleType string

const (
	VehicleCarSedan   VehicleType = "CAR_SEDAN"
	VehicleCarSUV     VehicleType = "CAR_SUV"
	VehicleBike       VehicleType = "BIKE"
	VehicleThreeWheel VehicleType = "THREE_WHEEL"
)

var ErrInvalidVehicleType = errors.New("invalid vehicle type")

// ParseVehicleType normalizes (uppercases+trims) and validates a vehicle type string.
func ParseVehicleType(in string) (VehicleType, error) {
	vt := VehicleType(strings.ToUpper(strings.TrimSpace(in)))
	if vt.Valid() {
		return vt, nil
	}
	return "", ErrInvalidVehicleType
}

// Valid reports whether vehicleType is one of the allowed vehicle type constants.
func (vehicleType VehicleType) Valid() bool {
	switch vehicleType {
	case VehicleCarSedan, VehicleCarSUV, VehicleBike, VehicleThreeWheel:
		return true
	default:
		return false
	}
}

// String returns the string representation of the VehicleType.
func (vehicleType VehicleType) String() string {
	return string(vehicleType)
}

// Vehicle is the vehicle on file for a driver. A driver may have none; the
// idle pool then broadcasts null vehicle fields.
type Vehicle struct {
	DriverID     string
	Type         VehicleType
	Number       string
	SeatCapacity int
}
