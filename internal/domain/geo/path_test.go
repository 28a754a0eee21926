package geo

import (
	"errors"
	"math"
	"testing"
)

func TestNewPathRejectsShortInput(t *testing.T) {
	tests := []struct {
		name   string
		coords []Coordinate
	}{
		{"empty", nil},
		{"single", []Coordinate{{Lat: 1, Lng: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPath(tt.coords, 100, 60); !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("NewPath(%d coords) err = %v, want ErrInvalidPath", len(tt.coords), err)
			}
		})
	}
}

func TestNewPathSegmentInvariants(t *testing.T) {
	coords := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.001},
		{Lat: 0, Lng: 0.002},
		{Lat: 0.001, Lng: 0.002},
	}

	p, err := NewPath(coords, 400, 40)
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}

	if got := p.Len(); got != len(coords) {
		t.Fatalf("Len = %d, want %d", got, len(coords))
	}

	// exactly len-1 segments, all non-negative
	for i := 0; i < p.Len()-1; i++ {
		if d := p.SegmentDistance(i); d < 0 {
			t.Errorf("SegmentDistance(%d) = %f, want >= 0", i, d)
		}
	}

	for i, c := range coords {
		if p.At(i) != c {
			t.Errorf("At(%d) = %v, want %v", i, p.At(i), c)
		}
	}
}

func TestEquatorSegmentDistances(t *testing.T) {
	// along the equator, 0.001 deg of longitude is about 111.3 m; both
	// segments must come out equal
	p, err := NewPath([]Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0.001},
		{Lat: 0, Lng: 0.002},
	}, 222, 20)
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}

	s0, s1 := p.SegmentDistance(0), p.SegmentDistance(1)
	if math.Abs(s0-111.19) > 0.5 {
		t.Errorf("SegmentDistance(0) = %f, want ~111.19", s0)
	}
	if math.Abs(s0-s1) > 1e-6 {
		t.Errorf("equator segments differ: %f vs %f", s0, s1)
	}
}

func TestPathIsolatedFromCallerSlice(t *testing.T) {
	coords := []Coordinate{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	p, err := NewPath(coords, 100, 10)
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}

	coords[0] = Coordinate{Lat: 50, Lng: 50}
	if p.At(0) != (Coordinate{Lat: 0, Lng: 0}) {
		t.Fatalf("path mutated through caller slice: At(0) = %v", p.At(0))
	}

	out := p.Coordinates()
	out[1] = Coordinate{Lat: 99, Lng: 99}
	if p.At(1) != (Coordinate{Lat: 1, Lng: 1}) {
		t.Fatalf("path mutated through Coordinates copy: At(1) = %v", p.At(1))
	}
}

func TestAverageSpeed(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		duration float64
		want     float64
	}{
		{"normal", 300, 30, 10},
		{"zero duration", 300, 0, 0},
		{"negative duration", 300, -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPath([]Coordinate{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}}, tt.distance, tt.duration)
			if err != nil {
				t.Fatalf("NewPath: %v", err)
			}
			if got := p.AverageSpeed(); got != tt.want {
				t.Errorf("AverageSpeed = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCoordinateValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr error
	}{
		{"valid", Coordinate{Lat: 43.23, Lng: 76.88}, nil},
		{"lat too high", Coordinate{Lat: 90.1, Lng: 0}, ErrInvalidLatitude},
		{"lat too low", Coordinate{Lat: -90.1, Lng: 0}, ErrInvalidLatitude},
		{"lng too high", Coordinate{Lat: 0, Lng: 180.1}, ErrInvalidLongitude},
		{"lng too low", Coordinate{Lat: 0, Lng: -180.1}, ErrInvalidLongitude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
