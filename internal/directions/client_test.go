package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eoncab/internal/domain/geo"
	"eoncab/internal/general/config"
	"eoncab/internal/general/logger"
)

func newTestClient(endpoint string) *Client {
	return NewClient(config.DirectionsConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		APIHost:  "test-host",
	}, logger.New("directions-test"), nil)
}

func TestRouteRoundTrip(t *testing.T) {
	var gotOrigin, gotDest, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.URL.Query().Get("origin")
		gotDest = r.URL.Query().Get("destination")
		gotKey = r.Header.Get("X-RapidAPI-Key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"route": {
				"distance": 1234.5,
				"duration": 300,
				"geometry": {
					"coordinates": [[76.88, 43.23], [76.89, 43.24], [76.90, 43.25]]
				}
			}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	route, err := c.Route(context.Background(),
		geo.Coordinate{Lat: 43.23, Lng: 76.88},
		geo.Coordinate{Lat: 43.25, Lng: 76.90},
	)
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if gotOrigin != "43.230000,76.880000" {
		t.Errorf("origin query = %q", gotOrigin)
	}
	if gotDest != "43.250000,76.900000" {
		t.Errorf("destination query = %q", gotDest)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}

	if route.TotalDistanceMeters != 1234.5 || route.TotalDurationSeconds != 300 {
		t.Errorf("totals = %f/%f", route.TotalDistanceMeters, route.TotalDurationSeconds)
	}

	// provider sends [lng, lat]; the client must flip
	want := []geo.Coordinate{
		{Lat: 43.23, Lng: 76.88},
		{Lat: 43.24, Lng: 76.89},
		{Lat: 43.25, Lng: 76.90},
	}
	if len(route.Coordinates) != len(want) {
		t.Fatalf("coordinates = %d, want %d", len(route.Coordinates), len(want))
	}
	for i, c := range route.Coordinates {
		if c != want[i] {
			t.Errorf("coordinate[%d] = %v, want %v", i, c, want[i])
		}
	}
}

func TestRouteFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			"empty geometry",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"route":{"distance":0,"duration":0,"geometry":{"coordinates":[]}}}`))
			},
		},
		{
			"single coordinate",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"route":{"distance":10,"duration":5,"geometry":{"coordinates":[[76.88,43.23]]}}}`))
			},
		},
		{
			"garbage body",
			func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json at all`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := newTestClient(srv.URL)
			_, err := c.Route(context.Background(), geo.Coordinate{}, geo.Coordinate{Lat: 1, Lng: 1})
			if !errors.Is(err, ErrRouteUnavailable) {
				t.Fatalf("err = %v, want ErrRouteUnavailable", err)
			}
		})
	}
}

func TestRouteUnreachableProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // dead endpoint

	c := newTestClient(srv.URL)
	_, err := c.Route(context.Background(), geo.Coordinate{}, geo.Coordinate{Lat: 1, Lng: 1})
	if !errors.Is(err, ErrRouteUnavailable) {
		t.Fatalf("err = %v, want ErrRouteUnavailable", err)
	}
}
