package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"eoncab/internal/domain/geo"
	"eoncab/internal/general/config"
	"eoncab/internal/general/logger"
	"eoncab/internal/general/metrics"
)

// ErrRouteUnavailable covers every directions failure a caller can act on:
// transport errors, non-200 responses, and responses with no usable route.
var ErrRouteUnavailable = errors.New("no route available")

// Client fetches driving routes from the external directions API.
type Client struct {
	http     *http.Client
	endpoint string
	key      string
	host     string
	log      *logger.Logger
	mtr      *metrics.Collector
}

func NewClient(cfg config.DirectionsConfig, log *logger.Logger, mtr *metrics.Collector) *Client {
	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: cfg.Endpoint,
		key:      cfg.APIKey,
		host:     cfg.APIHost,
		log:      log,
		mtr:      mtr,
	}
}

type routeResponse struct {
	Route struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat] pairs
		} `json:"geometry"`
	} `json:"route"`
}

// Route fetches a route between two points. Every failure mode wraps
// ErrRouteUnavailable; callers do not retry, they surface the condition.
func (c *Client) Route(ctx context.Context, origin, destination geo.Coordinate) (*geo.Route, error) {
	q := url.Values{}
	q.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	q.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRouteUnavailable, err)
	}
	req.Header.Set("X-RapidAPI-Key", c.key)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(ctx, fmt.Errorf("%w: %v", ErrRouteUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, c.fail(ctx, fmt.Errorf("%w: status %d", ErrRouteUnavailable, resp.StatusCode))
	}

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, c.fail(ctx, fmt.Errorf("%w: decode: %v", ErrRouteUnavailable, err))
	}

	coords := make([]geo.Coordinate, 0, len(rr.Route.Geometry.Coordinates))
	for _, pair := range rr.Route.Geometry.Coordinates {
		if len(pair) < 2 {
			continue
		}
		coords = append(coords, geo.Coordinate{Lat: pair[1], Lng: pair[0]})
	}
	if len(coords) < 2 {
		return nil, c.fail(ctx, fmt.Errorf("%w: %d usable coordinates", ErrRouteUnavailable, len(coords)))
	}

	return &geo.Route{
		TotalDistanceMeters:  rr.Route.Distance,
		TotalDurationSeconds: rr.Route.Duration,
		Coordinates:          coords,
	}, nil
}

func (c *Client) fail(ctx context.Context, err error) error {
	if c.mtr != nil {
		c.mtr.DirectionsErrs.Inc()
	}
	if c.log != nil {
		c.log.Error(ctx, "directions.route", "directions lookup failed", err, nil)
	}
	return err
}
