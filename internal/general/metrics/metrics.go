package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the trip service's prometheus registry. All users treat a
// nil *Collector as "metrics disabled".
type Collector struct {
	reg *prometheus.Registry

	ActiveRuns prometheus.Gauge
	IdlePool   prometheus.Gauge

	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsCancelled prometheus.Counter

	Ticks          prometheus.Counter
	ProgressEvents prometheus.Counter

	Broadcasts     prometheus.Counter
	BroadcastErrs  prometheus.Counter
	OTPIssued      prometheus.Counter
	DirectionsErrs prometheus.Counter
}

// NewCollector registers all trip-service metrics on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trip_active_runs",
			Help: "Number of currently running leg simulations.",
		}),
		IdlePool: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trip_idle_drivers",
			Help: "Number of drivers in the idle pool.",
		}),
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_runs_started_total",
			Help: "Leg simulations started.",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_runs_completed_total",
			Help: "Leg simulations that reached the path end.",
		}),
		RunsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_runs_cancelled_total",
			Help: "Leg simulations terminated by cancellation.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_sim_ticks_total",
			Help: "Simulator ticks processed (including silent ticks).",
		}),
		ProgressEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_progress_events_total",
			Help: "In-progress payloads emitted on segment boundaries.",
		}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_broadcasts_total",
			Help: "Payload deliveries attempted to group members.",
		}),
		BroadcastErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_broadcast_errors_total",
			Help: "Per-member delivery failures (best-effort, non-fatal).",
		}),
		OTPIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_otp_issued_total",
			Help: "Pickup confirmation codes issued.",
		}),
		DirectionsErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_directions_errors_total",
			Help: "Directions lookups that failed or returned no route.",
		}),
	}

	reg.MustRegister(
		c.ActiveRuns, c.IdlePool,
		c.RunsStarted, c.RunsCompleted, c.RunsCancelled,
		c.Ticks, c.ProgressEvents,
		c.Broadcasts, c.BroadcastErrs,
		c.OTPIssued, c.DirectionsErrs,
	)

	return c
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	if c == nil || addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
