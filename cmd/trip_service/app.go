package tripservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"eoncab/internal/directions"
	"eoncab/internal/general/config"
	"eoncab/internal/general/jwt"
	"eoncab/internal/general/logger"
	"eoncab/internal/general/metrics"
	"eoncab/internal/general/postgres"
	"eoncab/internal/general/rabbitmq"
	"eoncab/internal/general/websocket"
	"eoncab/internal/otp"
	"eoncab/internal/registry"
	"eoncab/internal/sim"
	"eoncab/internal/software/trip/service"
)

// Run wires the trip service and blocks until ctx is cancelled.
func Run(ctx context.Context, maxConcurrent int) error {
	// static request ID for startup logs
	log := logger.New("trip-service")
	ctx = log.WithRequestID(ctx, "startup-001")

	cfg, err := config.LoadFromFile("config/config.yaml")
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err, nil)
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	rmq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
		return err
	}
	defer rmq.Close()

	pub := rabbitmq.NewMQPublisher(rmq)
	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)
	mtr := metrics.NewCollector()

	rideStore := postgres.NewRideStore(pool)
	vehicleRepo := postgres.NewVehicleRepo(pool)
	dirs := directions.NewClient(cfg.Directions, log, mtr)

	groups := registry.NewRegistry(log, mtr)
	idlePool := registry.NewIdlePool(mtr)
	stateMachine := sim.NewStateMachine(rideStore, log)
	cancels := sim.NewCancelSet()
	otps := otp.NewStore()

	svc := service.NewService(
		log, mtr,
		groups, idlePool,
		stateMachine, cancels, otps,
		dirs, rideStore, vehicleRepo,
		pub,
		cfg.Simulator.MockOffsetMeters,
	)

	simulator := sim.NewSimulator(
		cancels, svc, log, mtr,
		cfg.Simulator.TickIntervalSeconds,
		cfg.Simulator.TickMultiplier,
		maxConcurrent,
	)
	svc.AttachSimulator(simulator)
	defer simulator.StopAll()

	// broker consumers: cancellations + driver selection
	go func() {
		if err := svc.RunCancellationConsumer(ctx, rmq); err != nil {
			log.Error(ctx, "cancel_consumer_stopped", "Cancellation consumer terminated", err, nil)
		}
	}()
	go func() {
		if err := svc.RunDriverSelectedConsumer(ctx, rmq); err != nil {
			log.Error(ctx, "selected_consumer_stopped", "Driver-selected consumer terminated", err, nil)
		}
	}()

	// metrics endpoint on its own listener
	go func() {
		if err := mtr.Serve(ctx, cfg.Metrics.Addr); err != nil {
			log.Error(ctx, "metrics_server_error", "Metrics server terminated with error", err, nil)
		}
	}()

	mux := http.NewServeMux()
	ws := websocket.NewWebSocket(log, jwtManager, svc)
	ws.Routes(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebSocket.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("Trip Service started on port %d", cfg.WebSocket.Port),
		map[string]any{"port": cfg.WebSocket.Port, "max_concurrent": maxConcurrent},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info(ctx, "shutdown_started", "Graceful shutdown initiated", nil)
		if err := srv.Shutdown(shCtx); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": cfg.WebSocket.Port})
			return err
		}
		return nil
	}

	return nil
}
