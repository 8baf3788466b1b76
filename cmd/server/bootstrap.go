package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jgirmay/geoattend/internal/health"
	"github.com/jgirmay/geoattend/pkg/auth"
	"github.com/jgirmay/geoattend/pkg/config"
	"github.com/jgirmay/geoattend/pkg/database"
	"github.com/jgirmay/geoattend/pkg/geofence"
	"github.com/jgirmay/geoattend/pkg/http/handlers"
	"github.com/jgirmay/geoattend/pkg/http/middleware"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/metrics"
	"github.com/jgirmay/geoattend/pkg/repository"
	"github.com/jgirmay/geoattend/pkg/services/attendance"
	"github.com/jgirmay/geoattend/pkg/services/presence"
	"github.com/jgirmay/geoattend/pkg/websocket"
)

// App holds every initialized component
type App struct {
	cfg         *config.Config
	logger      *logging.Logger
	registry    *repository.Registry
	broadcaster *presence.Broadcaster
	ledger      *attendance.Ledger
	api         http.Handler
	ops         http.Handler
}

// NewApp wires the service from cfg
func NewApp(cfg *config.Config, logger *logging.Logger) (*App, error) {
	logger.Info("[INIT] Opening database", zap.String("type", cfg.Database.Type))
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := repository.NewRegistry(db)
	if err := registry.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize repository registry: %w", err)
	}
	if cfg.Database.AutoMigrate || strings.EqualFold(cfg.Database.Type, "sqlite") {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := registry.Migrate(ctx); err != nil {
			_ = registry.Close()
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
		logger.Info("[INIT] Schema migrated")
	}

	location, err := cfg.Location()
	if err != nil {
		_ = registry.Close()
		return nil, err
	}

	evaluator, err := geofence.NewEvaluator(geofence.Config{
		Center:       geofence.Point{Latitude: cfg.Office.Latitude, Longitude: cfg.Office.Longitude},
		RadiusMeters: cfg.Office.RadiusMeters,
		BufferMeters: cfg.Office.BufferMeters,
		WalkingSpeed: cfg.Office.WalkingSpeed,
		Address:      cfg.Office.Address,
		Timezone:     cfg.Office.Timezone,
	})
	if err != nil {
		_ = registry.Close()
		return nil, fmt.Errorf("office geofence: %w", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promRegistry)

	broadcaster := presence.NewBroadcaster(presence.NewRegistry(), evaluator, logger.Named("presence"), m)

	ledger, err := attendance.NewLedger(registry.AttendanceRepository, evaluator,
		attendance.WithLocation(location),
		attendance.WithStoreTimeout(cfg.Attendance.StoreTimeout),
		attendance.WithSink(broadcaster),
		attendance.WithLogger(logger.Named("attendance")),
		attendance.WithMetrics(m),
	)
	if err != nil {
		_ = registry.Close()
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	resolver := auth.NewResolver(tokens, registry.EmployeeRepository, cfg.Auth.ObserverRoles)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.AccessLog(logger.Named("http")))
	router.Use(chimiddleware.Recoverer)

	handlers.RegisterAttendanceRoutes(router, ledger, evaluator, location, resolver, logger.Named("attendance"))
	handlers.RegisterPresenceRoutes(router, broadcaster, resolver, logger.Named("presence"))
	router.Handle("/ws", websocket.NewHandler(broadcaster, resolver, logger,
		websocket.OptionsFromConfig(cfg.WebSocket)))

	checker := health.NewHealthChecker(registry, broadcaster.Registry().Count, cfg.Attendance.StoreTimeout)

	logger.Info("[INIT] Components initialized",
		zap.String("office", cfg.Office.Address),
		zap.Float64("radius_m", cfg.Office.RadiusMeters),
		zap.Float64("buffer_m", cfg.Office.BufferMeters),
		zap.String("timezone", location.String()),
	)

	return &App{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		broadcaster: broadcaster,
		ledger:      ledger,
		api:         router,
		ops:         health.NewOpsEngine(checker, promRegistry),
	}, nil
}

// Run serves the API and ops listeners until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context) error {
	apiServer := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.api,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}
	opsServer := &http.Server{
		Addr:              a.cfg.OpsAddr(),
		Handler:           a.ops,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("[INFO] Starting API server", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.logger.Info("[INFO] Starting ops server", zap.String("addr", opsServer.Addr))
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("[SHUTDOWN] Initiating graceful shutdown...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("api shutdown: %w", err))
		}

		// hijacked sockets are not tracked by http.Server
		a.logger.Info("[SHUTDOWN] Closing presence sessions...")
		a.broadcaster.Shutdown()

		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("ops shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

// Close releases the database
func (a *App) Close() error {
	a.logger.Info("[SHUTDOWN] Closing database connection...")
	return a.registry.Close()
}
