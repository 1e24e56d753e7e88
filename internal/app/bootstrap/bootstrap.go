package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	rolestewardship "stewardship/contexts/group-governance/role-stewardship"
	"stewardship/contexts/group-governance/role-stewardship/adapters/memory"
	"stewardship/contexts/group-governance/role-stewardship/adapters/metrics"
	postgresadapter "stewardship/contexts/group-governance/role-stewardship/adapters/postgres"
	"stewardship/internal/platform/config"
	"stewardship/internal/platform/db"
	"stewardship/internal/platform/httpserver"
	"stewardship/internal/platform/messaging"
	"stewardship/internal/platform/tracing"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server  *httpserver.Server
	runtime *runtime
}

type WorkerApp struct {
	module           rolestewardship.Module
	runtime          *runtime
	pollInterval     time.Duration
	enableProjection bool
}

// runtime owns the process-wide resources shared by the API and worker.
type runtime struct {
	cfg             config.Config
	logger          *slog.Logger
	database        *db.Database
	registry        *prometheus.Registry
	bus             *messaging.Bus
	module          rolestewardship.Module
	shutdownTracing func(context.Context) error
}

func buildRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger, process string) (*runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", process)

	shutdownTracing, err := tracing.Setup(cfg.ServiceName, cfg.TracingEnabled, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	database, err := db.Connect(db.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DatabaseDSN,
		Tracing: cfg.TracingEnabled,
	})
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := postgresadapter.RunMigrations(ctx, database.DB); err != nil {
			_ = database.Close()
			_ = shutdownTracing(ctx)
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := messaging.NewBus(cfg.KafkaBrokers, logger)
	repo := postgresadapter.NewRepository(database.DB, cfg.LockTimeout, logger)
	module := rolestewardship.NewModule(rolestewardship.Dependencies{
		Repository:         repo,
		Members:            repo,
		External:           repo,
		Projection:         repo,
		Outbox:             repo,
		CapabilityCache:    memory.NewCapabilityCache(),
		Publisher:          bus,
		Subscriber:         bus,
		Clock:              postgresadapter.SystemClock{},
		IDGenerator:        postgresadapter.UUIDGenerator{},
		Metrics:            metrics.NewPrometheus(registry),
		LockTimeout:        cfg.LockTimeout,
		CapabilityCacheTTL: cfg.CapabilityCacheTTL,
		AggregationPolicy:  cfg.AggregationPolicy,
		OutboxBatchSize:    cfg.OutboxBatchSize,
		Logger:             logger,
	})

	return &runtime{
		cfg:             cfg,
		logger:          logger,
		database:        database,
		registry:        registry,
		bus:             bus,
		module:          module,
		shutdownTracing: shutdownTracing,
	}, nil
}

func (r *runtime) close() error {
	if r == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if r.shutdownTracing != nil {
		if err := r.shutdownTracing(ctx); err != nil {
			r.logger.Warn("tracing shutdown failed",
				"event", "bootstrap_tracing_shutdown_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}
	return r.database.Close()
}

func BuildAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	rt, err := buildRuntime(ctx, cfg, logger, "api")
	if err != nil {
		return nil, err
	}
	auth := httpserver.Authenticator{}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		auth.Secret = []byte(secret)
	}
	server := httpserver.New(rt.module, auth, rt.registry, rt.logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{server: server, runtime: rt}, nil
}

func (a *APIApp) Handler() http.Handler {
	return a.server.Handler()
}

func (a *APIApp) Run(ctx context.Context) error {
	a.runtime.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"db_driver", a.runtime.cfg.DBDriver,
	)
	return a.server.Start(ctx)
}

func (a *APIApp) Close() error {
	return a.runtime.close()
}

func BuildWorker(ctx context.Context, cfg config.Config, logger *slog.Logger) (*WorkerApp, error) {
	rt, err := buildRuntime(ctx, cfg, logger, "worker")
	if err != nil {
		return nil, err
	}
	return &WorkerApp{
		module:           rt.module,
		runtime:          rt,
		pollInterval:     cfg.OutboxPollInterval,
		enableProjection: cfg.EnableMembershipProjection,
	}, nil
}

// Run drives the outbox relay on a ticker and, when enabled, the membership
// projector. Both stop when ctx is done.
func (w *WorkerApp) Run(ctx context.Context) error {
	logger := w.runtime.logger
	group, ctx := errgroup.WithContext(ctx)

	if w.enableProjection {
		group.Go(func() error {
			if err := w.module.Projector.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			w.runtime.bus.Wait()
			return nil
		})
	}

	group.Go(func() error {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()

		logger.Info("worker app started",
			"event", "bootstrap_worker_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"poll_interval", w.pollInterval.String(),
			"membership_projection", w.enableProjection,
		)
		for {
			if _, err := w.module.Relay.RunOnce(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("outbox relay cycle failed",
					"event", "bootstrap_outbox_cycle_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	return group.Wait()
}

func (w *WorkerApp) Close() error {
	return w.runtime.close()
}

// Migrate applies the embedded schema and exits.
func Migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	database, err := db.Connect(db.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		return err
	}
	defer database.Close()

	if err := postgresadapter.RunMigrations(ctx, database.DB); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("migrations applied",
			"event", "bootstrap_migrations_applied",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"db_driver", cfg.DBDriver,
		)
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
