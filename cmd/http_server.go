package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/resource-dashboard/internal"
	"github.com/frahmantamala/resource-dashboard/internal/core/events"
	"github.com/frahmantamala/resource-dashboard/internal/dashboard"
	"github.com/frahmantamala/resource-dashboard/internal/gateway"
	"github.com/frahmantamala/resource-dashboard/internal/guard"
	"github.com/frahmantamala/resource-dashboard/internal/session"
	"github.com/frahmantamala/resource-dashboard/internal/session/gormkv"
	"github.com/frahmantamala/resource-dashboard/internal/session/rediskv"
	"github.com/frahmantamala/resource-dashboard/internal/transport"
	"github.com/frahmantamala/resource-dashboard/internal/transport/middleware"
	"github.com/frahmantamala/resource-dashboard/internal/transport/rest"
	"github.com/frahmantamala/resource-dashboard/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Serve the dashboard views over HTTP on the configured port`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

type Dependencies struct {
	Config    *internal.Config
	Logger    *slog.Logger
	Bus       *events.EventBus
	Sessions  *session.Store
	SessionDB *sqlx.DB
	Gateway   *gateway.Client
	Metrics   *gateway.Metrics
	Auth      *dashboard.Auth
	Router    *chi.Mux
}

func startHTTPServer(ctx context.Context) error {
	deps, err := initializeDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	cfg := deps.Config.Server
	addr := fmt.Sprintf(":%d", cfg.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "backend", deps.Config.Gateway.BaseURL)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return serve(server, deps.Logger)
}

// serve runs server until SIGINT or SIGTERM, then shuts it down gracefully.
func serve(server *http.Server, log *slog.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("Server stopped")
	return nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg := appConfig
	log := logger.L()
	bus := events.NewEventBus(log)
	watchSessionEvents(bus, log)

	kv, sessionDB, checks, err := openSessionStorage(ctx, cfg.SessionStore)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(kv, bus, log)
	sessions.Init(ctx)

	var metrics *gateway.Metrics
	if cfg.Observability.Metrics.Enabled {
		metrics = gateway.NewMetrics()
	}
	client := gateway.NewClient(gateway.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		Timeout:        cfg.Gateway.Timeout,
		MaxConcurrency: cfg.Gateway.MaxConcurrency,
	}, sessions, metrics, log)
	checks = append(checks, rest.Check{Name: "gateway", Ping: client.Ping})

	authSvc := dashboard.NewAuth(client, sessions, log)
	routes := rest.Routes{
		Dashboard: dashboard.NewHandler(authSvc, dashboard.NewService(client, log), transport.NewBaseHandler(log)),
		Guard:     guard.New(sessions, log),
		Supersede: middleware.NewSupersede(bus, log),
		Health:    rest.NewHealthHandler(checks...),
		Logger:    log,
	}
	if metrics != nil {
		routes.Metrics = metrics.Handler()
		routes.MetricsPath = cfg.Observability.Metrics.Path
	}

	return &Dependencies{
		Config:    cfg,
		Logger:    log,
		Bus:       bus,
		Sessions:  sessions,
		SessionDB: sessionDB,
		Gateway:   client,
		Metrics:   metrics,
		Auth:      authSvc,
		Router:    rest.NewRouter(routes),
	}, nil
}

func (d *Dependencies) Close() {
	if err := d.Sessions.Teardown(); err != nil {
		d.Logger.Error("session store close error", "error", err)
	}
}

// openSessionStorage picks the durable key-value backend for the session and
// the health checks that go with it. The SQL connection is nil for redis and
// memory.
func openSessionStorage(ctx context.Context, cfg internal.SessionStoreConfig) (session.KeyValueStore, *sqlx.DB, []rest.Check, error) {
	switch cfg.Driver {
	case internal.SessionDriverSQLite, internal.SessionDriverPostgres:
		kv, conn, err := gormkv.Open(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		return kv, conn, []rest.Check{{Name: "session_store", Ping: conn.PingContext}}, nil
	case internal.SessionDriverRedis:
		kv, err := rediskv.Open(ctx, cfg.Source, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open session redis: %w", err)
		}
		var checks []rest.Check
		if p, ok := kv.(interface{ Ping(context.Context) error }); ok {
			checks = append(checks, rest.Check{Name: "session_store", Ping: p.Ping})
		}
		return kv, nil, checks, nil
	case internal.SessionDriverMemory:
		return session.NewMemoryStore(), nil, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported session driver %q", cfg.Driver)
	}
}
