// Package app wires the tie-resolution service: configuration, database,
// event bus, modules, and the HTTP control surface.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"golang.org/x/time/rate"

	"github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff"
	shootoffhandlers "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/handlers"
	"github.com/georgewallace/claytargettracker-sub002/app/modules/standings"
	"github.com/georgewallace/claytargettracker-sub002/config"
	"github.com/georgewallace/claytargettracker-sub002/internal/eventbus"
	"github.com/georgewallace/claytargettracker-sub002/internal/observability"
	"github.com/georgewallace/claytargettracker-sub002/pkg/jwt"
)

// App holds the wired application.
type App struct {
	Cfg            *config.Config
	Observability  *observability.Observability
	DB             *bun.DB
	EventBus       eventbus.EventBus
	Tokens         jwt.Service
	StandingsMod   *standings.Module
	ShootOffMod    *shootoff.Module
	Handlers       *shootoffhandlers.Handlers
	limiter        *shootoffhandlers.IPRateLimiter
}

// NewApp initializes the application from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	environment := os.Getenv("APP_ENV")
	if environment == "" {
		environment = "development"
	}

	obs := observability.New("tie-resolution", environment)

	db, err := newBunDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := eventbus.NewNoop()
	if cfg.NATS.URL != "" {
		bus, err = eventbus.NewNATSEventBus(cfg.NATS.URL, watermill.NewSlogLogger(obs.Logger))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event bus: %w", err)
		}
	}

	tokens := jwt.NewService(cfg.JWT.Secret, cfg.JWT.DefaultTTL)

	standingsMod := standings.NewModule(obs, db)
	shootOffMod := shootoff.NewModule(obs, db, bus, standingsMod.Repository, cfg.Tournament)

	handlers := shootoffhandlers.NewHandlers(shootOffMod.Service, standingsMod.Service, obs.Logger)

	return &App{
		Cfg:           cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Tokens:        tokens,
		StandingsMod:  standingsMod,
		ShootOffMod:   shootOffMod,
		Handlers:      handlers,
		limiter:       shootoffhandlers.NewIPRateLimiter(rate.Limit(10), 20),
	}, nil
}

func newBunDB(ctx context.Context, dsn string) (*bun.DB, error) {
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(pgdb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Router builds the HTTP control surface.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.Observability.Registry, promhttp.HandlerOpts{}))

	r.Mount("/api/v1", a.Handlers.Routes(a.Tokens, a.limiter))
	return r
}

// Close releases the application's external resources.
func (a *App) Close() error {
	var firstErr error
	if err := a.EventBus.Close(); err != nil {
		firstErr = err
	}
	if err := a.DB.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
