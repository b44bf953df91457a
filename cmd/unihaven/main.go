// Command unihaven runs the UniHaven accommodation API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/kaiyuenlam/UniHaven/internal/app"
	"github.com/kaiyuenlam/UniHaven/internal/app/auth"
	"github.com/kaiyuenlam/UniHaven/internal/app/httpapi"
	"github.com/kaiyuenlam/UniHaven/internal/app/metrics"
	"github.com/kaiyuenlam/UniHaven/internal/app/services/geocode"
	"github.com/kaiyuenlam/UniHaven/internal/app/storage/postgres"
	"github.com/kaiyuenlam/UniHaven/internal/config"
	"github.com/kaiyuenlam/UniHaven/internal/middleware"
	"github.com/kaiyuenlam/UniHaven/internal/platform/migrations"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "unihaven: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: "unihaven",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, db, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	application, err := app.New(stores, app.Options{
		Geocoder:      buildGeocoder(cfg, log),
		SweepSchedule: cfg.Reservations.SweepSchedule,
	}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	var issuer *auth.Issuer
	if cfg.Auth.JWTSecret != "" {
		issuer, err = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("configure auth: %w", err)
		}
	} else {
		log.Warn("JWT_SECRET not set; specialist authentication disabled")
	}

	apiHandler, err := httpapi.NewHandler(application, httpapi.Config{
		Issuer:         issuer,
		APITokens:      cfg.APITokenList(),
		RequestLogPath: cfg.HTTP.RequestLogPath,
	})
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", apiHandler)

	cors := middleware.NewCORSMiddleware(cfg.CORSOriginList())
	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, log)
	root := metrics.InstrumentHandler(cors.Handler(limiter.Handler(mux)))

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      root,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTP.Addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("service shutdown")
	}
	return nil
}

// buildStores opens Postgres when configured, applying migrations at
// startup. Without DATABASE_URL everything runs on the in-memory store.
func buildStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, *sqlx.DB, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set; using in-memory storage")
		return app.Stores{}, nil, nil
	}

	db, err := sqlx.Open("postgres", cfg.Database.URL)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migrations.Apply(ctx, db.DB); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
	}

	store := postgres.New(db)
	return app.Stores{
		Campuses:       store,
		Owners:         store,
		Accommodations: store,
		Members:        store,
		Specialists:    store,
		Reservations:   store,
		Ratings:        store,
		Notifications:  store,
		AuditLog:       store,
	}, db, nil
}

// buildGeocoder wires the address lookup client with its Redis-backed
// cache when Redis is configured.
func buildGeocoder(cfg *config.Config, log *logger.Logger) geocode.Lookup {
	lookup, err := geocode.NewHTTPLookup(nil, cfg.Geocode.Endpoint, log)
	if err != nil {
		log.WithError(err).Warn("address lookup disabled")
		return nil
	}

	var client *redis.Client
	if cfg.Redis.Addr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return geocode.NewCachedLookup(lookup, client, cfg.Geocode.CacheTTL, log)
}
