// Package app wires the adapters and services into a runnable HTTP handler.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/questionpoll/internal/adapters/cache/redis"
	handler "github.com/vncsmyrnk/questionpoll/internal/adapters/handler/http"
	"github.com/vncsmyrnk/questionpoll/internal/adapters/oauth/google"
	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/questionpoll/internal/adapters/repository/postgres/migrations"
	"github.com/vncsmyrnk/questionpoll/internal/config"
	"github.com/vncsmyrnk/questionpoll/internal/core/ports"
	"github.com/vncsmyrnk/questionpoll/internal/core/services"
)

// App holds the long-lived dependencies of the server and the jobs.
type App struct {
	Store   ports.Store
	Cache   ports.StatisticsCache
	Summary ports.SummaryService
	Handler http.Handler

	db     *sql.DB
	rdb    *goredis.Client
	logger *zap.Logger
}

type Options struct {
	// Migrate applies pending migrations before serving.
	Migrate bool
	// Verifier overrides the Google ID token verifier.
	Verifier ports.TokenVerifier
	// Job opens storage and cache only. Handler stays nil and no JWT
	// secret is needed.
	Job bool
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if !opts.Job && cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	a := &App{logger: logger}

	store, err := a.openStore(ctx, cfg.Database, opts.Migrate)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.rdb = rdb
		a.Cache = redis.NewStatisticsCache(rdb, cfg.Redis.StatisticsTTL)
	}

	a.Summary = services.NewSummaryService(a.Store, a.Cache, logger, 0)
	if !opts.Job {
		a.Handler = a.newHandler(cfg, opts.Verifier)
	}
	return a, nil
}

func (a *App) newHandler(cfg *config.Config, verifier ports.TokenVerifier) http.Handler {
	logger := a.logger
	if verifier == nil && cfg.Auth.GoogleClientID != "" {
		verifier = google.NewVerifier()
	}

	authService := services.NewAuthService(a.Store.Users(), a.Store.RefreshTokens(), verifier, services.AuthConfig{
		JWTSecret:       []byte(cfg.Auth.JWTSecret),
		GoogleClientID:  cfg.Auth.GoogleClientID,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	})
	cookies := handler.CookieConfig{
		Domain:          cfg.Auth.CookieDomain,
		SameSite:        cfg.Auth.CookieSameSite,
		Secure:          cfg.Auth.CookieSecure,
		AccessTokenTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
	}

	return handler.NewHandler(handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, cfg.Auth.RedirectURL, cookies, logger),
		User:     handler.NewUserHandler(services.NewUserService(a.Store.Users()), logger),
		Question: handler.NewQuestionHandler(services.NewQuestionService(a.Store, a.Cache, logger), logger),
		Choice:   handler.NewChoiceHandler(services.NewChoiceService(a.Store, a.Cache, logger), logger),
		Vote:     handler.NewVoteHandler(services.NewVoteService(a.Store, a.Cache, logger), logger),
	}, authService, cfg.Server.CORSAllowedOrigins, logger)
}

func (a *App) openStore(ctx context.Context, cfg config.DatabaseConfig, migrate bool) (ports.Store, error) {
	if cfg.Driver == config.DriverMemory {
		a.logger.Warn("using in-memory storage; data is lost on exit")
		return memory.NewStore(), nil
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.db = db
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if migrate {
		applied, err := migrations.Up(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.logger.Info("migrations applied", zap.Strings("applied", applied))
	}
	return postgres.NewStore(db), nil
}

func (a *App) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("redis close", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("database close", zap.Error(err))
		}
	}
}
