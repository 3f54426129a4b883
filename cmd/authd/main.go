// authd is the standalone authentication service of the Man of Wisdom
// suite. It serves the passwordless login API, the health endpoint, and
// owns the shared session cookie.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/manofwisdom/auth/modules/authapi"
	"github.com/manofwisdom/auth/pkg/audit"
	"github.com/manofwisdom/auth/pkg/auth"
	"github.com/manofwisdom/auth/pkg/config"
	"github.com/manofwisdom/auth/pkg/email"
	"github.com/manofwisdom/auth/pkg/environment"
	"github.com/manofwisdom/auth/pkg/httpserver"
	"github.com/manofwisdom/auth/pkg/logger"
	"github.com/manofwisdom/auth/pkg/pg"
	"github.com/manofwisdom/auth/pkg/ratelimiter"
	"github.com/manofwisdom/auth/pkg/redis"
)

type appConfig struct {
	Env            environment.Environment `env:"ENV" envDefault:"development"`
	HTTPAddr       string                  `env:"HTTP_ADDR" envDefault:":8080"`
	AllowedOrigins []string                `env:"ALLOWED_ORIGINS" envSeparator:","`

	Auth  auth.Config
	Pg    pg.Config
	Redis redis.Config
	Email email.Config
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)
	if err := cfg.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}

	log := logger.New(logger.WithEnvironment(cfg.Env, "authd"))
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.Pg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Pg, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	storage := auth.NewPostgresStorage(pool)

	// Rate-limit counters are per-process unless a shared Redis is
	// configured explicitly.
	var limitStore ratelimiter.Store = ratelimiter.NewMemoryStore()
	if cfg.Redis.ConnectionURL != "" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		limitStore = ratelimiter.NewRedisStore(client, "authd:ratelimit")
		log.Info("rate limiting through shared redis store")
	}

	loginLimiter, err := ratelimiter.New(limitStore, ratelimiter.LoginConfig())
	if err != nil {
		return fmt.Errorf("create login limiter: %w", err)
	}
	verifyLimiter, err := ratelimiter.New(limitStore, ratelimiter.VerifyConfig())
	if err != nil {
		return fmt.Errorf("create verify limiter: %w", err)
	}

	var sender email.Sender
	if cfg.Env.IsProduction() {
		sender, err = email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return fmt.Errorf("create postmark client: %w", err)
		}
	} else {
		sender = email.NewDevSender(log)
	}

	auditor := audit.NewLogger(audit.NewSlogStorage(log))

	sessions := auth.NewSessionManager(storage, cfg.Auth,
		auth.WithSessionLogger(log),
	)
	links := auth.NewMagicLinkService(storage, sessions, sender, cfg.Auth,
		auth.WithMagicLinkLogger(log),
	)
	api := authapi.NewService(links, sessions, loginLimiter, verifyLimiter,
		authapi.WithAudit(auditor),
		authapi.WithLogger(log),
	)

	gate := auth.NewMiddleware(sessions, auth.MiddlewareConfig{
		PublicPaths:    []string{"/api/auth/", "/health", "/login", "/verify"},
		AllowedOrigins: cfg.AllowedOrigins,
	},
		auth.WithMiddlewareAudit(auditor),
		auth.WithMiddlewareLogger(log),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(gate.Handler)
	r.Get("/health", httpserver.HealthCheckHandler(log, pg.Healthcheck(pool)))
	r.Mount("/api/auth", api.Router())

	srv := httpserver.New(
		httpserver.WithAddr(cfg.HTTPAddr),
		httpserver.WithLogger(log),
	)

	return srv.Run(ctx, r)
}
