package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sirpyerre/jwtauth-api/internal/api"
	"github.com/sirpyerre/jwtauth-api/internal/api/handler"
	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
	"github.com/sirpyerre/jwtauth-api/internal/core/ports"
	"github.com/sirpyerre/jwtauth-api/internal/core/service"
	"github.com/sirpyerre/jwtauth-api/internal/infrastructure/config"
	"github.com/sirpyerre/jwtauth-api/internal/infrastructure/db/memory"
	mongodb "github.com/sirpyerre/jwtauth-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/jwtauth-api/internal/infrastructure/db/redis"
	"github.com/sirpyerre/jwtauth-api/internal/infrastructure/seed"
	"github.com/sirpyerre/jwtauth-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{Pretty: true, Output: os.Stderr})
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "jwtauth-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, service.WithTokenLogger(log))
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	users, err := seed.LoadUsers(cfg.Directory.UsersFile, hasher)
	if err != nil {
		return err
	}

	var (
		directory ports.UserDirectory
		checks    = map[string]handler.Check{}
	)

	switch cfg.Directory.Backend {
	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		mongoDir := mongodb.NewUserDirectory(db)
		if err := mongoDir.EnsureIndexes(ctx); err != nil {
			return err
		}
		if err := mongoDir.Seed(ctx, users); err != nil {
			return err
		}
		directory = mongoDir
		checks["mongodb"] = mongodb.HealthCheck(db)
	default:
		directory = memory.NewUserDirectory(users)
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		cached := redisdb.NewCachedDirectory(directory, rdb, cfg.Redis.CacheTTL, log)
		invalidateSeeded(ctx, cached, users, log)
		directory = cached
		checks["redis"] = redisdb.HealthCheck(rdb)
	}

	authService, err := service.NewAuthService(directory, hasher, tokens, log)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Log:        log,
		Auth:       authService,
		Tokens:     tokens,
		Directory:  directory,
		Checks:     checks,
		LoginRate:  rate.Limit(cfg.Auth.LoginRateLimit),
		LoginBurst: cfg.Auth.LoginRateBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Directory.Backend).Int("users", len(users)).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// invalidateSeeded drops cached entries for seeded users so role changes in
// the seed file take effect on restart.
func invalidateSeeded(ctx context.Context, cache *redisdb.CachedDirectory, users []*domain.User, log zerolog.Logger) {
	for _, u := range users {
		if err := cache.Invalidate(ctx, u.ID); err != nil {
			log.Warn().Err(err).Int("user_id", u.ID).Msg("invalidate cached user")
		}
	}
}
