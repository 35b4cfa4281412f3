package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prudhvinik1/accountsvc/internal/config"
	"github.com/prudhvinik1/accountsvc/internal/database"
	"github.com/prudhvinik1/accountsvc/internal/handlers"
	"github.com/prudhvinik1/accountsvc/internal/logging"
	"github.com/prudhvinik1/accountsvc/internal/metrics"
	"github.com/prudhvinik1/accountsvc/internal/repositories"
	"github.com/prudhvinik1/accountsvc/internal/services"
	"github.com/prudhvinik1/accountsvc/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped gracefully")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openAccountStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	locker, closeLocker, err := openLoginLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	accounts := services.NewAccountService(repo, locker, hasher, logger)
	auth := services.NewAuthService(repo, hasher, tokens, logger)

	if _, err := services.SeedAdmin(ctx, repo, hasher, cfg.AdminPassword, time.Now(), logger); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handlers.NewRouter(handlers.NewHandler(accounts, auth, metrics.New(), logger), cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", server.Addr), zap.String("storage", cfg.Storage))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openAccountStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.AccountRepository, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory account store; data is lost on restart")
		return repositories.NewMemoryAccountRepository(), func() {}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repositories.NewPostgresAccountRepository(pool), pool.Close, nil
}

// openLoginLocker uses Redis when configured so locks hold across replicas.
func openLoginLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.LoginLocker, func(), error) {
	if cfg.RedisURL == "" {
		if cfg.Storage == config.StoragePostgres {
			logger.Warn("REDIS_URL not set; login locks are per process")
		}
		return repositories.NewLocalLoginLocker(), func() {}, nil
	}

	client, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewRedisLoginLocker(client, repositories.DefaultLockTTL), func() { client.Close() }, nil
}
