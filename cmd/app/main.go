package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"streaming-payments/internal/config"
	"streaming-payments/internal/domain/ports/adapter"
	payAdapters "streaming-payments/internal/infra/adapters/payment"
	pg "streaming-payments/internal/infra/db/postgres"
	httpapi "streaming-payments/internal/infra/http"
	"streaming-payments/internal/infra/logging"
	red "streaming-payments/internal/infra/redis"
	"streaming-payments/internal/infra/sched"
	"streaming-payments/internal/infra/security"
	"streaming-payments/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled, payment gateway is simulated")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	agentRepo := pg.NewPostgresAgentRepo(pool)
	linkRepo := pg.NewPostgresSharedLinkRepo(pool)
	ledgerRepo := pg.NewPostgresTransactionRepo(pool)
	planRepo := pg.NewPlanRepoCacheDecorator(pg.NewPostgresPlanRepo(pool), redisClient)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev {
		gateway = payAdapters.NewNoopPaymentGateway()
	} else {
		gateway, err = payAdapters.NewLivraGateway(cfg.Payment.Livra.BaseURL, cfg.Payment.Livra.APIKey, cfg.Payment.Livra.CountryPrefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("livra gateway init failed")
		}
	}

	// ---- Security ----
	tokens, err := security.NewWatchTokenService(cfg.Security.WatchTokenSecret)
	if err != nil {
		logger.Fatal().Err(err).Msg("watch token service init failed")
	}

	// ---- Use cases ----
	poller := usecase.NewStatusPoller(gateway, cfg.Payment.Livra.PollInterval, cfg.Payment.Livra.PollAttempts, logger)
	committer := usecase.NewEntitlementUseCase(userRepo, agentRepo, linkRepo, ledgerRepo, tm, tokens, logger)
	checkoutUC := usecase.NewCheckoutUseCase(gateway, poller, committer, planRepo, agentRepo, linkRepo, cfg.App.Name, logger)
	agentUC := usecase.NewAgentUseCase(agentRepo, linkRepo, ledgerRepo, gateway, tm, logger)
	planUC := usecase.NewPlanUseCase(planRepo)

	// ---- Expiry sweep ----
	worker := sched.NewExpiryWorker(cfg.Scheduler.ExpiryInterval, agentRepo, userRepo, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("expiry worker stopped")
		}
	}()

	// ---- HTTP ----
	srv := httpapi.NewServer(cfg, checkoutUC, agentUC, planUC, tokens, rateLimiter, locker, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
