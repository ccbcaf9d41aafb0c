package main

import (
	"context"
	"log"
	"time"

	"streaming-payments/internal/config"
	"streaming-payments/internal/domain/model"
	payAdapters "streaming-payments/internal/infra/adapters/payment"
	pg "streaming-payments/internal/infra/db/postgres"
	"streaming-payments/internal/infra/logging"
	"streaming-payments/internal/infra/security"
	"streaming-payments/internal/usecase"
)

// Walks one subscription checkout end to end against a real database with
// the simulated gateway, then prints the resulting ledger. Useful for
// verifying the wiring without a Livra account.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := logging.New(cfg.Log, true)

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	agentRepo := pg.NewPostgresAgentRepo(pool)
	linkRepo := pg.NewPostgresSharedLinkRepo(pool)
	ledgerRepo := pg.NewPostgresTransactionRepo(pool)
	planRepo := pg.NewPostgresPlanRepo(pool)

	tokens, err := security.NewWatchTokenService(cfg.Security.WatchTokenSecret)
	if err != nil {
		log.Fatalf("watch tokens: %v", err)
	}

	gateway := payAdapters.NewNoopPaymentGateway()
	poller := usecase.NewStatusPoller(gateway, 100*time.Millisecond, 5, logger)
	committer := usecase.NewEntitlementUseCase(userRepo, agentRepo, linkRepo, ledgerRepo, tm, tokens, logger)
	checkout := usecase.NewCheckoutUseCase(gateway, poller, committer, planRepo, agentRepo, linkRepo, cfg.App.Name, logger)

	plans, err := planRepo.ListByAudience(ctx, nil, model.PlanAudienceUser)
	if err != nil || len(plans) == 0 {
		log.Fatalf("no user plans seeded, run cmd/seed first (err=%v)", err)
	}
	plan := plans[0]
	log.Printf("using plan %q (%d UGX, %d days)", plan.Label, plan.Price, plan.Days)

	phone := "0771234567"
	res, err := checkout.Run(ctx, usecase.CheckoutRequest{
		Kind:   usecase.KindSubscription,
		Phone:  phone,
		Name:   "Demo User",
		PlanID: plan.ID,
	}, func(st model.PaymentStatus) {
		log.Printf("  poll update: %s", st)
	})
	if err != nil {
		log.Fatalf("checkout failed: %v", err)
	}
	log.Printf("checkout complete: reference=%s amount=%d plan=%s expires=%s",
		res.Reference, res.Amount, res.User.PlanLabel, res.User.ExpiresAt.Format(time.RFC3339))

	entries, err := ledgerRepo.ListByPhone(ctx, nil, res.User.Phone, 10)
	if err != nil {
		log.Fatalf("ledger: %v", err)
	}
	log.Printf("ledger for %s:", res.User.Phone)
	for _, e := range entries {
		log.Printf("  %s %s %d UGX (%s) ref=%s", e.ID, e.Kind, e.Amount, e.Status, e.Reference)
	}
}
