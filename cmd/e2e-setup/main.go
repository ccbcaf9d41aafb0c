package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"streaming-payments/internal/config"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/infra/db/postgres"
	"streaming-payments/internal/infra/redis"
)

// This script sets up a clean, predictable database state for manual
// end-to-end testing of the checkout flows.
func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	pool, err := postgres.NewPgxPool(ctx, cfg.Database.URL, 5)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer redisClient.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	// 1. Clean the Redis cache so no stale plan catalog or lock survives.
	log.Println("[1/4] Wiping Redis cache...")
	if err := redisClient.FlushDB(ctx); err != nil {
		log.Fatalf("failed to flush redis: %v", err)
	}

	// 2. Clean the database completely.
	log.Println("[2/4] Wiping all existing database data...")
	_, err = pool.Exec(ctx, `
		TRUNCATE users, agents, plans, shared_links, transactions
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	// 3. Seed the plan catalog.
	log.Println("[3/4] Seeding plan catalog...")
	seedPlans(ctx, pool)

	// 4. Seed one agent in each status plus a shared link, so login and
	// pay-per-view paths can be walked without a prior agent checkout.
	log.Println("[4/4] Seeding test agents and a shared link...")
	seedAgents(ctx, pool)

	log.Println("--- E2E Environment Setup Complete ---")
}

func seedPlans(ctx context.Context, pool *pgxpool.Pool) {
	planRepo := postgres.NewPostgresPlanRepo(pool)
	plans := []*model.Plan{
		{ID: uuid.NewString(), Label: "1 Day", Audience: model.PlanAudienceUser, Price: 5_000, Days: 1, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Label: "1 Week", Audience: model.PlanAudienceUser, Price: 10_000, Days: 7, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Label: "1 Month", Audience: model.PlanAudienceUser, Price: 25_000, Days: 30, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Label: "1 Week", Audience: model.PlanAudienceAgent, Price: 25_000, Days: 7, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Label: "1 Month", Audience: model.PlanAudienceAgent, Price: 50_000, Days: 30, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Label: "Weekly", Audience: model.PlanAudienceAgentRenewal, Price: 20_000, Days: 7, CreatedAt: time.Now()},
		{ID: uuid.NewString(), Label: "Monthly", Audience: model.PlanAudienceAgentRenewal, Price: 30_000, Days: 30, CreatedAt: time.Now()},
	}
	for _, p := range plans {
		if err := planRepo.Save(ctx, nil, p); err != nil {
			log.Fatalf("failed to save plan %q/%s: %v", p.Label, p.Audience, err)
		}
	}
}

func seedAgents(ctx context.Context, pool *pgxpool.Pool) {
	agentRepo := postgres.NewPostgresAgentRepo(pool)
	linkRepo := postgres.NewPostgresSharedLinkRepo(pool)
	now := time.Now()

	active := &model.Agent{
		ID:         uuid.NewString(),
		Code:       "AG-TEST-001",
		Name:       "Active Agent",
		Phone:      "+256771000001",
		Balance:    8_000,
		Plan:       "1 Month",
		PlanExpiry: now.Add(30 * 24 * time.Hour),
		Status:     model.AgentStatusActive,
		CreatedAt:  now,
	}
	blocked := &model.Agent{
		ID:         uuid.NewString(),
		Code:       "AG-TEST-002",
		Name:       "Blocked Agent",
		Phone:      "+256771000002",
		Plan:       "1 Month",
		PlanExpiry: now.Add(30 * 24 * time.Hour),
		Status:     model.AgentStatusBlocked,
		CreatedAt:  now,
	}
	expired := &model.Agent{
		ID:         uuid.NewString(),
		Code:       "AG-TEST-003",
		Name:       "Expired Agent",
		Phone:      "+256771000003",
		Plan:       "1 Week",
		PlanExpiry: now.Add(-24 * time.Hour),
		Status:     model.AgentStatusExpired,
		CreatedAt:  now,
	}
	for _, a := range []*model.Agent{active, blocked, expired} {
		if err := agentRepo.Save(ctx, nil, a); err != nil {
			log.Fatalf("failed to save agent %s: %v", a.Code, err)
		}
	}

	link := &model.SharedLink{
		ID:           uuid.NewString(),
		AgentID:      active.ID,
		ShareCode:    "TESTLNK1",
		ContentType:  "movie",
		ContentID:    "movie-001",
		ContentTitle: "The River Between",
		Price:        2_000,
		Active:       true,
		CreatedAt:    now,
	}
	if err := linkRepo.Save(ctx, nil, link); err != nil {
		log.Fatalf("failed to save shared link: %v", err)
	}

	log.Printf("  agent login codes: %s (active), %s (blocked), %s (expired)", active.Code, blocked.Code, expired.Code)
	log.Printf("  shared link code: %s (price=%d UGX)", link.ShareCode, link.Price)
}
