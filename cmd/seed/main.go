package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"streaming-payments/internal/config"
	"streaming-payments/internal/domain/model"
	pg "streaming-payments/internal/infra/db/postgres"
	"streaming-payments/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPostgresPlanRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo)

	// If the catalog already exists, do nothing.
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - [%s] %s (days=%d, price=%d UGX)\n", p.Audience, p.Label, p.Days, p.Price)
		}
		return
	}

	seed := []struct {
		Label    string
		Audience model.PlanAudience
		Price    int64
		Days     int
	}{
		{"1 Day", model.PlanAudienceUser, 5_000, 1},
		{"1 Week", model.PlanAudienceUser, 10_000, 7},
		{"1 Month", model.PlanAudienceUser, 25_000, 30},
		{"1 Week", model.PlanAudienceAgent, 25_000, 7},
		{"1 Month", model.PlanAudienceAgent, 50_000, 30},
		{"Weekly", model.PlanAudienceAgentRenewal, 20_000, 7},
		{"Monthly", model.PlanAudienceAgentRenewal, 30_000, 30},
	}

	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Label, s.Audience, s.Price, s.Days)
		if err != nil {
			log.Fatalf("create plan %q/%s: %v", s.Label, s.Audience, err)
		}
		fmt.Printf("seeded: [%s] %s (id=%s, days=%d, price=%d UGX)\n", p.Audience, p.Label, p.ID, p.Days, p.Price)
	}

	fmt.Println("Seeding complete.")
}
