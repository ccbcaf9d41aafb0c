package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/repository"
	"streaming-payments/internal/infra/metrics"
	red "streaming-payments/internal/infra/redis"
)

var _ repository.PlanRepository = (*planRepoCacheDecorator)(nil)

// planRepoCacheDecorator caches the plan catalog in Redis. The catalog is
// read on every checkout and changes rarely, so a 1-hour TTL is safe.
type planRepoCacheDecorator struct {
	inner repository.PlanRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewPlanRepoCacheDecorator(inner repository.PlanRepository, cache red.RedisClient) repository.PlanRepository {
	return &planRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   1 * time.Hour,
	}
}

func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	key := fmt.Sprintf("plan:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("plan", "hit")
		var plan model.Plan
		if json.Unmarshal([]byte(val), &plan) == nil {
			return &plan, nil
		}
	} else if err != redis.Nil {
		metrics.IncCacheRequest("plan", "error")
	}

	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(plan); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return plan, nil
}

// Writes invalidate both the per-plan key and the list keys.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.Plan) error {
	d.cache.Del(ctx, fmt.Sprintf("plan:%s", plan.ID))
	d.cache.Del(ctx, "plans:all", fmt.Sprintf("plans:audience:%s", plan.Audience))
	return d.inner.Save(ctx, tx, plan)
}

func (d *planRepoCacheDecorator) ListByAudience(ctx context.Context, tx repository.Tx, audience model.PlanAudience) ([]*model.Plan, error) {
	key := fmt.Sprintf("plans:audience:%s", audience)
	return d.cachedList(ctx, key, func() ([]*model.Plan, error) {
		return d.inner.ListByAudience(ctx, tx, audience)
	})
}

func (d *planRepoCacheDecorator) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	return d.cachedList(ctx, "plans:all", func() ([]*model.Plan, error) {
		return d.inner.ListAll(ctx, tx)
	})
}

func (d *planRepoCacheDecorator) cachedList(ctx context.Context, key string, load func() ([]*model.Plan, error)) ([]*model.Plan, error) {
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("plan_list", "hit")
		var plans []*model.Plan
		if json.Unmarshal([]byte(val), &plans) == nil {
			return plans, nil
		}
	}

	metrics.IncCacheRequest("plan_list", "miss")
	plans, err := load()
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		if bytes, err := json.Marshal(plans); err == nil {
			d.cache.Set(ctx, key, bytes, d.ttl)
		}
	}
	return plans, nil
}
