package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	List(ctx context.Context) ([]*model.Plan, error)
	ListByAudience(ctx context.Context, audience model.PlanAudience) ([]*model.Plan, error)
	Create(ctx context.Context, label string, audience model.PlanAudience, price int64, days int) (*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (u *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListAll(ctx, nil)
}

func (u *planUC) ListByAudience(ctx context.Context, audience model.PlanAudience) ([]*model.Plan, error) {
	return u.plans.ListByAudience(ctx, nil, audience)
}

func (u *planUC) Create(ctx context.Context, label string, audience model.PlanAudience, price int64, days int) (*model.Plan, error) {
	if label == "" || price <= 0 || days <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	p := &model.Plan{
		ID:        uuid.NewString(),
		Label:     label,
		Audience:  audience,
		Price:     price,
		Days:      days,
		CreatedAt: time.Now(),
	}
	if err := u.plans.Save(ctx, nil, p); err != nil {
		return nil, err
	}
	return p, nil
}
