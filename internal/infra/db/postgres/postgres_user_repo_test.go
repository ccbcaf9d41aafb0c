//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
)

func TestUserRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPostgresUserRepo(testPool)

	t.Run("save, find and entitlement window", func(t *testing.T) {
		cleanup(t)
		u := &model.User{ID: uuid.NewString(), Phone: "+256771234567", Name: "Okello", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := repo.Save(ctx, nil, u); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := repo.FindByPhone(ctx, nil, u.Phone)
		if err != nil {
			t.Fatalf("FindByPhone: %v", err)
		}
		if got.ExpiresAt != nil {
			t.Error("fresh user must not be subscribed")
		}

		expiry := time.Now().Add(30 * 24 * time.Hour)
		if err := repo.SetSubscription(ctx, nil, u.ID, "1 Month", expiry); err != nil {
			t.Fatalf("SetSubscription: %v", err)
		}
		got, _ = repo.FindByID(ctx, nil, u.ID)
		if got.PlanLabel != "1 Month" || got.ExpiresAt == nil || !got.Subscribed(time.Now()) {
			t.Errorf("user after subscription = %+v", got)
		}

		n, err := repo.CountSubscribed(ctx, nil, time.Now())
		if err != nil || n != 1 {
			t.Errorf("CountSubscribed = %d, %v", n, err)
		}
	})

	t.Run("missing rows map to not found", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.FindByPhone(ctx, nil, "+256700000000"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
		if err := repo.SetSubscription(ctx, nil, uuid.NewString(), "1 Day", time.Now()); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
