package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"streaming-payments/internal/domain/ports/repository"
	"streaming-payments/internal/infra/metrics"
)

// ExpiryWorker periodically flips agents whose plan window has lapsed to the
// expired status, so the login guard and renewal flow see a consistent state.
type ExpiryWorker struct {
	interval time.Duration
	agents   repository.AgentRepository
	users    repository.UserRepository
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, agents repository.AgentRepository, users repository.UserRepository, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		agents:   agents,
		users:    users,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			now := time.Now()
			n, err := w.agents.MarkExpired(ctx, nil, now)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry worker error")
				continue
			}
			if n > 0 {
				metrics.AddAgentsExpired(n)
				w.log.Info().Int("count", n).Msg("lapsed agents expired")
			}
			if live, err := w.users.CountSubscribed(ctx, nil, now); err != nil {
				w.log.Warn().Err(err).Msg("subscriber count failed")
			} else {
				metrics.SetSubscribedUsers(live)
			}
		}
	}
}
