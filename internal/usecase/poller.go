package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/adapter"
	"streaming-payments/internal/infra/metrics"
)

const (
	defaultPollInterval = 6 * time.Second
	defaultPollAttempts = 40 // ~240s wall-clock budget
)

// StatusPoller converts the gateway's single-shot status check into a
// bounded, cancellable wait for a terminal outcome. Each Poll invocation owns
// its own timer and attempt counter; nothing is shared between flows.
type StatusPoller struct {
	gateway  adapter.PaymentGateway
	interval time.Duration
	attempts int
	log      *zerolog.Logger
}

func NewStatusPoller(gateway adapter.PaymentGateway, interval time.Duration, attempts int, logger *zerolog.Logger) *StatusPoller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if attempts <= 0 {
		attempts = defaultPollAttempts
	}
	l := logger.With().Str("component", "StatusPoller").Logger()
	return &StatusPoller{gateway: gateway, interval: interval, attempts: attempts, log: &l}
}

// Poll checks the payment status every interval until a terminal state or the
// attempt budget runs out. onUpdate is invoked with every conclusive status,
// terminal or not, so the caller can surface progress.
//
// Resolution rules:
//   - first success -> the StatusCheck is returned;
//   - first failed/expired -> PollFailedError, immediately;
//   - budget exhausted while non-terminal -> PollTimeoutError;
//   - transient CheckStatus errors burn an attempt but do not terminate;
//   - ctx cancellation stops the timer and returns ctx.Err() — the caller
//     must not commit anything after that.
func (p *StatusPoller) Poll(ctx context.Context, reference string, onUpdate func(model.PaymentStatus)) (*model.StatusCheck, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.attempts; attempt++ {
		select {
		case <-ctx.Done():
			p.log.Debug().Str("reference", reference).Int("attempt", attempt).Msg("poll cancelled")
			return nil, ctx.Err()
		case <-ticker.C:
		}

		check, err := p.gateway.CheckStatus(ctx, reference)
		if err != nil {
			// Inconclusive attempt; keep polling until the budget runs out.
			metrics.IncPollAttempt("error")
			p.log.Warn().Err(err).Str("reference", reference).Int("attempt", attempt).Msg("status check failed")
			continue
		}

		metrics.IncPollAttempt(string(check.Status))
		p.log.Debug().Str("reference", reference).Int("attempt", attempt).Str("status", string(check.Status)).Msg("poll")
		if onUpdate != nil {
			onUpdate(check.Status)
		}

		switch check.Status {
		case model.PaymentStatusSuccess:
			return check, nil
		case model.PaymentStatusFailed, model.PaymentStatusExpired:
			return nil, &domain.PollFailedError{Reference: reference, Message: check.Message}
		}
	}

	return nil, &domain.PollTimeoutError{Reference: reference, Attempts: p.attempts}
}
