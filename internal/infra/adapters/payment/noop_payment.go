package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
// Deposits succeed on the first status check.
type NoopPaymentGateway struct {
	mu      sync.Mutex
	seq     int64
	intents map[string]int64 // reference -> amount
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{intents: make(map[string]int64)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) next() string {
	g.seq++
	return fmt.Sprintf("noop-%d", g.seq)
}

func (g *NoopPaymentGateway) Deposit(ctx context.Context, phone string, amount int64, description string) (*model.PaymentRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := g.next()
	g.intents[ref] = amount
	return &model.PaymentRequest{
		Reference:   ref,
		PayerPhone:  phone,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

func (g *NoopPaymentGateway) Withdraw(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &model.WithdrawResult{Reference: g.next()}, nil
}

func (g *NoopPaymentGateway) CheckStatus(ctx context.Context, reference string) (*model.StatusCheck, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.intents[reference]
	if !ok {
		return nil, &domain.GatewayError{Op: "status", Message: "unknown reference"}
	}
	return &model.StatusCheck{Status: model.PaymentStatusSuccess, Amount: amount, Provider: "noop"}, nil
}
