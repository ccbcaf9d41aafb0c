package adapter

import (
	"context"

	"streaming-payments/internal/domain/model"
)

// PaymentGateway is the hex port for the mobile-money aggregator. The client
// is stateless: each call performs exactly one outbound request, and retry
// policy lives with the caller (the status poller), never here.
type PaymentGateway interface {
	Name() string

	// Deposit requests a payment from the payer's phone. The returned request
	// carries the provider reference used for all status lookups.
	Deposit(ctx context.Context, phone string, amount int64, description string) (*model.PaymentRequest, error)

	// Withdraw sends an outbound payout to a phone.
	Withdraw(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error)

	// CheckStatus performs a single, non-retrying status lookup.
	CheckStatus(ctx context.Context, reference string) (*model.StatusCheck, error)
}
