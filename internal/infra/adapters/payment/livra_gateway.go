package payment

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*LivraGateway)(nil)

// LivraGateway implements adapter.PaymentGateway against the Livra
// mobile-money aggregator REST API. It keeps no state between calls.
type LivraGateway struct {
	client        *resty.Client
	countryPrefix string // e.g. "+256"
}

func NewLivraGateway(baseURL, apiKey, countryPrefix string) (*LivraGateway, error) {
	if baseURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	if countryPrefix == "" {
		countryPrefix = "+256"
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &LivraGateway{client: client, countryPrefix: countryPrefix}, nil
}

func (g *LivraGateway) Name() string { return "livra" }

// NormalizePhone rewrites a payer phone number to the canonical
// international form. Pure function: no network, no state.
//
//	"0771234567"    -> "+256771234567"
//	"256771234567"  -> "+256771234567"
//	"+256771234567" -> "+256771234567"
//
// Ambiguous input is assumed domestic and gets the prefix prepended.
func (g *LivraGateway) NormalizePhone(input string) string {
	cleaned := strings.ReplaceAll(input, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	trunk := strings.TrimPrefix(g.countryPrefix, "+")
	switch {
	case strings.HasPrefix(cleaned, g.countryPrefix):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return g.countryPrefix + cleaned[1:]
	case strings.HasPrefix(cleaned, trunk):
		return "+" + cleaned
	default:
		return g.countryPrefix + cleaned
	}
}

type livraMoneyRequest struct {
	MSISDN      string `json:"msisdn"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// The provider uses the same body shape for 2xx and 4xx answers, so each
// request registers the struct as both result and error target.
type livraMoneyResponse struct {
	Success           bool   `json:"success"`
	InternalReference string `json:"internal_reference"`
	Message           string `json:"message"`
}

type livraStatusResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	RequestStatus string `json:"request_status"`
	Message       string `json:"message"`
	Amount        int64  `json:"amount"`
	Provider      string `json:"provider"`
}

// Deposit sends a payment prompt to the payer's phone. An answer without an
// internal_reference is a failure, carrying the provider message when present.
func (g *LivraGateway) Deposit(ctx context.Context, phone string, amount int64, description string) (*model.PaymentRequest, error) {
	msisdn := g.NormalizePhone(phone)
	var out livraMoneyResponse
	_, err := g.client.R().
		SetContext(ctx).
		SetBody(livraMoneyRequest{MSISDN: msisdn, Amount: amount, Description: description}).
		SetResult(&out).
		SetError(&out).
		Post("/deposit")
	if err != nil {
		return nil, &domain.GatewayError{Op: "deposit", Message: err.Error()}
	}
	if out.InternalReference == "" {
		return nil, &domain.GatewayError{Op: "deposit", Message: out.Message}
	}
	return &model.PaymentRequest{
		Reference:   out.InternalReference,
		PayerPhone:  msisdn,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// Withdraw sends an outbound payout. Same failure rule as Deposit.
func (g *LivraGateway) Withdraw(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error) {
	msisdn := g.NormalizePhone(phone)
	var out livraMoneyResponse
	_, err := g.client.R().
		SetContext(ctx).
		SetBody(livraMoneyRequest{MSISDN: msisdn, Amount: amount, Description: description}).
		SetResult(&out).
		SetError(&out).
		Post("/withdraw")
	if err != nil {
		return nil, &domain.GatewayError{Op: "withdraw", Message: err.Error()}
	}
	if !out.Success && out.Message != "" {
		return nil, &domain.GatewayError{Op: "withdraw", Message: out.Message}
	}
	if out.InternalReference == "" {
		return nil, &domain.GatewayError{Op: "withdraw", Message: out.Message}
	}
	return &model.WithdrawResult{Reference: out.InternalReference, Message: out.Message}, nil
}

// CheckStatus performs one status lookup. request_status is authoritative
// over status when both are present; the absence of both is rejected at this
// boundary rather than defaulted.
func (g *LivraGateway) CheckStatus(ctx context.Context, reference string) (*model.StatusCheck, error) {
	var out livraStatusResponse
	_, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("internal_reference", reference).
		SetResult(&out).
		SetError(&out).
		Get("/request-status")
	if err != nil {
		return nil, &domain.GatewayError{Op: "status", Message: err.Error()}
	}
	raw := out.RequestStatus
	if raw == "" {
		raw = out.Status
	}
	status, ok := parseStatus(raw)
	if !ok {
		return nil, &domain.GatewayError{Op: "status", Message: "provider response missing status"}
	}
	return &model.StatusCheck{
		Status:   status,
		Message:  out.Message,
		Amount:   out.Amount,
		Provider: out.Provider,
	}, nil
}

func parseStatus(raw string) (model.PaymentStatus, bool) {
	switch model.PaymentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case model.PaymentStatusPending:
		return model.PaymentStatusPending, true
	case model.PaymentStatusProcessing:
		return model.PaymentStatusProcessing, true
	case model.PaymentStatusSuccess:
		return model.PaymentStatusSuccess, true
	case model.PaymentStatusFailed:
		return model.PaymentStatusFailed, true
	case model.PaymentStatusExpired:
		return model.PaymentStatusExpired, true
	default:
		return "", false
	}
}
