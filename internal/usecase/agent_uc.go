package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/adapter"
	"streaming-payments/internal/domain/ports/repository"
	"streaming-payments/internal/infra/metrics"
)

// MinWithdrawAmount is the smallest payout the gateway will carry (UGX).
const MinWithdrawAmount = 1000

// Compile-time check
var _ AgentUseCase = (*agentUC)(nil)

// AgentUseCase covers the read-side agent guard plus the agent-facing
// operations that are not entitlement commits: withdrawals and shared links.
type AgentUseCase interface {
	// Authenticate gates agent login on the status machine: blocked rejects
	// with ErrAgentBlocked, expired (status or past window) with
	// ErrAgentExpired, active admits.
	Authenticate(ctx context.Context, code string) (*model.Agent, error)
	Withdraw(ctx context.Context, agentID, phone string, amount int64) error
	CreateSharedLink(ctx context.Context, agentID, contentType, contentID, contentTitle string, price int64) (*model.SharedLink, error)
	ListSharedLinks(ctx context.Context, agentID string) ([]*model.SharedLink, error)
	FindSharedLink(ctx context.Context, shareCode string) (*model.SharedLink, error)
}

type agentUC struct {
	agents  repository.AgentRepository
	links   repository.SharedLinkRepository
	ledger  repository.TransactionRepository
	gateway adapter.PaymentGateway
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewAgentUseCase(
	agents repository.AgentRepository,
	links repository.SharedLinkRepository,
	ledger repository.TransactionRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *agentUC {
	l := logger.With().Str("component", "AgentUC").Logger()
	return &agentUC{agents: agents, links: links, ledger: ledger, gateway: gateway, tm: tm, log: &l}
}

func (u *agentUC) Authenticate(ctx context.Context, code string) (*model.Agent, error) {
	agent, err := u.agents.FindByCode(ctx, nil, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	switch {
	case agent.Status == model.AgentStatusBlocked:
		return nil, domain.ErrAgentBlocked
	case agent.Lapsed(time.Now()):
		return nil, domain.ErrAgentExpired
	}
	return agent, nil
}

// Withdraw pays out part of the agent balance via the gateway, then debits
// the balance and appends the withdrawal ledger entry in one transaction.
func (u *agentUC) Withdraw(ctx context.Context, agentID, phone string, amount int64) error {
	if amount < MinWithdrawAmount {
		return domain.ErrInvalidArgument
	}
	agent, err := u.agents.FindByID(ctx, nil, agentID)
	if err != nil {
		return err
	}
	if amount > agent.Balance {
		return domain.ErrInsufficientBalance
	}

	if _, err := u.gateway.Withdraw(ctx, phone, amount, "Agent Withdrawal - "+agent.Code); err != nil {
		metrics.IncWithdrawal("rejected")
		return err
	}
	metrics.IncWithdrawal("sent")

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.agents.DebitBalance(ctx, tx, agentID, amount); err != nil {
			return err
		}
		return u.ledger.Append(ctx, tx, &model.TransactionRecord{
			ID:        ulid.Make().String(),
			UserRef:   agent.ID,
			Name:      agent.Name,
			Phone:     agent.Phone,
			Kind:      model.TransactionKindWithdrawal,
			Amount:    amount,
			Status:    model.TransactionStatusCompleted,
			Method:    "Mobile Money (Livra)",
			CreatedAt: time.Now(),
		})
	})
	if err != nil {
		// The payout already left; this is the severe bookkeeping case.
		u.log.Error().Err(err).Str("agent_id", agentID).Int64("amount", amount).Msg("withdrawal sent but balance debit failed")
		return &domain.CommitError{Kind: "withdrawal", Err: err}
	}
	metrics.IncLedgerEntry(string(model.TransactionStatusCompleted))
	u.log.Info().Str("agent_id", agentID).Int64("amount", amount).Msg("withdrawal completed")
	return nil
}

func (u *agentUC) CreateSharedLink(ctx context.Context, agentID, contentType, contentID, contentTitle string, price int64) (*model.SharedLink, error) {
	if price <= 0 || contentID == "" || contentTitle == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := u.agents.FindByID(ctx, nil, agentID); err != nil {
		return nil, err
	}
	link := &model.SharedLink{
		ID:           uuid.NewString(),
		AgentID:      agentID,
		ShareCode:    model.NewShareCode(),
		ContentType:  contentType,
		ContentID:    contentID,
		ContentTitle: contentTitle,
		Price:        price,
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := u.links.Save(ctx, nil, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (u *agentUC) ListSharedLinks(ctx context.Context, agentID string) ([]*model.SharedLink, error) {
	return u.links.ListByAgent(ctx, nil, agentID)
}

func (u *agentUC) FindSharedLink(ctx context.Context, shareCode string) (*model.SharedLink, error) {
	return u.links.FindByShareCode(ctx, nil, shareCode)
}
