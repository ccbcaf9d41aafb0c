package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/repository"
	"streaming-payments/internal/infra/metrics"
)

// WatchTokenMinter issues signed pay-per-view credentials. Implemented by
// security.WatchTokenService.
type WatchTokenMinter interface {
	Mint(linkID, shareCode string, ttl time.Duration) (token string, expiresAt time.Time, err error)
}

// Compile-time check
var _ EntitlementCommitter = (*entitlementUC)(nil)

// EntitlementCommitter is the only code path permitted to turn a confirmed
// payment into a durable entitlement, and to record the ledger entry for any
// outcome. Each Commit* writes the entitlement and its ledger entry in one
// database transaction, so "money collected" and "access granted" cannot
// diverge on a partial failure.
type EntitlementCommitter interface {
	CommitSubscription(ctx context.Context, phone, name string, plan *model.Plan) (*model.User, error)
	CommitAgentCreation(ctx context.Context, phone, name string, plan *model.Plan) (*model.Agent, error)
	CommitAgentRenewal(ctx context.Context, agentID string, plan *model.Plan) (*model.Agent, error)
	CommitPayPerView(ctx context.Context, link *model.SharedLink, payerPhone string) (*model.WatchGrant, error)
	// RecordFailure appends a failed ledger entry. It never returns an error:
	// a failure while writing the failure record is logged and swallowed so
	// the original payment error stays the one the payer sees.
	RecordFailure(ctx context.Context, kind model.TransactionKind, phone, name string, amount int64, reference string)
}

type entitlementUC struct {
	users  repository.UserRepository
	agents repository.AgentRepository
	links  repository.SharedLinkRepository
	ledger repository.TransactionRepository
	tm     repository.TransactionManager
	tokens WatchTokenMinter
	method string // ledger channel label
	log    *zerolog.Logger
}

func NewEntitlementUseCase(
	users repository.UserRepository,
	agents repository.AgentRepository,
	links repository.SharedLinkRepository,
	ledger repository.TransactionRepository,
	tm repository.TransactionManager,
	tokens WatchTokenMinter,
	logger *zerolog.Logger,
) *entitlementUC {
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{
		users:  users,
		agents: agents,
		links:  links,
		ledger: ledger,
		tm:     tm,
		tokens: tokens,
		method: "Mobile Money (Livra)",
		log:    &l,
	}
}

func (u *entitlementUC) newRecord(userRef, name, phone string, kind model.TransactionKind, amount int64, status model.TransactionStatus, reference string) *model.TransactionRecord {
	return &model.TransactionRecord{
		ID:        ulid.Make().String(),
		UserRef:   userRef,
		Name:      name,
		Phone:     phone,
		Kind:      kind,
		Amount:    amount,
		Status:    status,
		Method:    u.method,
		Reference: reference,
		CreatedAt: time.Now(),
	}
}

// CommitSubscription extends (or creates) the user's viewing window to
// now + plan.Days and appends the completed ledger entry.
func (u *entitlementUC) CommitSubscription(ctx context.Context, phone, name string, plan *model.Plan) (*model.User, error) {
	now := time.Now()
	expiry := plan.Expiry(now)

	var user *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.users.FindByPhone(ctx, tx, phone)
		if err != nil && err != domain.ErrNotFound {
			return err
		}
		if existing == nil {
			existing = &model.User{
				ID:        uuid.NewString(),
				Phone:     phone,
				Name:      name,
				CreatedAt: now,
			}
			if err := u.users.Save(ctx, tx, existing); err != nil {
				return err
			}
		}
		if err := u.users.SetSubscription(ctx, tx, existing.ID, plan.Label, expiry); err != nil {
			return err
		}
		existing.PlanLabel = plan.Label
		existing.ExpiresAt = &expiry
		user = existing

		return u.ledger.Append(ctx, tx, u.newRecord(existing.ID, name, phone, model.TransactionKindSubscription, plan.Price, model.TransactionStatusCompleted, ""))
	})
	if err != nil {
		return nil, &domain.CommitError{Kind: "subscription", Err: err}
	}

	metrics.IncEntitlement("subscription")
	metrics.AddRevenue(string(model.TransactionKindSubscription), plan.Price)
	metrics.IncLedgerEntry(string(model.TransactionStatusCompleted))
	u.log.Info().Str("user_id", user.ID).Str("plan", plan.Label).Time("expires_at", expiry).Msg("subscription granted")
	return user, nil
}

// CommitAgentCreation persists a fresh agent identity with zero balance. The
// generated code is the durable login credential.
func (u *entitlementUC) CommitAgentCreation(ctx context.Context, phone, name string, plan *model.Plan) (*model.Agent, error) {
	now := time.Now()
	agent := &model.Agent{
		ID:         uuid.NewString(),
		Code:       model.NewAgentCode(),
		Name:       name,
		Phone:      phone,
		Balance:    0,
		Plan:       plan.Label,
		PlanExpiry: plan.Expiry(now),
		Status:     model.AgentStatusActive,
		CreatedAt:  now,
	}

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.agents.Save(ctx, tx, agent); err != nil {
			return err
		}
		return u.ledger.Append(ctx, tx, u.newRecord(agent.ID, name, phone, model.TransactionKindSubscription, plan.Price, model.TransactionStatusCompleted, ""))
	})
	if err != nil {
		return nil, &domain.CommitError{Kind: "agent-creation", Err: err}
	}

	metrics.IncEntitlement("agent-creation")
	metrics.AddRevenue(string(model.TransactionKindSubscription), plan.Price)
	metrics.IncLedgerEntry(string(model.TransactionStatusCompleted))
	u.log.Info().Str("agent_id", agent.ID).Str("code", agent.Code).Msg("agent created")
	return agent, nil
}

// CommitAgentRenewal resets the plan window from now — renewal never stacks
// remaining time — and reactivates the agent.
func (u *entitlementUC) CommitAgentRenewal(ctx context.Context, agentID string, plan *model.Plan) (*model.Agent, error) {
	now := time.Now()
	expiry := plan.Expiry(now)

	var agent *model.Agent
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		a, err := u.agents.FindByID(ctx, tx, agentID)
		if err != nil {
			return err
		}
		if err := u.agents.Renew(ctx, tx, agentID, plan.Label, expiry); err != nil {
			return err
		}
		a.Plan = plan.Label
		a.PlanExpiry = expiry
		a.Status = model.AgentStatusActive
		agent = a

		return u.ledger.Append(ctx, tx, u.newRecord(a.ID, a.Name, a.Phone, model.TransactionKindSubscription, plan.Price, model.TransactionStatusCompleted, ""))
	})
	if err != nil {
		return nil, &domain.CommitError{Kind: "agent-renewal", Err: err}
	}

	metrics.IncEntitlement("agent-renewal")
	metrics.AddRevenue(string(model.TransactionKindSubscription), plan.Price)
	metrics.IncLedgerEntry(string(model.TransactionStatusCompleted))
	u.log.Info().Str("agent_id", agentID).Time("plan_expiry", expiry).Msg("agent renewed")
	return agent, nil
}

// CommitPayPerView increments the link counters and credits the owning agent,
// each as a single increment-by-delta statement, then mints the time-boxed
// watch grant. The 600-second window is enforced by the signed token, not a
// client-held countdown.
func (u *entitlementUC) CommitPayPerView(ctx context.Context, link *model.SharedLink, payerPhone string) (*model.WatchGrant, error) {
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.links.RecordPurchase(ctx, tx, link.ID, link.Price); err != nil {
			return err
		}
		if err := u.agents.CreditEarnings(ctx, tx, link.AgentID, link.Price); err != nil {
			return err
		}
		return u.ledger.Append(ctx, tx, u.newRecord("", "", payerPhone, model.TransactionKindAgentShare, link.Price, model.TransactionStatusCompleted, ""))
	})
	if err != nil {
		return nil, &domain.CommitError{Kind: "pay-per-view", Err: err}
	}

	now := time.Now()
	token, expiresAt, err := u.tokens.Mint(link.ID, link.ShareCode, model.WatchGrantSeconds*time.Second)
	if err != nil {
		// Money moved but the credential could not be minted; surface as a
		// commit failure so it is logged distinctly from payment failures.
		return nil, &domain.CommitError{Kind: "pay-per-view", Err: err}
	}

	metrics.IncEntitlement("pay-per-view")
	metrics.AddRevenue(string(model.TransactionKindAgentShare), link.Price)
	metrics.IncLedgerEntry(string(model.TransactionStatusCompleted))
	u.log.Info().Str("link_id", link.ID).Str("agent_id", link.AgentID).Int64("price", link.Price).Msg("pay-per-view granted")
	return &model.WatchGrant{
		LinkID:    link.ID,
		ShareCode: link.ShareCode,
		Token:     token,
		GrantedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

func (u *entitlementUC) RecordFailure(ctx context.Context, kind model.TransactionKind, phone, name string, amount int64, reference string) {
	rec := u.newRecord("", name, phone, kind, amount, model.TransactionStatusFailed, reference)
	if err := u.ledger.Append(ctx, nil, rec); err != nil {
		// Never propagate: the payment failure already reported to the payer
		// must not be masked by a ledger write error.
		u.log.Error().Err(err).Str("phone", phone).Int64("amount", amount).Msg("failed to record failed payment")
		return
	}
	metrics.IncLedgerEntry(string(model.TransactionStatusFailed))
}
