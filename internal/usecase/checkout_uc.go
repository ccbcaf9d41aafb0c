package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/adapter"
	"streaming-payments/internal/domain/ports/repository"
	"streaming-payments/internal/infra/metrics"
)

// EntitlementKind selects which entitlement a confirmed payment buys. One
// payment protocol, four outcomes.
type EntitlementKind string

const (
	KindSubscription  EntitlementKind = "subscription"
	KindAgentCreation EntitlementKind = "agent-creation"
	KindAgentRenewal  EntitlementKind = "agent-renewal"
	KindPayPerView    EntitlementKind = "pay-per-view"
)

// CheckoutRequest describes one payment attempt. PlanID is required for the
// plan-backed kinds; AgentID for renewals; ShareCode for pay-per-view.
type CheckoutRequest struct {
	Kind      EntitlementKind
	Phone     string
	Name      string
	PlanID    string
	AgentID   string
	ShareCode string
}

// CheckoutResult carries the entitlement produced by a successful checkout.
// Exactly one of User, Agent, Grant is set, matching the request kind.
type CheckoutResult struct {
	Kind      EntitlementKind
	Reference string
	Amount    int64
	User      *model.User
	Agent     *model.Agent
	Grant     *model.WatchGrant
}

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// CheckoutUseCase runs the whole deposit -> poll -> commit protocol. Within
// one call, deposit always precedes poll, which precedes exactly one terminal
// resolution: a commit, a recorded failure, or a timeout that deliberately
// writes nothing.
type CheckoutUseCase interface {
	Run(ctx context.Context, req CheckoutRequest, onUpdate func(model.PaymentStatus)) (*CheckoutResult, error)
}

type checkoutUC struct {
	gateway   adapter.PaymentGateway
	poller    *StatusPoller
	committer EntitlementCommitter
	plans     repository.PlanRepository
	agents    repository.AgentRepository
	links     repository.SharedLinkRepository
	appName   string // brand prefix on provider prompts
	log       *zerolog.Logger
}

func NewCheckoutUseCase(
	gateway adapter.PaymentGateway,
	poller *StatusPoller,
	committer EntitlementCommitter,
	plans repository.PlanRepository,
	agents repository.AgentRepository,
	links repository.SharedLinkRepository,
	appName string,
	logger *zerolog.Logger,
) *checkoutUC {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &checkoutUC{
		gateway:   gateway,
		poller:    poller,
		committer: committer,
		plans:     plans,
		agents:    agents,
		links:     links,
		appName:   appName,
		log:       &l,
	}
}

// intent is the resolved price and description for one checkout, plus the
// entities the commit step needs.
type intent struct {
	amount      int64
	description string
	ledgerKind  model.TransactionKind
	plan        *model.Plan
	link        *model.SharedLink
}

func (u *checkoutUC) resolve(ctx context.Context, req CheckoutRequest) (*intent, error) {
	switch req.Kind {
	case KindSubscription, KindAgentCreation, KindAgentRenewal:
		plan, err := u.plans.FindByID(ctx, nil, req.PlanID)
		if err != nil {
			return nil, err
		}
		wantAudience := map[EntitlementKind]model.PlanAudience{
			KindSubscription:  model.PlanAudienceUser,
			KindAgentCreation: model.PlanAudienceAgent,
			KindAgentRenewal:  model.PlanAudienceAgentRenewal,
		}[req.Kind]
		if plan.Audience != wantAudience {
			return nil, domain.ErrInvalidArgument
		}
		desc := map[EntitlementKind]string{
			KindSubscription:  fmt.Sprintf("%s - %s Plan", u.appName, plan.Label),
			KindAgentCreation: fmt.Sprintf("%s Agent Plan - %s", u.appName, plan.Label),
			KindAgentRenewal:  fmt.Sprintf("%s Agent Renewal - %s", u.appName, plan.Label),
		}[req.Kind]
		return &intent{amount: plan.Price, description: desc, ledgerKind: model.TransactionKindSubscription, plan: plan}, nil

	case KindPayPerView:
		link, err := u.links.FindByShareCode(ctx, nil, req.ShareCode)
		if err != nil {
			return nil, err
		}
		if !link.Active {
			return nil, domain.ErrLinkInactive
		}
		return &intent{
			amount:      link.Price,
			description: fmt.Sprintf("%s - Watch: %s", u.appName, link.ContentTitle),
			ledgerKind:  model.TransactionKindAgentShare,
			link:        link,
		}, nil

	default:
		return nil, domain.ErrInvalidArgument
	}
}

// Run executes one payment attempt end to end.
//
// Terminal bookkeeping:
//   - poll failure -> one failed ledger entry via RecordFailure;
//   - poll timeout -> nothing written; the timeout error alone reaches the
//     caller so its retry UX can differ from a hard failure;
//   - cancellation -> nothing written, nothing committed;
//   - success -> exactly one commit, inside one DB transaction.
func (u *checkoutUC) Run(ctx context.Context, req CheckoutRequest, onUpdate func(model.PaymentStatus)) (*CheckoutResult, error) {
	in, err := u.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	deposit, err := u.gateway.Deposit(ctx, req.Phone, in.amount, in.description)
	if err != nil {
		metrics.IncDeposit("rejected")
		return nil, err
	}
	metrics.IncDeposit("initiated")
	u.log.Info().Str("kind", string(req.Kind)).Str("reference", deposit.Reference).Int64("amount", in.amount).Msg("deposit initiated")

	_, err = u.poller.Poll(ctx, deposit.Reference, onUpdate)
	if err != nil {
		return nil, u.resolveFailure(ctx, req, in, deposit, err)
	}
	metrics.IncPollOutcome("success")

	result := &CheckoutResult{Kind: req.Kind, Reference: deposit.Reference, Amount: in.amount}
	switch req.Kind {
	case KindSubscription:
		result.User, err = u.committer.CommitSubscription(ctx, deposit.PayerPhone, req.Name, in.plan)
	case KindAgentCreation:
		result.Agent, err = u.committer.CommitAgentCreation(ctx, deposit.PayerPhone, req.Name, in.plan)
	case KindAgentRenewal:
		result.Agent, err = u.committer.CommitAgentRenewal(ctx, req.AgentID, in.plan)
	case KindPayPerView:
		result.Grant, err = u.committer.CommitPayPerView(ctx, in.link, deposit.PayerPhone)
	}
	if err != nil {
		u.log.Error().Err(err).Str("reference", deposit.Reference).Msg("entitlement commit failed after confirmed payment")
		return nil, err
	}
	return result, nil
}

func (u *checkoutUC) resolveFailure(ctx context.Context, req CheckoutRequest, in *intent, deposit *model.PaymentRequest, pollErr error) error {
	var timeout *domain.PollTimeoutError
	switch {
	case errors.Is(pollErr, context.Canceled) || errors.Is(pollErr, context.DeadlineExceeded):
		// The caller abandoned the flow; no timer is left behind and nothing
		// may be written on its behalf.
		metrics.IncPollOutcome("cancelled")
		return pollErr
	case errors.As(pollErr, &timeout):
		metrics.IncPollOutcome("timeout")
		u.log.Warn().Str("reference", deposit.Reference).Int("attempts", timeout.Attempts).Msg("payment poll timed out")
		return pollErr
	default:
		metrics.IncPollOutcome("failed")
		u.committer.RecordFailure(ctx, in.ledgerKind, deposit.PayerPhone, req.Name, in.amount, deposit.Reference)
		return pollErr
	}
}
