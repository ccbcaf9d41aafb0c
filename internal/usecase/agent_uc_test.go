//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
)

func newAgentUC(t *testing.T) (*agentUC, *memAgentRepo, *memLinkRepo, *memLedger, *mockGateway) {
	t.Helper()
	agents := newMemAgentRepo()
	links := newMemLinkRepo()
	ledger := newMemLedger()
	gw := &mockGateway{}
	uc := NewAgentUseCase(agents, links, ledger, gw, &mockTxManager{}, newTestLogger())
	return uc, agents, links, ledger, gw
}

func futureExpiry() time.Time { return time.Now().Add(10 * 24 * time.Hour) }

func pastExpiry() time.Time { return time.Now().Add(-time.Hour) }

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		agent   *model.Agent
		code    string
		wantErr error
	}{
		{
			name:  "active agent within window is admitted",
			agent: &model.Agent{ID: "a1", Code: "AG-AAAA-001", Status: model.AgentStatusActive, PlanExpiry: futureExpiry()},
			code:  "AG-AAAA-001",
		},
		{
			name:  "code is trimmed and upper-cased",
			agent: &model.Agent{ID: "a1", Code: "AG-AAAA-001", Status: model.AgentStatusActive, PlanExpiry: futureExpiry()},
			code:  "  ag-aaaa-001 ",
		},
		{
			name:    "blocked agent is refused",
			agent:   &model.Agent{ID: "a2", Code: "AG-BBBB-002", Status: model.AgentStatusBlocked, PlanExpiry: futureExpiry()},
			code:    "AG-BBBB-002",
			wantErr: domain.ErrAgentBlocked,
		},
		{
			name:    "expired status is refused",
			agent:   &model.Agent{ID: "a3", Code: "AG-CCCC-003", Status: model.AgentStatusExpired, PlanExpiry: futureExpiry()},
			code:    "AG-CCCC-003",
			wantErr: domain.ErrAgentExpired,
		},
		{
			name:    "active status past the plan window is refused",
			agent:   &model.Agent{ID: "a4", Code: "AG-DDDD-004", Status: model.AgentStatusActive, PlanExpiry: pastExpiry()},
			code:    "AG-DDDD-004",
			wantErr: domain.ErrAgentExpired,
		},
		{
			name:    "unknown code",
			code:    "AG-ZZZZ-999",
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, agents, _, _, _ := newAgentUC(t)
			if tc.agent != nil {
				agents.Save(ctx, nil, tc.agent)
			}
			got, err := uc.Authenticate(ctx, tc.code)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && got.Code != tc.agent.Code {
				t.Errorf("agent = %+v", got)
			}
		})
	}

	t.Run("blocked wins over lapsed window", func(t *testing.T) {
		uc, agents, _, _, _ := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a5", Code: "AG-EEEE-005", Status: model.AgentStatusBlocked, PlanExpiry: pastExpiry()})
		_, err := uc.Authenticate(ctx, "AG-EEEE-005")
		if !errors.Is(err, domain.ErrAgentBlocked) {
			t.Fatalf("err = %v, want ErrAgentBlocked", err)
		}
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("pays out, debits the balance and appends one ledger entry", func(t *testing.T) {
		uc, agents, _, ledger, _ := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1", Code: "AG-AAAA-001", Name: "Okello", Phone: "+256771234567", Balance: 8000, Status: model.AgentStatusActive})

		if err := uc.Withdraw(ctx, "a1", "+256771234567", 5000); err != nil {
			t.Fatalf("Withdraw: %v", err)
		}

		agent, _ := agents.FindByID(ctx, nil, "a1")
		if agent.Balance != 3000 {
			t.Errorf("balance = %d, want 3000", agent.Balance)
		}
		recs := ledger.all()
		if len(recs) != 1 {
			t.Fatalf("ledger entries = %d, want 1", len(recs))
		}
		rec := recs[0]
		if rec.Kind != model.TransactionKindWithdrawal || rec.Amount != 5000 || rec.Status != model.TransactionStatusCompleted {
			t.Errorf("record = %+v", rec)
		}
	})

	t.Run("rejects amounts below the minimum", func(t *testing.T) {
		uc, agents, _, ledger, gw := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1", Balance: 8000})
		gw.WithdrawFunc = func(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error) {
			t.Error("gateway must not be called for an invalid amount")
			return nil, nil
		}

		if err := uc.Withdraw(ctx, "a1", "+256771234567", 999); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("err = %v, want ErrInvalidArgument", err)
		}
		if len(ledger.all()) != 0 {
			t.Error("no ledger entry may be written")
		}
	})

	t.Run("rejects withdrawals beyond the balance", func(t *testing.T) {
		uc, agents, _, _, gw := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1", Balance: 2000})
		gw.WithdrawFunc = func(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error) {
			t.Error("gateway must not be called when the balance is short")
			return nil, nil
		}

		if err := uc.Withdraw(ctx, "a1", "+256771234567", 5000); !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("err = %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("gateway rejection leaves the balance untouched", func(t *testing.T) {
		uc, agents, _, ledger, gw := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1", Balance: 8000})
		gw.WithdrawFunc = func(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error) {
			return nil, &domain.GatewayError{Op: "withdraw", Message: "Invalid msisdn"}
		}

		err := uc.Withdraw(ctx, "a1", "bad", 5000)
		var gerr *domain.GatewayError
		if !errors.As(err, &gerr) {
			t.Fatalf("err = %v, want GatewayError", err)
		}
		agent, _ := agents.FindByID(ctx, nil, "a1")
		if agent.Balance != 8000 {
			t.Errorf("balance = %d, want 8000", agent.Balance)
		}
		if len(ledger.all()) != 0 {
			t.Error("no ledger entry may be written")
		}
	})

	t.Run("debit failure after payout surfaces as a commit error", func(t *testing.T) {
		uc, agents, _, _, _ := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1", Balance: 8000})
		agents.debitErr = domain.ErrOperationFailed

		err := uc.Withdraw(ctx, "a1", "+256771234567", 5000)
		var cerr *domain.CommitError
		if !errors.As(err, &cerr) {
			t.Fatalf("err = %v, want CommitError", err)
		}
	})
}

func TestSharedLinks(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active link with a fresh share code", func(t *testing.T) {
		uc, agents, _, _, _ := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1", Status: model.AgentStatusActive})

		link, err := uc.CreateSharedLink(ctx, "a1", "match", "m42", "Big Match", 2000)
		if err != nil {
			t.Fatalf("CreateSharedLink: %v", err)
		}
		if !link.Active || link.ShareCode == "" || link.Price != 2000 {
			t.Errorf("link = %+v", link)
		}

		got, err := uc.FindSharedLink(ctx, link.ShareCode)
		if err != nil || got.ID != link.ID {
			t.Errorf("FindSharedLink = %+v, %v", got, err)
		}
	})

	t.Run("rejects zero price and missing content", func(t *testing.T) {
		uc, agents, _, _, _ := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1"})

		if _, err := uc.CreateSharedLink(ctx, "a1", "match", "m42", "Big Match", 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("zero price: err = %v", err)
		}
		if _, err := uc.CreateSharedLink(ctx, "a1", "match", "", "Big Match", 2000); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("missing content id: err = %v", err)
		}
	})

	t.Run("lists only the agent's links", func(t *testing.T) {
		uc, agents, links, _, _ := newAgentUC(t)
		agents.Save(ctx, nil, &model.Agent{ID: "a1"})
		links.Save(ctx, nil, &model.SharedLink{ID: "l1", AgentID: "a1", ShareCode: "C1"})
		links.Save(ctx, nil, &model.SharedLink{ID: "l2", AgentID: "a2", ShareCode: "C2"})

		got, err := uc.ListSharedLinks(ctx, "a1")
		if err != nil || len(got) != 1 || got[0].ID != "l1" {
			t.Errorf("ListSharedLinks = %+v, %v", got, err)
		}
	})
}
