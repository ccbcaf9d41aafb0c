//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User // by ID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) SetSubscription(ctx context.Context, tx repository.Tx, id, planLabel string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PlanLabel = planLabel
	ex := expiresAt
	u.ExpiresAt = &ex
	return nil
}

func (m *memUserRepo) CountSubscribed(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.Subscribed(at) {
			n++
		}
	}
	return n, nil
}

// memAgentRepo backs agent tests, including the atomic credit/debit paths.
type memAgentRepo struct {
	mu       sync.RWMutex
	store    map[string]*model.Agent
	debitErr error // forced DebitBalance failure
}

func newMemAgentRepo() *memAgentRepo {
	return &memAgentRepo{store: make(map[string]*model.Agent)}
}

func (m *memAgentRepo) Save(ctx context.Context, tx repository.Tx, a *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ID] = &cp
	return nil
}

func (m *memAgentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAgentRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if a.Code == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAgentRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if a.Phone == phone {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAgentRepo) Renew(ctx context.Context, tx repository.Tx, id, plan string, planExpiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Plan = plan
	a.PlanExpiry = planExpiry
	a.Status = model.AgentStatusActive
	return nil
}

func (m *memAgentRepo) CreditEarnings(ctx context.Context, tx repository.Tx, id string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Balance += delta
	a.TotalEarnings += delta
	return nil
}

func (m *memAgentRepo) DebitBalance(ctx context.Context, tx repository.Tx, id string, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debitErr != nil {
		return m.debitErr
	}
	a, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if a.Balance < amount {
		return domain.ErrInsufficientBalance
	}
	a.Balance -= amount
	return nil
}

func (m *memAgentRepo) MarkExpired(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.store {
		if a.Status == model.AgentStatusActive && a.PlanExpiry.Before(cutoff) {
			a.Status = model.AgentStatusExpired
			n++
		}
	}
	return n, nil
}

// memPlanRepo holds the plan catalog for tests.
type memPlanRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{store: make(map[string]*model.Plan)}
}

func (m *memPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPlanRepo) ListByAudience(ctx context.Context, tx repository.Tx, audience model.PlanAudience) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Plan
	for _, p := range m.store {
		if p.Audience == audience {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Plan
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// memLinkRepo backs shared-link tests.
type memLinkRepo struct {
	mu    sync.RWMutex
	store map[string]*model.SharedLink
}

func newMemLinkRepo() *memLinkRepo {
	return &memLinkRepo{store: make(map[string]*model.SharedLink)}
}

func (m *memLinkRepo) Save(ctx context.Context, tx repository.Tx, l *model.SharedLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.store[l.ID] = &cp
	return nil
}

func (m *memLinkRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SharedLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLinkRepo) FindByShareCode(ctx context.Context, tx repository.Tx, code string) (*model.SharedLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.store {
		if l.ShareCode == code {
			cp := *l
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLinkRepo) ListByAgent(ctx context.Context, tx repository.Tx, agentID string) ([]*model.SharedLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.SharedLink
	for _, l := range m.store {
		if l.AgentID == agentID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memLinkRepo) RecordPurchase(ctx context.Context, tx repository.Tx, id string, price int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Views++
	l.Earnings += price
	return nil
}

func (m *memLinkRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Active = active
	return nil
}

// memLedger records appended transactions; appendErr simulates write failure.
type memLedger struct {
	mu        sync.RWMutex
	records   []*model.TransactionRecord
	appendErr error
}

func newMemLedger() *memLedger {
	return &memLedger{}
}

func (m *memLedger) Append(ctx context.Context, tx repository.Tx, rec *model.TransactionRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records = append(m.records, &cp)
	return nil
}

func (m *memLedger) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memLedger) ListByPhone(ctx context.Context, tx repository.Tx, phone string, limit int) ([]*model.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.TransactionRecord
	for _, r := range m.records {
		if r.Phone == phone {
			cp := *r
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memLedger) SumCompletedSince(ctx context.Context, tx repository.Tx, kind model.TransactionKind, since time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, r := range m.records {
		if r.Kind == kind && r.Status == model.TransactionStatusCompleted && !r.CreatedAt.Before(since) {
			sum += r.Amount
		}
	}
	return sum, nil
}

func (m *memLedger) all() []*model.TransactionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.TransactionRecord, len(m.records))
	copy(out, m.records)
	return out
}

// mockGateway scripts gateway behavior per test.
type mockGateway struct {
	mu              sync.Mutex
	DepositFunc     func(ctx context.Context, phone string, amount int64, description string) (*model.PaymentRequest, error)
	WithdrawFunc    func(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error)
	CheckStatusFunc func(ctx context.Context, reference string) (*model.StatusCheck, error)
	statusScript    []*model.StatusCheck // consumed one per CheckStatus call when CheckStatusFunc is nil
	statusCalls     int
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) Deposit(ctx context.Context, phone string, amount int64, description string) (*model.PaymentRequest, error) {
	if g.DepositFunc != nil {
		return g.DepositFunc(ctx, phone, amount, description)
	}
	return &model.PaymentRequest{Reference: "R1", PayerPhone: phone, Amount: amount, Description: description, CreatedAt: time.Now()}, nil
}

func (g *mockGateway) Withdraw(ctx context.Context, phone string, amount int64, description string) (*model.WithdrawResult, error) {
	if g.WithdrawFunc != nil {
		return g.WithdrawFunc(ctx, phone, amount, description)
	}
	return &model.WithdrawResult{Reference: "W1"}, nil
}

func (g *mockGateway) CheckStatus(ctx context.Context, reference string) (*model.StatusCheck, error) {
	if g.CheckStatusFunc != nil {
		g.mu.Lock()
		g.statusCalls++
		g.mu.Unlock()
		return g.CheckStatusFunc(ctx, reference)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if len(g.statusScript) == 0 {
		return &model.StatusCheck{Status: model.PaymentStatusPending}, nil
	}
	next := g.statusScript[0]
	if len(g.statusScript) > 1 {
		g.statusScript = g.statusScript[1:]
	}
	return next, nil
}

func (g *mockGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls
}

// mockTxManager executes the callback inline without a real transaction.
type mockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func (m *mockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// mockTokenMinter mints predictable tokens.
type mockTokenMinter struct {
	MintErr error
}

func (m *mockTokenMinter) Mint(linkID, shareCode string, ttl time.Duration) (string, time.Time, error) {
	if m.MintErr != nil {
		return "", time.Time{}, m.MintErr
	}
	return "token-" + linkID, time.Now().Add(ttl), nil
}
