//go:build !integration

package model

import (
	"regexp"
	"testing"
	"time"
)

func TestPaymentStatusTerminal(t *testing.T) {
	cases := map[PaymentStatus]bool{
		PaymentStatusPending:    false,
		PaymentStatusProcessing: false,
		PaymentStatusSuccess:    true,
		PaymentStatusFailed:     true,
		PaymentStatusExpired:    true,
	}
	for status, want := range cases {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestNewAgentCodeFormat(t *testing.T) {
	re := regexp.MustCompile(`^AG-[A-Z0-9]{4}-\d{3}$`)
	for i := 0; i < 100; i++ {
		code := NewAgentCode()
		if !re.MatchString(code) {
			t.Fatalf("agent code %q does not match AG-XXXX-NNN", code)
		}
	}
}

func TestAgentLapsed(t *testing.T) {
	now := time.Now()

	a := &Agent{Status: AgentStatusActive, PlanExpiry: now.Add(24 * time.Hour)}
	if a.Lapsed(now) {
		t.Error("active agent inside window should not be lapsed")
	}

	a.PlanExpiry = now.Add(-time.Minute)
	if !a.Lapsed(now) {
		t.Error("agent past plan expiry should be lapsed")
	}

	a = &Agent{Status: AgentStatusExpired, PlanExpiry: now.Add(24 * time.Hour)}
	if !a.Lapsed(now) {
		t.Error("expired status should lapse regardless of window")
	}
}

func TestUserSubscribed(t *testing.T) {
	now := time.Now()

	u := &User{}
	if u.Subscribed(now) {
		t.Error("user without expiry should not be subscribed")
	}

	future := now.Add(time.Hour)
	u.ExpiresAt = &future
	if !u.Subscribed(now) {
		t.Error("user with future expiry should be subscribed")
	}

	past := now.Add(-time.Hour)
	u.ExpiresAt = &past
	if u.Subscribed(now) {
		t.Error("user with past expiry should not be subscribed")
	}
}

func TestPlanExpiry(t *testing.T) {
	p := &Plan{Days: 30}
	from := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	want := from.Add(30 * 24 * time.Hour)
	if got := p.Expiry(from); !got.Equal(want) {
		t.Errorf("Expiry = %v, want %v", got, want)
	}
}

func TestWatchGrantExpired(t *testing.T) {
	now := time.Now()
	g := &WatchGrant{GrantedAt: now, ExpiresAt: now.Add(WatchGrantSeconds * time.Second)}
	if g.Expired(now.Add(599 * time.Second)) {
		t.Error("grant should still be open inside the window")
	}
	if !g.Expired(now.Add(601 * time.Second)) {
		t.Error("grant should be closed past the window")
	}
}
