package model

import (
	"fmt"
	"math/rand"
	"time"
)

type AgentStatus string

const (
	AgentStatusActive  AgentStatus = "active"
	AgentStatusBlocked AgentStatus = "blocked"
	AgentStatusExpired AgentStatus = "expired"
)

// Agent is a reseller identity. Code is the durable login credential; Balance
// accumulates pay-per-view earnings and is debited by withdrawals.
type Agent struct {
	ID            string // UUID
	Code          string // e.g. AG-7KQ2-049
	Name          string
	Phone         string
	Balance       int64
	TotalEarnings int64
	Plan          string
	PlanExpiry    time.Time
	Status        AgentStatus
	CreatedAt     time.Time
}

// Lapsed reports whether the plan window has passed, regardless of the
// persisted status; the login guard treats both the same.
func (a *Agent) Lapsed(t time.Time) bool {
	return a.Status == AgentStatusExpired || t.After(a.PlanExpiry)
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewAgentCode generates a fresh AG-XXXX-NNN credential. The code space is
// 36^4 * 1000; no uniqueness check is performed against existing agents and
// the collision risk is accepted as negligible.
func NewAgentCode() string {
	part := make([]byte, 4)
	for i := range part {
		part[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return fmt.Sprintf("AG-%s-%03d", part, rand.Intn(1000))
}
