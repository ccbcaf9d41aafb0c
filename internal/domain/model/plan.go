package model

import "time"

// PlanAudience separates the user catalog from the agent catalogs: "user"
// plans grant viewing subscriptions, "agent" plans create agent identities,
// "agent-renewal" plans extend them.
type PlanAudience string

const (
	PlanAudienceUser         PlanAudience = "user"
	PlanAudienceAgent        PlanAudience = "agent"
	PlanAudienceAgentRenewal PlanAudience = "agent-renewal"
)

// Plan is one entry of the price catalog: what a payer buys, for how much,
// and for how long.
type Plan struct {
	ID        string // UUID
	Label     string // "1 Day", "1 Week", "1 Month"
	Audience  PlanAudience
	Price     int64 // UGX
	Days      int   // entitlement window length
	CreatedAt time.Time
}

// Expiry computes the entitlement window end from a grant instant.
func (p *Plan) Expiry(from time.Time) time.Time {
	return from.Add(time.Duration(p.Days) * 24 * time.Hour)
}
