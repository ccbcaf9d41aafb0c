package model

import "time"

// User is a streaming subscriber identified by phone number. The subscription
// entitlement is the (PlanLabel, ExpiresAt) pair; content gating is a plain
// `now < ExpiresAt` check.
type User struct {
	ID        string // UUID
	Phone     string // normalized +256... form
	Name      string
	PlanLabel string
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscribed reports whether the user holds a live subscription at t.
func (u *User) Subscribed(t time.Time) bool {
	return u.ExpiresAt != nil && t.Before(*u.ExpiresAt)
}
