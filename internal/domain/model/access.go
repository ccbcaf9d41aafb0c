package model

import "time"

// WatchGrantSeconds is the fixed pay-per-view viewing window.
const WatchGrantSeconds = 600

// WatchGrant is the time-boxed access produced by a successful pay-per-view
// purchase. Token is a signed credential the content boundary verifies, so
// expiry is not left to the client's wall clock.
type WatchGrant struct {
	LinkID    string
	ShareCode string
	Token     string
	GrantedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the window has closed at t.
func (g *WatchGrant) Expired(t time.Time) bool {
	return t.After(g.ExpiresAt)
}
