package model

import (
	"math/rand"
	"time"
)

// SharedLink is a piece of content an agent resells. Views and Earnings are
// only ever mutated by single increment-by-delta updates so that concurrent
// purchases never lose a credit.
type SharedLink struct {
	ID           string // UUID
	AgentID      string // owning agent UUID
	ShareCode    string
	ContentType  string // "movie" | "series" | "episode"
	ContentID    string
	ContentTitle string
	Price        int64
	Views        int64
	Earnings     int64
	Active       bool
	CreatedAt    time.Time
}

// NewShareCode returns an 8-character alphanumeric share code.
func NewShareCode() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
