package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WatchTokenService mints and verifies the signed, expiring tokens that back
// pay-per-view watch grants. The content boundary verifies the token instead
// of trusting a client-held countdown.
type WatchTokenService struct {
	secret []byte
}

func NewWatchTokenService(secret string) (*WatchTokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("watch token secret must be at least 16 bytes")
	}
	return &WatchTokenService{secret: []byte(secret)}, nil
}

type WatchClaims struct {
	LinkID    string `json:"link_id"`
	ShareCode string `json:"share_code"`
	jwt.RegisteredClaims
}

// Mint issues an HS256 token for one viewing window.
func (s *WatchTokenService) Mint(linkID, shareCode string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := WatchClaims{
		LinkID:    linkID,
		ShareCode: shareCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   linkID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses a token and returns its claims; expired or tampered tokens
// are rejected by the jwt library's validation.
func (s *WatchTokenService) Verify(token string) (*WatchClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &WatchClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*WatchClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid watch token")
	}
	return claims, nil
}
