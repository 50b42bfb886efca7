package tokenstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wastewise/wastewise-go/internal/core/domain"
)

// Claims are the fields of a backend-issued JWT the client displays.
// Signatures are never checked client-side; the server is the authority.
type Claims struct {
	TokenType string
	UserID    string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its expiry at now. A token
// without an expiry never expires.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type backendClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	UserID    any    `json:"user_id"`
}

// ParseClaims decodes raw without verifying its signature.
func ParseClaims(raw string) (*Claims, error) {
	var bc backendClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &bc); err != nil {
		return nil, domain.ErrMalformedToken.WithCause(err)
	}

	c := &Claims{
		TokenType: bc.TokenType,
		UserID:    formatUserID(bc.UserID),
		ID:        bc.RegisteredClaims.ID,
	}
	if bc.IssuedAt != nil {
		c.IssuedAt = bc.IssuedAt.Time
	}
	if bc.ExpiresAt != nil {
		c.ExpiresAt = bc.ExpiresAt.Time
	}
	return c, nil
}

func formatUserID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// AccessClaims decodes the current access token.
func (s *Store) AccessClaims() (*Claims, error) {
	access := s.AccessToken()
	if access == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return ParseClaims(access)
}

// Authenticated implements metric.SessionSource.
func (s *Store) Authenticated() bool {
	return s.IsAuthenticated()
}

// AccessExpiry implements metric.SessionSource. Zero when unknown.
func (s *Store) AccessExpiry() time.Time {
	c, err := s.AccessClaims()
	if err != nil {
		return time.Time{}
	}
	return c.ExpiresAt
}
