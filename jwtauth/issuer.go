package jwtauth

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is a signed credential together with its absolute expiry
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// IssueToken signs payload into a credential that expires TTL after now.
// The payload must carry a non-empty string email; exp and nbf are reserved,
// and iat is always set by the issuer. A payload whose token would not fit
// in one cookie is rejected with ErrTokenTooLarge.
func IssueToken(cfg *Config, payload map[string]any) (Token, error) {
	email, ok := payload[IdentityClaim].(string)
	if !ok || strings.TrimSpace(email) == "" {
		return Token{}, NewValidationError(ErrMissingIdentity, "email is required", nil)
	}

	var reserved []string
	for key := range payload {
		if reservedClaims[key] {
			reserved = append(reserved, key)
		}
	}
	if len(reserved) > 0 {
		sort.Strings(reserved)
		return Token{}, NewValidationError(
			ErrReservedClaim,
			fmt.Sprintf("reserved claims not allowed: %s", strings.Join(reserved, ", ")),
			nil,
		)
	}

	now := cfg.Now()
	expiresAt := now.Add(cfg.TTL())

	claims := make(jwt.MapClaims, len(payload)+2)
	for key, value := range payload {
		claims[key] = value
	}
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(expiresAt)

	signed, err := jwt.NewWithClaims(cfg.signingMethod, claims).SignedString(cfg.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	if size := len(cfg.CookieName()) + 1 + len(signed); size > MaxCookieSize {
		return Token{}, NewValidationError(
			ErrTokenTooLarge,
			fmt.Sprintf("signed token needs a %d byte cookie, limit is %d", size, MaxCookieSize),
			nil,
		)
	}

	return Token{
		Value:     signed,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}
