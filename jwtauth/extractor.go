package jwtauth

import (
	"net/http"
	"strings"
)

// extractTokenFromHeader extracts JWT token from Authorization header
// Expected format: "Authorization: Bearer <token>"
func extractTokenFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", NewValidationError(ErrMissingToken, "authorization header not found", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", NewValidationError(ErrMalformed, "invalid authorization header format, expected 'Bearer <token>'", nil)
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", NewValidationError(ErrMissingToken, "token is empty", nil)
	}

	return token, nil
}

// extractTokenFromCookie extracts JWT token from a cookie
func extractTokenFromCookie(r *http.Request, cookieName string) (string, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return "", NewValidationError(ErrMissingToken, "cookie not found", err)
	}

	token := strings.TrimSpace(cookie.Value)
	if token == "" {
		return "", NewValidationError(ErrMissingToken, "cookie value is empty", nil)
	}

	return token, nil
}

// extractToken extracts JWT token from HTTP request
// Checks the credential cookie first, then the Authorization header if enabled
func extractToken(r *http.Request, cfg *Config) (string, error) {
	token, err := extractTokenFromCookie(r, cfg.CookieName())
	if err == nil {
		return token, nil
	}

	if cfg.bearerFallback {
		if token, headerErr := extractTokenFromHeader(r); headerErr == nil {
			return token, nil
		} else if !IsMissingCredential(headerErr) {
			return "", headerErr
		}
	}

	return "", err
}
