package jwtauth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyToken checks the signature and expiry of tokenString and decodes the
// identity claim it carries. Every failure is a *ValidationError.
func VerifyToken(cfg *Config, tokenString string) (*Claims, error) {
	return parseAndValidateJWT(tokenString, cfg)
}

// parseAndValidateJWT parses and validates a JWT token string
func parseAndValidateJWT(tokenString string, cfg *Config) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if err := validateAlgorithm(token, cfg); err != nil {
			return nil, err
		}
		return cfg.secret, nil
	},
		jwt.WithTimeFunc(cfg.now),
		jwt.WithLeeway(cfg.clockSkewLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)

	if err != nil {
		// The JWT library wraps errors returned from the key func
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return nil, valErr
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, NewValidationError(ErrExpired, "token has expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, NewValidationError(ErrInvalidSignature, "invalid signature", err)
		}

		return nil, NewValidationError(ErrMalformed, "malformed token", err)
	}

	if !token.Valid {
		return nil, NewValidationError(ErrInvalidSignature, "token is invalid", nil)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewValidationError(ErrMalformed, "invalid claims format", nil)
	}

	return mapJWTClaimsToClaims(mapClaims)
}

// validateAlgorithm ensures the token was signed with the configured method
func validateAlgorithm(token *jwt.Token, cfg *Config) error {
	alg, ok := token.Header["alg"].(string)
	if !ok {
		return NewValidationError(ErrMalformed, "missing algorithm in token header", nil)
	}

	if strings.EqualFold(alg, "none") {
		return NewValidationError(ErrNoneAlgorithm, "none algorithm not allowed", nil)
	}

	// Case-sensitive on purpose: "hs256" is not a registered algorithm
	if alg != cfg.signingMethod.Alg() || token.Method.Alg() != cfg.signingMethod.Alg() {
		return NewValidationError(
			ErrUnsupportedAlgorithm,
			fmt.Sprintf("algorithm %s not supported (available: %s)", alg, cfg.signingMethod.Alg()),
			nil,
		)
	}

	return nil
}

// mapJWTClaimsToClaims converts jwt.MapClaims to our Claims struct
func mapJWTClaimsToClaims(mapClaims jwt.MapClaims) (*Claims, error) {
	email, ok := mapClaims[IdentityClaim].(string)
	if !ok || email == "" {
		return nil, NewValidationError(ErrMalformed, "identity claim missing", nil)
	}

	claims := &Claims{
		Email:  email,
		Fields: make(map[string]any, len(mapClaims)),
	}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}

	for key, value := range mapClaims {
		if !issuerClaims[key] {
			claims.Fields[key] = value
		}
	}

	return claims, nil
}
