package jwtauth

import "context"

type contextKey string

const (
	claimsContextKey    contextKey = "github.com/Wang-tianhao/storefront-api/jwtauth:claims"
	requestIDContextKey contextKey = "github.com/Wang-tianhao/storefront-api/jwtauth:request_id"
)

// WithClaims attaches the verified credential to ctx. JWTAuth is the only
// caller in this module; Claims.Email is the identity Owns and RequireOwner
// compare against owner keys, so handlers must treat it as read-only.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims returns the credential JWTAuth verified for this request.
// ok is false on public routes, where the verifier never ran.
func GetClaims(ctx context.Context) (claims *Claims, ok bool) {
	claims, ok = ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// MustGetClaims is GetClaims for handlers mounted behind JWTAuth, where a
// missing credential is a wiring bug rather than a client error.
func MustGetClaims(ctx context.Context) *Claims {
	claims, ok := GetClaims(ctx)
	if !ok {
		panic("jwtauth: no verified claims on context; is the route behind JWTAuth?")
	}
	return claims
}

// WithRequestID records the correlation ID that security events and the
// access log share.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}
