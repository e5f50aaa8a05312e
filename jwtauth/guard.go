package jwtauth

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Owns reports whether the verified identity on ctx is exactly owner.
// It is false when no claims are present.
func Owns(ctx context.Context, owner string) bool {
	claims, ok := GetClaims(ctx)
	if !ok {
		return false
	}
	return claims.Email == owner
}

// RequireOwner returns a Gin middleware that only lets a request through
// when the path parameter param equals the verified identity. It must be
// mounted after JWTAuth.
func RequireOwner(cfg *Config, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Owns(c.Request.Context(), c.Param(param)) {
			AbortForbidden(c, cfg, c.Param(param))
			return
		}
		c.Next()
	}
}

// AbortForbidden rejects the request with 403 and logs the mismatch. It is
// used directly by handlers whose owner key lives in a body or a stored
// document rather than the path.
func AbortForbidden(c *gin.Context, cfg *Config, owner string) {
	if logger := cfg.Logger(); logger != nil {
		requestID, _ := GetRequestID(c.Request.Context())
		event := SecurityEvent{
			EventType:     eventForbidden,
			Timestamp:     time.Now(),
			RequestID:     requestID,
			FailureReason: string(ErrForbidden),
			Resource:      owner,
		}
		if claims, ok := GetClaims(c.Request.Context()); ok {
			event.UserID = claims.Email
		}
		logSecurityEvent(logger, event)
	}
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": MessageOwnershipMismatch})
}
