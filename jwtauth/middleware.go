package jwtauth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID in and out of the service
const RequestIDHeader = "X-Request-ID"

// JWTAuth returns a Gin middleware handler that verifies the credential
// cookie and attaches the decoded claims to the request context.
func JWTAuth(cfg *Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestID := requestIDFor(c)

		token, err := extractToken(c.Request, cfg)
		if err != nil {
			logAuthFailure(cfg, requestID, token, err, time.Since(startTime))
			c.AbortWithStatusJSON(http.StatusUnauthorized, buildErrorResponse(err))
			return
		}

		claims, err := parseAndValidateJWT(token, cfg)
		if err != nil {
			logAuthFailure(cfg, requestID, token, err, time.Since(startTime))
			c.AbortWithStatusJSON(http.StatusUnauthorized, buildErrorResponse(err))
			return
		}

		ctx := WithClaims(c.Request.Context(), claims)
		ctx = WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		logAuthSuccess(cfg, requestID, claims, token, time.Since(startTime))

		c.Next()
	}
}

// requestIDFor reuses an ID already placed on the context or header, or mints one
func requestIDFor(c *gin.Context) string {
	if id, ok := GetRequestID(c.Request.Context()); ok && id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDHeader); id != "" {
		return id
	}
	return uuid.New().String()
}

// logAuthSuccess logs a successful authentication event
func logAuthSuccess(cfg *Config, requestID string, claims *Claims, token string, latency time.Duration) {
	if cfg.Logger() == nil {
		return
	}

	event := SecurityEvent{
		EventType:    eventSuccess,
		Timestamp:    time.Now(),
		RequestID:    requestID,
		UserID:       claims.Email,
		Algorithm:    extractAlgorithmFromToken(token),
		TokenPreview: token,
		Latency:      latency,
	}

	logSecurityEvent(cfg.Logger(), event)
}

// logAuthFailure logs a failed authentication event with its root cause
func logAuthFailure(cfg *Config, requestID string, token string, err error, latency time.Duration) {
	if cfg.Logger() == nil {
		return
	}

	event := SecurityEvent{
		EventType:     eventFailure,
		Timestamp:     time.Now(),
		RequestID:     requestID,
		Algorithm:     extractAlgorithmFromToken(token),
		FailureReason: string(CodeOf(err)),
		Cause:         err.Error(),
		TokenPreview:  token,
		Latency:       latency,
	}

	logSecurityEvent(cfg.Logger(), event)
}

// buildErrorResponse maps a verification error onto one of two fixed bodies.
// A missing credential and a bad one are distinguishable, nothing more.
func buildErrorResponse(err error) gin.H {
	if IsMissingCredential(err) {
		return gin.H{"message": MessageMissingCredential}
	}
	return gin.H{"message": MessageInvalidCredential}
}

// extractAlgorithmFromToken extracts the algorithm from a JWT token header
// Returns "MALFORMED" if extraction fails (token will be logged as invalid anyway)
func extractAlgorithmFromToken(token string) string {
	if token == "" {
		return ""
	}

	// JWT format: header.payload.signature
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return "MALFORMED"
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "MALFORMED"
	}

	var header map[string]interface{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "MALFORMED"
	}

	if alg, ok := header["alg"].(string); ok {
		return alg
	}

	return "MALFORMED"
}
