package jwtauth

import (
	"log/slog"
	"time"
)

const (
	eventSuccess   = "success"
	eventFailure   = "failure"
	eventForbidden = "forbidden"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType     string        // "success", "failure" or "forbidden"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	UserID        string        // Verified email (empty on failure)
	Algorithm     string        // Algorithm used or attempted
	FailureReason string        // Error code (on failure)
	Cause         string        // Underlying error, server-side only
	Resource      string        // Owner key requested (on forbidden)
	TokenPreview  string        // Redacted token preview
	Latency       time.Duration // Validation latency
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e SecurityEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("event", e.EventType),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.String("user_id", e.UserID),
		slog.String("algorithm", e.Algorithm),
		slog.String("failure_reason", e.FailureReason),
		slog.String("token", redactToken(e.TokenPreview)),
		slog.Duration("latency", e.Latency),
	}
	if e.Cause != "" {
		attrs = append(attrs, slog.String("cause", e.Cause))
	}
	if e.Resource != "" {
		attrs = append(attrs, slog.String("resource_owner", e.Resource))
	}
	return slog.GroupValue(attrs...)
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSecurityEvent emits a security event via the configured logger
func logSecurityEvent(logger *slog.Logger, event SecurityEvent) {
	if logger == nil {
		return // Logging disabled
	}

	switch event.EventType {
	case eventFailure:
		logger.Warn("authentication failed", "auth_event", event)
	case eventForbidden:
		logger.Warn("access denied", "auth_event", event)
	default:
		logger.Info("authentication succeeded", "auth_event", event)
	}
}
