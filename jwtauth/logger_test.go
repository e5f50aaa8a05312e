package jwtauth

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func decodeAuthEvent(t *testing.T, line []byte) map[string]interface{} {
	t.Helper()
	var logEntry map[string]interface{}
	if err := json.Unmarshal(line, &logEntry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v\nOutput: %s", err, line)
	}
	authEvent, ok := logEntry["auth_event"].(map[string]interface{})
	if !ok {
		t.Fatalf("Log entry missing auth_event group: %+v", logEntry)
	}
	return authEvent
}

// TestFailureCauseLoggedNotReturned tests that the root cause reaches the log only
func TestFailureCauseLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	cfg := mustCreateConfig(WithHS256(testSecret), WithLogger(newJSONLogger(&buf)))

	router := gin.New()
	router.GET("/protected", JWTAuth(cfg), func(c *gin.Context) { c.Status(200) })

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "eyJhbGciOiJIUzI1NiJ9.e30.c2lnbmF0dXJl"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != 401 {
		t.Fatalf("Expected 401, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"message":"UnAuthorized"}` {
		t.Errorf("Response body leaked detail: %s", w.Body.String())
	}

	authEvent := decodeAuthEvent(t, buf.Bytes())
	if authEvent["event"] != "failure" {
		t.Errorf("Expected event=failure, got %v", authEvent["event"])
	}
	if authEvent["failure_reason"] != string(ErrInvalidSignature) {
		t.Errorf("Expected failure_reason=INVALID_SIGNATURE, got %v", authEvent["failure_reason"])
	}
	if cause, _ := authEvent["cause"].(string); cause == "" {
		t.Error("Expected underlying cause in log")
	}
	if authEvent["algorithm"] != "HS256" {
		t.Errorf("Expected algorithm=HS256, got %v", authEvent["algorithm"])
	}
}

// TestSuccessEventLogged tests the success event and token redaction
func TestSuccessEventLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := mustCreateConfig(WithHS256(testSecret), WithLogger(newJSONLogger(&buf)))
	token := mustIssue(cfg, map[string]any{"email": "a@x.com"})

	router := gin.New()
	router.GET("/protected", JWTAuth(cfg), func(c *gin.Context) { c.Status(200) })

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	router.ServeHTTP(httptest.NewRecorder(), req)

	authEvent := decodeAuthEvent(t, buf.Bytes())
	if authEvent["event"] != "success" {
		t.Errorf("Expected event=success, got %v", authEvent["event"])
	}
	if authEvent["user_id"] != "a@x.com" {
		t.Errorf("Expected user_id=a@x.com, got %v", authEvent["user_id"])
	}
	if redacted, _ := authEvent["token"].(string); redacted != token[:8]+"..." {
		t.Errorf("Expected redacted token, got %q", redacted)
	}
	if _, ok := authEvent["request_id"].(string); !ok {
		t.Error("Expected generated request_id")
	}
}

// TestForbiddenEventLogged tests the ownership mismatch event
func TestForbiddenEventLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf)
	cfg := mustCreateConfig(WithHS256(testSecret), WithLogger(logger))
	token := mustIssue(cfg, map[string]any{"email": "a@x.com"})

	router := gin.New()
	router.GET("/cart/:email", JWTAuth(cfg), RequireOwner(cfg, "email"), func(c *gin.Context) { c.Status(200) })

	req, _ := http.NewRequest("GET", "/cart/b@x.com", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	router.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("Expected success and forbidden events, got %d lines: %s", len(lines), buf.String())
	}
	authEvent := decodeAuthEvent(t, lines[1])
	if authEvent["event"] != "forbidden" {
		t.Errorf("Expected event=forbidden, got %v", authEvent["event"])
	}
	if authEvent["resource_owner"] != "b@x.com" {
		t.Errorf("Expected resource_owner=b@x.com, got %v", authEvent["resource_owner"])
	}
}

// TestRedactToken tests the redaction helper
func TestRedactToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{token: "", expected: ""},
		{token: "short", expected: "***"},
		{token: "eyJhbGciOiJIUzI1NiJ9.e30.sig", expected: "eyJhbGci..."},
	}

	for _, tt := range tests {
		if got := redactToken(tt.token); got != tt.expected {
			t.Errorf("redactToken(%q) = %q, want %q", tt.token, got, tt.expected)
		}
	}
}

// TestLogSecurityEvent_NilLogger tests that a nil logger is a no-op
func TestLogSecurityEvent_NilLogger(t *testing.T) {
	logSecurityEvent(nil, SecurityEvent{EventType: eventFailure, Timestamp: time.Now()})
}

// TestExtractAlgorithmFromToken tests the algorithm extraction helper
func TestExtractAlgorithmFromToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "Valid HS256 token", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ1c2VyMTIzIn0.signature", expected: "HS256"},
		{name: "Empty token", token: "", expected: ""},
		{name: "Malformed token (missing parts)", token: "invalid", expected: "MALFORMED"},
		{name: "Header is not base64", token: "!!!.e30.sig", expected: "MALFORMED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractAlgorithmFromToken(tt.token); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
