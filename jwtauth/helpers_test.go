package jwtauth

import (
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	// Set Gin to test mode to suppress logs
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("test-secret-key-that-is-at-least-32-bytes!")

// fakeClock is a settable time source
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func mustCreateConfig(opts ...ConfigOption) *Config {
	cfg, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}

func mustIssue(cfg *Config, payload map[string]any) string {
	token, err := IssueToken(cfg, payload)
	if err != nil {
		panic(err)
	}
	return token.Value
}
