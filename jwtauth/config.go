package jwtauth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultCookieName is the cookie that carries the credential.
	DefaultCookieName = "token"

	// DefaultTTL is the lifetime embedded into every issued credential.
	DefaultTTL = time.Hour

	// MaxCookieSize bounds name=value of the credential cookie. Browsers
	// drop anything larger without telling the server.
	MaxCookieSize = 4096

	// IdentityClaim is the claim every credential must carry; it is also the
	// owner key compared by the access guard.
	IdentityClaim = "email"
)

// Config holds immutable configuration for issuing and verifying credentials
type Config struct {
	secret          []byte
	signingMethod   jwt.SigningMethod
	ttl             time.Duration
	clockSkewLeeway time.Duration
	cookieName      string
	cookieSecure    bool
	cookieSameSite  http.SameSite
	bearerFallback  bool
	logger          *slog.Logger
	now             func() time.Time
}

// ConfigOption is a functional option for configuring the middleware
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		signingMethod: jwt.SigningMethodHS256,
		ttl:           DefaultTTL,
		cookieName:    DefaultCookieName,
		now:           time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if len(cfg.secret) == 0 {
		return nil, NewValidationError(ErrConfigError, "a signing secret must be configured (use WithHS256)", nil)
	}
	if cfg.cookieName == "" {
		return nil, NewValidationError(ErrConfigError, "cookie name cannot be empty", nil)
	}

	return cfg, nil
}

// WithHS256 configures HMAC-SHA256 signing and validation with the given secret
func WithHS256(secret []byte) ConfigOption {
	return func(c *Config) error {
		if len(secret) < 32 {
			return fmt.Errorf("HS256 secret must be at least 32 bytes (256 bits), got %d bytes", len(secret))
		}
		c.secret = append([]byte(nil), secret...)
		return nil
	}
}

// WithTTL sets the lifetime of issued credentials
func WithTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) error {
		if ttl <= 0 {
			return fmt.Errorf("token ttl must be positive, got %v", ttl)
		}
		c.ttl = ttl
		return nil
	}
}

// WithClockSkew sets the clock skew tolerance for exp/nbf validation.
// The default is zero: a credential is rejected the moment its expiry passes.
func WithClockSkew(skew time.Duration) ConfigOption {
	return func(c *Config) error {
		if skew < 0 {
			return fmt.Errorf("clock skew must be non-negative, got %v", skew)
		}
		c.clockSkewLeeway = skew
		return nil
	}
}

// WithCookie overrides the name of the credential cookie
func WithCookie(cookieName string) ConfigOption {
	return func(c *Config) error {
		c.cookieName = cookieName
		return nil
	}
}

// WithSecureCookie sets the Secure flag on the credential cookie
func WithSecureCookie(secure bool) ConfigOption {
	return func(c *Config) error {
		c.cookieSecure = secure
		return nil
	}
}

// WithSameSite sets the SameSite attribute on the credential cookie
func WithSameSite(mode http.SameSite) ConfigOption {
	return func(c *Config) error {
		c.cookieSameSite = mode
		return nil
	}
}

// WithBearerFallback also accepts "Authorization: Bearer <token>" when the
// cookie is absent.
func WithBearerFallback() ConfigOption {
	return func(c *Config) error {
		c.bearerFallback = true
		return nil
	}
}

// WithLogger sets a structured logger for security events
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithClock replaces the time source used for issuance and expiry checks
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

func (c *Config) Algorithm() string {
	return c.signingMethod.Alg()
}

func (c *Config) TTL() time.Duration {
	return c.ttl
}

func (c *Config) ClockSkewLeeway() time.Duration {
	return c.clockSkewLeeway
}

func (c *Config) CookieName() string {
	return c.cookieName
}

func (c *Config) SecureCookie() bool {
	return c.cookieSecure
}

func (c *Config) Logger() *slog.Logger {
	return c.logger
}

// Now returns the current time according to the configured clock
func (c *Config) Now() time.Time {
	return c.now()
}
