package jwtauth

import "time"

// Claims represents a verified identity claim
type Claims struct {
	Email     string         // Identity (email claim), the owner key for guarded routes
	IssuedAt  time.Time      // Issue time (iat claim)
	ExpiresAt time.Time      // Expiration time (exp claim)
	Fields    map[string]any // Caller-supplied payload exactly as issued, email included
}

// Get returns a payload field by name
func (c *Claims) Get(name string) (any, bool) {
	v, ok := c.Fields[name]
	return v, ok
}

// reservedClaims are set by the issuer and never taken from a payload
var reservedClaims = map[string]bool{
	"exp": true,
	"nbf": true,
}

// issuerClaims are stripped from Fields when a credential is decoded
var issuerClaims = map[string]bool{
	"exp": true,
	"iat": true,
}
