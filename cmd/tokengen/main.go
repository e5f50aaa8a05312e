package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

// fieldFlags collects repeated -field key=value pairs
type fieldFlags map[string]string

func (f fieldFlags) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (f fieldFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	switch key {
	case jwtauth.IdentityClaim:
		return fmt.Errorf("use -email to set %q", key)
	case "exp", "nbf", "iat":
		return fmt.Errorf("%q is set by the issuer, use -ttl", key)
	}
	f[key] = value
	return nil
}

func main() {
	fields := fieldFlags{}
	var (
		secret = flag.String("secret", "your-256-bit-secret-key-min-32-bytes-here-for-demo!", "ACCESS_TOKEN secret (minimum 32 bytes)")
		email  = flag.String("email", "user@example.com", "Email address (identity claim)")
		ttl    = flag.Duration("ttl", jwtauth.DefaultTTL, "Token validity")
		addr   = flag.String("addr", "http://localhost:5000", "Server base URL for the usage line")
	)
	flag.Var(fields, "field", "Extra claim as key=value (repeatable)")

	flag.Parse()

	cfg, err := jwtauth.NewConfig(
		jwtauth.WithHS256([]byte(*secret)),
		jwtauth.WithTTL(*ttl),
	)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	payload := map[string]any{jwtauth.IdentityClaim: *email}
	for k, v := range fields {
		payload[k] = v
	}

	token, err := jwtauth.IssueToken(cfg, payload)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println("\n=== JWT Token Generated ===")
	fmt.Printf("\nToken: %s\n\n", token.Value)
	fmt.Println("Claims:")
	fmt.Printf("  Email:   %s\n", *email)
	for k, v := range fields {
		fmt.Printf("  %s: %s\n", k, v)
	}
	fmt.Printf("  Expires: %s\n\n", token.ExpiresAt.Format(time.RFC3339))
	fmt.Println("Usage:")
	fmt.Printf("  curl --cookie '%s=%s' %s/cart/%s\n\n", cfg.CookieName(), token.Value, *addr, *email)
}
