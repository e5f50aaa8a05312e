package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

const (
	defaultPort       = "5000"
	defaultMongoHost  = "cluster0.a27cvav.mongodb.net"
	defaultDatabase   = "ProductsDB"
	defaultSQLitePath = "var/storefront.db"
	defaultOrigin     = "http://localhost:5173"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	AccessToken    string
	TokenTTL       time.Duration
	CookieSecure   bool
	StoreDriver    string
	MongoURI       string
	MongoDatabase  string
	SQLitePath     string
	AllowedOrigins []string
	LogLevel       slog.Level
}

// Load reads the given .env files (or ./.env when none are named) into the
// environment, then builds the config. Missing files are not an error;
// variables already set in the environment win.
func Load(files ...string) (Server, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Server{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:          ":" + getenv("PORT", defaultPort),
		AccessToken:   os.Getenv("ACCESS_TOKEN"),
		StoreDriver:   strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		MongoDatabase: getenv("MONGO_DATABASE", defaultDatabase),
		SQLitePath:    getenv("SQLITE_PATH", defaultSQLitePath),
	}

	if cfg.AccessToken == "" {
		return Server{}, errors.New("ACCESS_TOKEN is required")
	}
	if len(cfg.AccessToken) < 32 {
		return Server{}, fmt.Errorf("ACCESS_TOKEN must be at least 32 bytes, got %d", len(cfg.AccessToken))
	}

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "1h"))
	if err != nil {
		return Server{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if ttl <= 0 {
		return Server{}, fmt.Errorf("TOKEN_TTL must be positive, got %v", ttl)
	}
	cfg.TokenTTL = ttl

	if cfg.CookieSecure, err = strconv.ParseBool(getenv("COOKIE_SECURE", "false")); err != nil {
		return Server{}, fmt.Errorf("COOKIE_SECURE: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return Server{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	for _, origin := range strings.Split(getenv("CORS_ORIGINS", defaultOrigin), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	switch cfg.StoreDriver {
	case DriverMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			user, key := os.Getenv("MONGO_USER"), os.Getenv("MONGO_KEY")
			if user == "" || key == "" {
				return Server{}, errors.New("MONGO_URI or MONGO_USER and MONGO_KEY are required for the mongo driver")
			}
			cfg.MongoURI = atlasURI(user, key, getenv("MONGO_HOST", defaultMongoHost))
		}
	case DriverSQLite, DriverMemory:
	default:
		return Server{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// atlasURI builds an SRV connection string for a MongoDB Atlas cluster.
func atlasURI(user, key, host string) string {
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, key),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
