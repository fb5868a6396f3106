package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/utilities"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required")

// RateLimit bounds requests per client IP within Window. TrustProxy takes
// the client IP from X-Forwarded-For; enable it only behind a proxy that
// sets the header.
type RateLimit struct {
	Max        int
	Window     time.Duration
	TrustProxy bool
}

type Config struct {
	HTTPAddr      string
	APIPrefix     string
	StoreDriver   string
	JWTSecret     []byte
	JWTLifetime   time.Duration
	DemoUserID    int64
	AuthRateLimit RateLimit
	SnowflakeNode int64
	Database      database.Config
	Log           utilities.Config
}

// FromEnv assembles the service configuration. Callers load .env first.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:      envOr("HTTP_ADDR", "0.0.0.0:3000"),
		APIPrefix:     strings.TrimRight(envOr("API_PREFIX", "/api/v1"), "/"),
		StoreDriver:   strings.ToLower(envOr("STORE_DRIVER", StoreDriverPostgres)),
		SnowflakeNode: utilities.NodeFromEnv(),
		Database:      database.ConfigFromEnv(),
		Log:           utilities.ConfigFromEnv(),
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER: unknown driver %q", cfg.StoreDriver)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, ErrMissingSecret
	}
	cfg.JWTSecret = []byte(secret)

	lifetime, err := ParseLifetime(envOr("JWT_LIFETIME", "30d"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_LIFETIME: %w", err)
	}
	cfg.JWTLifetime = lifetime

	if v := os.Getenv("DEMO_USER_ID"); v != "" {
		id, err := utilities.ParseID(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEMO_USER_ID: %w", err)
		}
		cfg.DemoUserID = id
	}

	cfg.AuthRateLimit.Max = 10
	if v := os.Getenv("AUTH_RATE_LIMIT_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("AUTH_RATE_LIMIT_MAX: %q is not a positive integer", v)
		}
		cfg.AuthRateLimit.Max = n
	}
	cfg.AuthRateLimit.Window = 15 * time.Minute
	if v := os.Getenv("AUTH_RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("AUTH_RATE_LIMIT_WINDOW: %q is not a positive duration", v)
		}
		cfg.AuthRateLimit.Window = d
	}
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("TRUST_PROXY: %q is not a boolean", v)
		}
		cfg.AuthRateLimit.TrustProxy = b
	}
	return cfg, nil
}

// ParseLifetime accepts Go durations plus a whole-day form such as "30d".
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid lifetime %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid lifetime %q", s)
	}
	return d, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
