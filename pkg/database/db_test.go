package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_MAX_CONNS", "0")
	t.Setenv("DATABASE_TIMEZONE", "")
	cfg := ConfigFromEnv()
	assert.Equal(t, defaultDSN, cfg.DSN)
	assert.Equal(t, 5, cfg.MaxConns)
	assert.Equal(t, "UTC", cfg.TimeZone)

	t.Setenv("DATABASE_URL", "postgres://u:p@db/x")
	t.Setenv("DATABASE_MAX_CONNS", "20")
	t.Setenv("DATABASE_TIMEZONE", "Europe/Oslo")
	cfg = ConfigFromEnv()
	assert.Equal(t, "postgres://u:p@db/x", cfg.DSN)
	assert.Equal(t, 20, cfg.MaxConns)
	assert.Equal(t, "Europe/Oslo", cfg.TimeZone)
}

func TestWithRuntimeParam(t *testing.T) {
	tests := []struct {
		name, dsn, value, want string
	}{
		{"url keeps existing query", "postgres://u:p@db:5432/jobs?sslmode=disable", "UTC", "postgres://u:p@db:5432/jobs?sslmode=disable&timezone=UTC"},
		{"url escapes value", "postgresql://db/jobs", "America/New_York", "postgresql://db/jobs?timezone=America%2FNew_York"},
		{"keyword form", "host=db dbname=jobs", "UTC", "host=db dbname=jobs timezone='UTC'"},
		{"keyword form quotes", "host=db", `it's`, `host=db timezone='it\'s'`},
		{"empty value leaves dsn", "host=db", "", "host=db"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := withRuntimeParam(tt.dsn, "timezone", tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithRuntimeParam_BadURL(t *testing.T) {
	_, err := withRuntimeParam("postgres://db:port/x", "timezone", "UTC")
	assert.Error(t, err)
}
