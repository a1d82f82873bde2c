package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 72*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 500*time.Millisecond, cfg.Outbox.PollInterval)
	assert.Equal(t, int32(5), cfg.Notify.MaxAttempts)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PG_DSN":               "postgres://legacy",
		"STORAGE_DRIVER":       " Memory ",
		"CORS_ALLOWED_ORIGINS": "https://gamezone.co,http://localhost:5173",
		"AUTH_TOKEN_TTL":       "2h",
		"OUTBOX_BATCH_SIZE":    "10",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://legacy", cfg.Postgres.DSN)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, []string{"https://gamezone.co", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Outbox.BatchSize)

	_, err = LoadFrom(map[string]string{"AUTH_TOKEN_TTL": "soon"})
	assert.Error(t, err)
}

func TestValidateAPI(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"no secret", map[string]string{"STORAGE_DRIVER": "memory"}, ErrMissingSecret},
		{"memory", map[string]string{"AUTH_JWT_SECRET": "s", "STORAGE_DRIVER": "memory"}, nil},
		{"postgres without dsn", map[string]string{"AUTH_JWT_SECRET": "s"}, ErrMissingDSN},
		{"postgres", map[string]string{"AUTH_JWT_SECRET": "s", "POSTGRES_DSN": "postgres://x"}, nil},
		{"unknown driver", map[string]string{"AUTH_JWT_SECRET": "s", "STORAGE_DRIVER": "sqlite"}, ErrUnknownDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.env)
			require.NoError(t, err)
			assert.ErrorIs(t, cfg.ValidateAPI(), tt.want)
		})
	}
}
