package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	path := writeConfig(t, `
[database]
host = "localhost"
port = 5432
dbname = "appointments"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 24, cfg.Booking.CancellationWindowHours)
	assert.False(t, cfg.Booking.SerializeConflictCheck)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "usd", cfg.Payments.Currency)
	assert.Equal(t, "via.placeholder.com", cfg.Features.DemoImageMarker)
	assert.Len(t, cfg.Features.DemoServiceTitles, 3)
	assert.False(t, cfg.Payments.Enabled())
	assert.Contains(t, cfg.Database.DSN(), "dbname=appointments")
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")

	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"

[payments]
success_url = "https://example.test/ok"
cancel_url = "https://example.test/cancel"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk_test_env", cfg.Payments.StripeSecretKey)
	assert.Equal(t, "whsec_env", cfg.Payments.StripeWebhookSecret)
	assert.True(t, cfg.Payments.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")

	path := writeConfig(t, `
[database]
host = "localhost"
dbname = "appointments"
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}
