package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  env: production
database:
  url: postgres://file/db
listing:
  duration_days: 30
  warning_days: 3
  tiers:
    top:
      amount: 25000
      currency: EUR
payments:
  providers:
    stripe:
      checkout_url: https://pay.example.com/checkout
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SERVER_ENV", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN, "окружение перекрывает файл")
	assert.Equal(t, int64(25000), cfg.Listing.Tiers["top"].Amount)
	assert.Equal(t, "https://pay.example.com/checkout", cfg.Payments.Providers["stripe"].CheckoutURL)
	assert.Equal(t, 30*24*time.Hour, cfg.ListingDuration())
	assert.Equal(t, 3*24*time.Hour, cfg.WarningWindow())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "4001")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Listing.DurationDays)
	assert.Len(t, cfg.Listing.Tiers, 3)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.CVMaxSize)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.Listing.Tiers["platinum"] = TierPrice{Amount: 1, Currency: "USD"}
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Listing.DurationDays = 0
	assert.Error(t, cfg.Validate())
}

func TestOAuthProviderEnabled(t *testing.T) {
	assert.False(t, OAuthProvider{ClientID: "id"}.Enabled())
	assert.True(t, OAuthProvider{ClientID: "id", ClientSecret: "secret"}.Enabled())
}
