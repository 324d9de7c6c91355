// README: Config loader tests (defaults, YAML file, env overrides).
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAMARIND_CONFIG", "")
	t.Setenv("TAMARIND_HTTP_ADDR", "")
	t.Setenv("TAMARIND_DB_DSN", "")
	t.Setenv("TAMARIND_DISPATCH_POLICY", "")
	t.Setenv("TAMARIND_LIVESYNC_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "first_available", cfg.Dispatch.Policy)
	assert.Equal(t, 12, cfg.Booking.DefaultCapacity)
	assert.Equal(t, 10*time.Second, cfg.LiveSync.Interval)
	assert.Equal(t, 60*time.Second, cfg.Catalog.CacheTTL)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tamarind.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
db:
  dsn: memory
dispatch:
  policy: least_loaded
livesync:
  interval_seconds: 3
booking:
  default_capacity: 8
  rate_limit_per_sec: 2
  rate_limit_burst: 4
catalog:
  cache_ttl_seconds: 30
  sessions:
    - id: morning_class
      label: Morning Class
      base_price: 150000
      currency: THB
      base_capacity: 12
    - id: evening_class
      label: Evening Class
      base_price: 180000
      base_capacity: 10
`), 0o600))

	t.Setenv("TAMARIND_CONFIG", path)
	t.Setenv("TAMARIND_HTTP_ADDR", "")
	t.Setenv("TAMARIND_DB_DSN", "")
	t.Setenv("TAMARIND_DISPATCH_POLICY", "")
	t.Setenv("TAMARIND_LIVESYNC_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.DB.DSN)
	assert.Equal(t, "least_loaded", cfg.Dispatch.Policy)
	assert.Equal(t, 3*time.Second, cfg.LiveSync.Interval)
	assert.Equal(t, 8, cfg.Booking.DefaultCapacity)
	assert.Equal(t, float64(2), cfg.Booking.RateLimitPerSec)
	assert.Equal(t, 30*time.Second, cfg.Catalog.CacheTTL)

	require.Len(t, cfg.Catalog.Sessions, 2)
	assert.Equal(t, "morning_class", cfg.Catalog.Sessions[0].ID)
	assert.Equal(t, int64(150000), cfg.Catalog.Sessions[0].BasePrice)
	assert.Equal(t, 10, cfg.Catalog.Sessions[1].BaseCapacity)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tamarind.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":9090\"\n"), 0o600))

	t.Setenv("TAMARIND_CONFIG", path)
	t.Setenv("TAMARIND_HTTP_ADDR", ":7070")
	t.Setenv("TAMARIND_DB_DSN", "memory")
	t.Setenv("TAMARIND_LIVESYNC_INTERVAL", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "memory", cfg.DB.DSN)
	assert.Equal(t, 5*time.Second, cfg.LiveSync.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("TAMARIND_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
