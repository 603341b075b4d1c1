package config

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "beanbrew/internal/log"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "LOG_FILE", "LOG_LEVEL", "TIMEZONE", "SEED_DEMO", "ADMIN_PASSWORD", "TEMPLATE_DIR"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "beanbrew.db", cfg.DBDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "./web/templates", cfg.TemplateDir)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TIMEZONE", "Europe/Lisbon")
	t.Setenv("SEED_DEMO", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.SeedDemo)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SEED_DEMO", "maybe")
	_, err = Load()
	assert.Error(t, err)
}
