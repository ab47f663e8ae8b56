package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvUser, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "WB", cfg.Invoice.NumberPrefix)
	assert.Equal(t, 30, cfg.Invoice.DefaultDueDays)
	assert.False(t, cfg.Invoice.LegacyMaterialDoubling)
	assert.True(t, cfg.Database.Encrypted)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
invoice:
  number_prefix: SHOP
  margin_rate: 0.4
  legacy_material_doubling: true
tracker:
  chime: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SHOP", cfg.Invoice.NumberPrefix)
	assert.Equal(t, 0.4, cfg.Invoice.MarginRate)
	assert.True(t, cfg.Invoice.LegacyMaterialDoubling)
	assert.False(t, cfg.Tracker.Chime)
	// untouched keys keep their defaults
	assert.Equal(t, 0.35, cfg.Invoice.ElectricityRate)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv(EnvDBPath, "/tmp/other.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvUser, "sam")
	t.Setenv(EnvEncrypted, "false")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sam", cfg.User.Name)
	assert.False(t, cfg.Database.Encrypted)
	assert.Equal(t, filepath.Join("/tmp", "drafts"), cfg.DraftDir())
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv(EnvUser, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.User.Name = "andy"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "andy", loaded.User.Name)
}
