package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTmpConfig writes a temporary YAML config file and returns its path.
func writeTmpConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 48000.0, cfg.SampRate)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9092", cfg.Metrics.Listen)
	assert.Equal(t, "30s", cfg.Sweep.Interval)
	assert.False(t, cfg.Rig.Enabled)
}

func TestLoadRejectsNonPositiveSampRate(t *testing.T) {
	path := writeTmpConfig(t, "samp_rate: 0\n")
	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeTmpConfig(t, `
samp_rate: 96000
log:
  level: debug
metrics:
  enabled: false
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 96000.0, cfg.SampRate)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("CHANINSPECTORD_LOG_LEVEL", "warn")

	path := writeTmpConfig(t, "log:\n  level: debug\n")
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFlagOverridesEnvAndFile(t *testing.T) {
	t.Setenv("CHANINSPECTORD_LOG_LEVEL", "warn")

	path := writeTmpConfig(t, "log:\n  level: debug\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--log-level=error"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
}

func TestBindFlagsCoversEveryFlagKey(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)

	for name := range flagKeys {
		assert.NotNil(t, flags.Lookup(name), "flagKeys references unregistered flag %q", name)
	}
}
