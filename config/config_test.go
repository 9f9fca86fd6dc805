package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, "/var/billingd", cfg.System.Workdir)
	assert.Equal(t, 1889, cfg.Web.Port)
	assert.Equal(t, 5, cfg.Registry.FlushDelaySec)
}

func TestLoadConfigYamlOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "billingd.yml")
	body := `
system:
  workdir: /tmp/billtest
web:
  port: 9090
registry:
  flush_delay_sec: 2
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/billtest", cfg.System.Workdir)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, 2, cfg.Registry.FlushDelaySec)
	// untouched sections keep defaults
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("BILLINGD_WORKDIR", "/tmp/env-workdir")
	t.Setenv("BILLINGD_WEB_PORT", "7070")
	t.Setenv("BILLINGD_FLUSH_DELAY", "9")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-workdir", cfg.System.Workdir)
	assert.Equal(t, 7070, cfg.Web.Port)
	assert.Equal(t, 9, cfg.Registry.FlushDelaySec)
}

func TestBlobStorePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.System.Workdir = "/data/bill"
	assert.Equal(t, "/data/bill/catalog-store.bolt", cfg.BlobStorePath())
}
