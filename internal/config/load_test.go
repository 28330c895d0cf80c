package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
cloud:
  provider: digitalocean
  size: s-2vcpu-4gb
droplet:
  tag: stream
  snapshot: obs-base
  firewall: stream-fw
inactivity:
  threshold: 10m
  poll_interval: 30s
bot:
  prefix: "!"
  stream_key: live
metrics:
  address: ":9090"
`

func TestLoadFromBytes(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromBytes([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "s-2vcpu-4gb", cfg.Cloud.Size)
	assert.Equal(t, "stream", cfg.Droplet.Tag)
	assert.Equal(t, "obs-base", cfg.Droplet.Snapshot)
	assert.Equal(t, "stream-fw", cfg.Droplet.Firewall)
	assert.Equal(t, 10*time.Minute, cfg.Inactivity.Threshold)
	assert.Equal(t, 30*time.Second, cfg.Inactivity.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Inactivity.InitialDelay, "default applied")
	assert.Equal(t, "live", cfg.Bot.StreamKey)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
}

func TestLoadFromBytes_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadFromBytes([]byte("droplet: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromBytes_ValidationFailure(t *testing.T) {
	t.Parallel()

	_, err := LoadFromBytes([]byte("droplet:\n  tag: stream\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "droplet.snapshot is required")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "stream", cfg.Droplet.Tag)
}
