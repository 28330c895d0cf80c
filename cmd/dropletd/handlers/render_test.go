package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
)

func TestRenderDroplet(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	d := &droplet.Record{
		ID:     "42",
		Name:   "obs-base-stream",
		IPv4:   "203.0.113.5",
		Status: "active",
		Actions: []droplet.Action{
			{Type: "create", Status: droplet.ActionCompleted},
			{Type: "power_on", Status: droplet.ActionErrored},
		},
	}

	out := renderDroplet(cfg, d)
	assert.Contains(t, out, "dropletd: obs-base-stream")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "Region:  -")
	assert.Contains(t, out, "power_on")
	assert.Contains(t, out, "errored")
	assert.NotContains(t, out, "key:")

	cfg.Bot.StreamKey = "live"
	assert.Contains(t, renderDroplet(cfg, d), "key:     live")
}

func TestRenderDestroyed(t *testing.T) {
	assert.Contains(t, renderDestroyed("stream", nil), "no droplets tagged stream")

	out := renderDestroyed("stream", []droplet.Record{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}})
	assert.Contains(t, out, "destroyed a (1)")
	assert.Contains(t, out, "destroyed b (2)")
}
