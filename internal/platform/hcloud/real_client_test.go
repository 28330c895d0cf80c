package hcloud

import (
	"testing"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/stretchr/testify/assert"

	"github.com/imamik/dropletd/internal/config"
)

func TestNewRealClient_Defaults(t *testing.T) {
	t.Parallel()
	client := NewRealClient("test-token")

	assert.NotNil(t, client.client)
	assert.NotNil(t, client.timeouts)
	assert.NotNil(t, client.actions)
	assert.Empty(t, client.location)
}

func TestNewRealClient_Options(t *testing.T) {
	t.Parallel()
	timeouts := &config.Timeouts{Delete: time.Minute}
	hc := hcloud.NewClient(hcloud.WithToken("other"))

	client := NewRealClient("test-token",
		WithTimeouts(timeouts),
		WithHCloudClient(hc),
		WithLocation("nbg1"),
	)

	assert.Same(t, timeouts, client.timeouts)
	assert.Same(t, hc, client.HCloudClient())
	assert.Equal(t, "nbg1", client.location)
}

func TestTrackedActions(t *testing.T) {
	t.Parallel()
	client := testClientMinimal()

	client.trackActions(7, &hcloud.Action{ID: 1}, nil, &hcloud.Action{ID: 2})
	assert.Equal(t, []int64{1, 2}, client.trackedActions(7))

	client.forgetActions(7)
	assert.Empty(t, client.trackedActions(7))
}

func TestActionStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "in-progress", string(actionStatus(hcloud.ActionStatusRunning)))
	assert.Equal(t, "completed", string(actionStatus(hcloud.ActionStatusSuccess)))
	assert.Equal(t, "errored", string(actionStatus(hcloud.ActionStatusError)))
	assert.Equal(t, "paused", string(actionStatus(hcloud.ActionStatus("paused"))))
}
