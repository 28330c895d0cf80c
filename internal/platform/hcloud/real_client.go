package hcloud

import (
	"sync"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/dropletd/internal/config"
)

// RealClient implements droplet.Cloud using the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
	location string

	mu      sync.Mutex
	actions map[int64][]int64 // server ID -> action IDs from create
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ClientOption {
	return func(c *RealClient) {
		c.client = hc
	}
}

// WithLocation sets the location used when a create request has no region.
func WithLocation(location string) ClientOption {
	return func(c *RealClient) {
		c.location = location
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{
		client:   hcloud.NewClient(hcloud.WithToken(token), hcloud.WithApplication("dropletd", "")),
		timeouts: config.LoadTimeouts(),
		actions:  make(map[int64][]int64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HCloudClient returns the underlying hcloud.Client.
func (c *RealClient) HCloudClient() *hcloud.Client {
	return c.client
}

func (c *RealClient) trackActions(serverID int64, actions ...*hcloud.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range actions {
		if a != nil {
			c.actions[serverID] = append(c.actions[serverID], a.ID)
		}
	}
}

func (c *RealClient) trackedActions(serverID int64) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.actions[serverID]...)
}

func (c *RealClient) forgetActions(serverID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.actions, serverID)
}
