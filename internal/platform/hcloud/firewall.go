package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/dropletd/internal/droplet"
)

// ListFirewalls returns all firewalls.
func (c *RealClient) ListFirewalls(ctx context.Context) ([]droplet.Firewall, error) {
	firewalls, err := c.client.Firewall.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list firewalls: %w", err)
	}
	out := make([]droplet.Firewall, 0, len(firewalls))
	for _, fw := range firewalls {
		out = append(out, droplet.Firewall{ID: strconv.FormatInt(fw.ID, 10), Name: fw.Name})
	}
	return out, nil
}

// AddToFirewall applies a firewall to a server and waits for it to take
// effect.
func (c *RealClient) AddToFirewall(ctx context.Context, firewallID, dropletID string) error {
	fwID, err := parseID("firewall", firewallID)
	if err != nil {
		return err
	}
	serverID, err := parseID("server", dropletID)
	if err != nil {
		return err
	}

	actions, _, err := c.client.Firewall.ApplyResources(ctx, &hcloud.Firewall{ID: fwID}, []hcloud.FirewallResource{{
		Type:   hcloud.FirewallResourceTypeServer,
		Server: &hcloud.FirewallResourceServer{ID: serverID},
	}})
	if err != nil {
		return fmt.Errorf("failed to apply firewall %s: %w", firewallID, err)
	}
	if len(actions) > 0 {
		if err := c.client.Action.WaitFor(ctx, actions...); err != nil {
			return fmt.Errorf("failed to wait for firewall %s: %w", firewallID, err)
		}
	}
	return nil
}
