package digitalocean

import (
	"context"
	"fmt"
	"strconv"

	"github.com/digitalocean/godo"

	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/util/retry"
)

// ListByTag returns the droplets carrying tag.
func (c *Client) ListByTag(ctx context.Context, tag string) ([]droplet.Record, error) {
	droplets, err := listAll(ctx, func(ctx context.Context, opt *godo.ListOptions) ([]godo.Droplet, *godo.Response, error) {
		return c.godo.Droplets.ListByTag(ctx, tag, opt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list droplets tagged %s: %w", tag, err)
	}
	out := make([]droplet.Record, 0, len(droplets))
	for i := range droplets {
		out = append(out, toRecord(&droplets[i]))
	}
	return out, nil
}

// Create creates a droplet from req.
func (c *Client) Create(ctx context.Context, req droplet.CreateRequest) (*droplet.Record, error) {
	imageID, err := parseID("image", req.Image)
	if err != nil {
		return nil, err
	}
	keys := make([]godo.DropletCreateSSHKey, 0, len(req.SSHKeys))
	for _, k := range req.SSHKeys {
		id, err := parseID("ssh key", k.ID)
		if err != nil {
			return nil, err
		}
		keys = append(keys, godo.DropletCreateSSHKey{ID: id})
	}

	d, _, err := c.godo.Droplets.Create(ctx, &godo.DropletCreateRequest{
		Name:    req.Name,
		Region:  req.Region,
		Size:    req.Size,
		Image:   godo.DropletCreateImage{ID: imageID},
		SSHKeys: keys,
		Tags:    req.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create droplet %s: %w", req.Name, err)
	}
	rec := toRecord(d)
	return &rec, nil
}

// Get refreshes a droplet by ID.
func (c *Client) Get(ctx context.Context, id string) (*droplet.Record, error) {
	dropletID, err := parseID("droplet", id)
	if err != nil {
		return nil, err
	}
	d, _, err := c.godo.Droplets.Get(ctx, dropletID)
	if err != nil {
		if IsNotFound(err) {
			return nil, droplet.Wrap(droplet.KindResourceMissing, "get", id, err)
		}
		return nil, fmt.Errorf("failed to get droplet %s: %w", id, err)
	}
	rec := toRecord(d)
	return &rec, nil
}

// Delete destroys a droplet. Locked and rate limited responses are
// retried; a droplet that is already gone is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	dropletID, err := parseID("droplet", id)
	if err != nil {
		return err
	}
	if c.timeouts.Delete > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeouts.Delete)
		defer cancel()
	}

	return retry.WithExponentialBackoff(ctx, func() error {
		_, err := c.godo.Droplets.Delete(ctx, dropletID)
		switch {
		case err == nil, IsNotFound(err):
			return nil
		case isResourceLocked(err), IsRateLimited(err):
			return err
		default:
			return retry.Fatal(fmt.Errorf("failed to delete droplet %s: %w", id, err))
		}
	},
		retry.WithMaxAttempts(c.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
}

// Actions returns every action recorded for the droplet.
func (c *Client) Actions(ctx context.Context, id string) ([]droplet.Action, error) {
	dropletID, err := parseID("droplet", id)
	if err != nil {
		return nil, err
	}
	actions, err := listAll(ctx, func(ctx context.Context, opt *godo.ListOptions) ([]godo.Action, *godo.Response, error) {
		return c.godo.Droplets.Actions(ctx, dropletID, opt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list actions for droplet %s: %w", id, err)
	}
	out := make([]droplet.Action, 0, len(actions))
	for i := range actions {
		out = append(out, toAction(&actions[i]))
	}
	return out, nil
}

// ListSnapshots returns every droplet snapshot.
func (c *Client) ListSnapshots(ctx context.Context) ([]droplet.Snapshot, error) {
	snapshots, err := listAll(ctx, c.godo.Snapshots.ListDroplet)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	out := make([]droplet.Snapshot, 0, len(snapshots))
	for _, s := range snapshots {
		out = append(out, droplet.Snapshot{ID: s.ID, Name: s.Name, Regions: s.Regions})
	}
	return out, nil
}

// ListFirewalls returns every firewall.
func (c *Client) ListFirewalls(ctx context.Context) ([]droplet.Firewall, error) {
	firewalls, err := listAll(ctx, c.godo.Firewalls.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list firewalls: %w", err)
	}
	out := make([]droplet.Firewall, 0, len(firewalls))
	for _, fw := range firewalls {
		out = append(out, droplet.Firewall{ID: fw.ID, Name: fw.Name})
	}
	return out, nil
}

// AddToFirewall attaches a droplet to a firewall.
func (c *Client) AddToFirewall(ctx context.Context, firewallID, dropletID string) error {
	id, err := parseID("droplet", dropletID)
	if err != nil {
		return err
	}
	if _, err := c.godo.Firewalls.AddDroplets(ctx, firewallID, id); err != nil {
		return fmt.Errorf("failed to add droplet %s to firewall %s: %w", dropletID, firewallID, err)
	}
	return nil
}

// ListSSHKeys returns the account SSH keys.
func (c *Client) ListSSHKeys(ctx context.Context) ([]droplet.SSHKey, error) {
	keys, err := listAll(ctx, c.godo.Keys.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list ssh keys: %w", err)
	}
	out := make([]droplet.SSHKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, droplet.SSHKey{
			ID:          strconv.Itoa(k.ID),
			Name:        k.Name,
			Fingerprint: k.Fingerprint,
		})
	}
	return out, nil
}
