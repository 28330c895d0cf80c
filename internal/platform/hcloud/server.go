package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/util/labels"
)

// ListByTag returns the servers labelled with tag.
func (c *RealClient) ListByTag(ctx context.Context, tag string) ([]droplet.Record, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.SelectorForTag(tag)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	out := make([]droplet.Record, 0, len(servers))
	for _, s := range servers {
		out = append(out, toRecord(s))
	}
	return out, nil
}

// Create creates a server from req. The first tag becomes the tag label.
func (c *RealClient) Create(ctx context.Context, req droplet.CreateRequest) (*droplet.Record, error) {
	imageID, err := parseID("image", req.Image)
	if err != nil {
		return nil, err
	}

	keys := make([]*hcloud.SSHKey, 0, len(req.SSHKeys))
	for _, k := range req.SSHKeys {
		id, err := parseID("ssh key", k.ID)
		if err != nil {
			return nil, err
		}
		keys = append(keys, &hcloud.SSHKey{ID: id, Name: k.Name})
	}

	tag := ""
	if len(req.Tags) > 0 {
		tag = req.Tags[0]
	}
	location := req.Region
	if location == "" {
		location = c.location
	}

	opts := hcloud.ServerCreateOpts{
		Name:       req.Name,
		ServerType: &hcloud.ServerType{Name: req.Size},
		Image:      &hcloud.Image{ID: imageID},
		SSHKeys:    keys,
		Labels:     labels.NewLabelBuilder(tag).Build(),
	}
	if location != "" {
		opts.Location = &hcloud.Location{Name: location}
	}

	result, _, err := c.client.Server.Create(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	c.trackActions(result.Server.ID, result.Action)
	c.trackActions(result.Server.ID, result.NextActions...)

	rec := toRecord(result.Server)
	return &rec, nil
}

// Get refreshes a server by ID.
func (c *RealClient) Get(ctx context.Context, id string) (*droplet.Record, error) {
	serverID, err := parseID("server", id)
	if err != nil {
		return nil, err
	}
	s, _, err := c.client.Server.GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %s: %w", id, err)
	}
	if s == nil {
		return nil, droplet.Errorf(droplet.KindResourceMissing, "get", id, "server %s not found", id)
	}
	rec := toRecord(s)
	return &rec, nil
}

// Delete deletes a server. A server that is already gone is not an error.
func (c *RealClient) Delete(ctx context.Context, id string) error {
	serverID, err := parseID("server", id)
	if err != nil {
		return err
	}
	err = (&DeleteOperation[*hcloud.Server]{
		ID:           serverID,
		ResourceType: "server",
		Get:          c.client.Server.GetByID,
		Delete: func(ctx context.Context, s *hcloud.Server) (*hcloud.Response, error) {
			_, resp, err := c.client.Server.DeleteWithResult(ctx, s)
			return resp, err
		},
	}).Execute(ctx, c)
	if err != nil {
		return err
	}
	c.forgetActions(serverID)
	return nil
}

// Actions returns the actions recorded when the server was created,
// refreshed from the API.
func (c *RealClient) Actions(ctx context.Context, id string) ([]droplet.Action, error) {
	serverID, err := parseID("server", id)
	if err != nil {
		return nil, err
	}
	ids := c.trackedActions(serverID)
	out := make([]droplet.Action, 0, len(ids))
	for _, actionID := range ids {
		a, _, err := c.client.Action.GetByID(ctx, actionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get action %d: %w", actionID, err)
		}
		if a != nil {
			out = append(out, toAction(a))
		}
	}
	return out, nil
}
