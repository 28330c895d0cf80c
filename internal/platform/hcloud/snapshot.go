package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/dropletd/internal/droplet"
)

// ListSnapshots returns the project's snapshot images. Snapshots have no
// name on Hetzner, so the description is used. Snapshots are global, so
// no regions are reported.
func (c *RealClient) ListSnapshots(ctx context.Context) ([]droplet.Snapshot, error) {
	images, err := c.client.Image.AllWithOpts(ctx, hcloud.ImageListOpts{
		Type: []hcloud.ImageType{hcloud.ImageTypeSnapshot},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	out := make([]droplet.Snapshot, 0, len(images))
	for _, img := range images {
		name := img.Description
		if name == "" {
			name = img.Name
		}
		out = append(out, droplet.Snapshot{
			ID:   strconv.FormatInt(img.ID, 10),
			Name: name,
		})
	}
	return out, nil
}
