package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/imamik/dropletd/internal/droplet"
)

// ListSSHKeys returns every SSH key in the project.
func (c *RealClient) ListSSHKeys(ctx context.Context) ([]droplet.SSHKey, error) {
	keys, err := c.client.SSHKey.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ssh keys: %w", err)
	}
	out := make([]droplet.SSHKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, droplet.SSHKey{
			ID:          strconv.FormatInt(k.ID, 10),
			Name:        k.Name,
			Fingerprint: k.Fingerprint,
		})
	}
	return out, nil
}
