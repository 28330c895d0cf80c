package droplet

import "context"

// Cloud is the cloud resource collaborator consumed by the provisioning
// coordinator. Implementations return (nil, nil) style "not found" results
// only where documented; all other failures are returned as errors.
type Cloud interface {
	// ListByTag returns every droplet carrying the tag.
	ListByTag(ctx context.Context, tag string) ([]Record, error)
	// ListSnapshots returns every droplet snapshot visible to the account.
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	// ListFirewalls returns every firewall visible to the account.
	ListFirewalls(ctx context.Context) ([]Firewall, error)
	// ListSSHKeys returns the account SSH keys.
	ListSSHKeys(ctx context.Context) ([]SSHKey, error)

	// Create issues a droplet create request and returns the new droplet.
	// The droplet is usually not booted yet; poll Actions for progress.
	Create(ctx context.Context, req CreateRequest) (*Record, error)
	// Get refreshes the full state of a droplet.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete destroys a droplet. Deleting a droplet that is already gone
	// is not an error.
	Delete(ctx context.Context, id string) error

	// AddToFirewall attaches a droplet to a firewall.
	AddToFirewall(ctx context.Context, firewallID, dropletID string) error
	// Actions returns the actions recorded for a droplet with their
	// current status.
	Actions(ctx context.Context, dropletID string) ([]Action, error)
}
