package droplet

import "time"

// ActionStatus is the lifecycle status of a provider action.
type ActionStatus string

// Action statuses understood by the core. Providers may report other
// strings; anything that is not ActionInProgress is treated as terminal.
const (
	ActionInProgress ActionStatus = "in-progress"
	ActionCompleted  ActionStatus = "completed"
	ActionErrored    ActionStatus = "errored"
)

// Terminal reports whether the action is no longer running.
func (s ActionStatus) Terminal() bool {
	return s != ActionInProgress
}

// Action is a provider-side operation running against a droplet
// (create, power on, firewall attach, ...).
type Action struct {
	ID        string
	Type      string
	Status    ActionStatus
	StartedAt time.Time
}

// Record is a provider-managed virtual machine.
type Record struct {
	ID      string
	Name    string
	Tags    []string
	Region  string
	Image   string // snapshot/image reference the droplet booted from
	Size    string
	IPv4    string
	Status  string
	Actions []Action
	Created time.Time
}

// HasTag reports whether the record carries the given tag.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Snapshot is an image usable as the boot source of a new droplet.
type Snapshot struct {
	ID      string
	Name    string
	Regions []string
}

// Firewall is a provider firewall droplets can be attached to.
type Firewall struct {
	ID   string
	Name string
}

// SSHKey is an account SSH key injected into new droplets.
type SSHKey struct {
	ID          string
	Name        string
	Fingerprint string
}

// CreateRequest holds the parameters for creating a droplet.
type CreateRequest struct {
	Name    string
	Region  string
	Size    string
	Image   string
	SSHKeys []SSHKey
	Tags    []string
}
