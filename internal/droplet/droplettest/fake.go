// Package droplettest provides an in-memory droplet.Cloud for tests.
package droplettest

import (
	"context"
	"fmt"
	"sync"

	"github.com/imamik/dropletd/internal/droplet"
)

// FakeCloud is an in-memory droplet.Cloud. Exported slices seed the
// initial state; the *Func fields override individual operations.
//
// Actions returns successive entries of ActionScript on each call and
// keeps returning the last entry once the script is exhausted. An empty
// script reports a single completed create action.
type FakeCloud struct {
	Droplets     []droplet.Record
	Snapshots    []droplet.Snapshot
	Firewalls    []droplet.Firewall
	Keys         []droplet.SSHKey
	ActionScript [][]droplet.Action

	ListByTagFunc func(ctx context.Context, tag string) ([]droplet.Record, error)
	CreateFunc    func(ctx context.Context, req droplet.CreateRequest) (*droplet.Record, error)
	DeleteFunc    func(ctx context.Context, id string) error
	ActionsFunc   func(ctx context.Context, dropletID string) ([]droplet.Action, error)

	// BeforeCreate runs before a droplet is stored. Tests use it to hold a
	// creation open while concurrent callers race the coordinator.
	BeforeCreate func(req droplet.CreateRequest)

	mu          sync.Mutex
	nextID      int
	actionCalls int
	created     []droplet.CreateRequest
	deleted     []string
	attached    map[string][]string
}

var _ droplet.Cloud = (*FakeCloud)(nil)

// ListByTag implements droplet.Cloud.
func (f *FakeCloud) ListByTag(ctx context.Context, tag string) ([]droplet.Record, error) {
	if f.ListByTagFunc != nil {
		return f.ListByTagFunc(ctx, tag)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []droplet.Record
	for _, d := range f.Droplets {
		if d.HasTag(tag) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ListSnapshots implements droplet.Cloud.
func (f *FakeCloud) ListSnapshots(_ context.Context) ([]droplet.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]droplet.Snapshot(nil), f.Snapshots...), nil
}

// ListFirewalls implements droplet.Cloud.
func (f *FakeCloud) ListFirewalls(_ context.Context) ([]droplet.Firewall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]droplet.Firewall(nil), f.Firewalls...), nil
}

// ListSSHKeys implements droplet.Cloud.
func (f *FakeCloud) ListSSHKeys(_ context.Context) ([]droplet.SSHKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]droplet.SSHKey(nil), f.Keys...), nil
}

// Create implements droplet.Cloud.
func (f *FakeCloud) Create(ctx context.Context, req droplet.CreateRequest) (*droplet.Record, error) {
	if f.BeforeCreate != nil {
		f.BeforeCreate(req)
	}
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, req)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec := droplet.Record{
		ID:     fmt.Sprintf("id-%d", f.nextID),
		Name:   req.Name,
		Tags:   append([]string(nil), req.Tags...),
		Region: req.Region,
		Image:  req.Image,
		Size:   req.Size,
		Status: "new",
	}
	f.created = append(f.created, req)
	f.Droplets = append(f.Droplets, rec)
	return &rec, nil
}

// Get implements droplet.Cloud. Fetched droplets report as active with a
// public address, the way a booted droplet does.
func (f *FakeCloud) Get(_ context.Context, id string) (*droplet.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Droplets {
		if f.Droplets[i].ID == id {
			d := f.Droplets[i]
			d.Status = "active"
			if d.IPv4 == "" {
				d.IPv4 = "203.0.113.10"
			}
			return &d, nil
		}
	}
	return nil, fmt.Errorf("droplet %s not found", id)
}

// Delete implements droplet.Cloud.
func (f *FakeCloud) Delete(ctx context.Context, id string) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.Droplets[:0]
	for _, d := range f.Droplets {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	f.Droplets = kept
	f.deleted = append(f.deleted, id)
	return nil
}

// AddToFirewall implements droplet.Cloud.
func (f *FakeCloud) AddToFirewall(_ context.Context, firewallID, dropletID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attached == nil {
		f.attached = make(map[string][]string)
	}
	f.attached[firewallID] = append(f.attached[firewallID], dropletID)
	return nil
}

// Actions implements droplet.Cloud.
func (f *FakeCloud) Actions(ctx context.Context, dropletID string) ([]droplet.Action, error) {
	if f.ActionsFunc != nil {
		return f.ActionsFunc(ctx, dropletID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actionCalls++
	if len(f.ActionScript) == 0 {
		return []droplet.Action{{ID: "1", Type: "create", Status: droplet.ActionCompleted}}, nil
	}
	idx := f.actionCalls - 1
	if idx >= len(f.ActionScript) {
		idx = len(f.ActionScript) - 1
	}
	return append([]droplet.Action(nil), f.ActionScript[idx]...), nil
}

// Created returns the create requests issued so far.
func (f *FakeCloud) Created() []droplet.CreateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]droplet.CreateRequest(nil), f.created...)
}

// Deleted returns the droplet IDs deleted so far.
func (f *FakeCloud) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Attached returns the droplet IDs attached to a firewall.
func (f *FakeCloud) Attached(firewallID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attached[firewallID]...)
}

// ActionCalls returns how many times Actions was polled.
func (f *FakeCloud) ActionCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actionCalls
}
