package provisioning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/semaphore"
	"k8s.io/utils/clock"

	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/util/async"
	"github.com/imamik/dropletd/internal/util/naming"
)

// ProgressFunc receives human-readable progress updates during creation.
type ProgressFunc func(text string)

// CreateParams describes the droplet CreateOrGet should return.
type CreateParams struct {
	Tag      string
	Snapshot string
	// Firewall is optional; when set the new droplet is attached to it.
	Firewall string
	Progress ProgressFunc
}

// Coordinator creates, finds and destroys tagged droplets. It is safe for
// concurrent use; at most one creation runs at a time.
type Coordinator struct {
	cloud droplet.Cloud

	lock *semaphore.Weighted

	regMu   sync.Mutex
	pending map[string]struct{}

	size                string
	fallbackRegion      string
	pendingPollInterval time.Duration
	pendingPollAttempts int
	actionPollInterval  time.Duration
	actionPollTimeout   time.Duration
	deleteTimeout       time.Duration
	deleteConcurrency   int

	clock clock.Clock
	log   logr.Logger
}

// NewCoordinator returns a Coordinator backed by cloud.
func NewCoordinator(cloud droplet.Cloud, opts ...Option) *Coordinator {
	c := &Coordinator{
		cloud:               cloud,
		lock:                semaphore.NewWeighted(1),
		pending:             make(map[string]struct{}),
		pendingPollInterval: DefaultPendingPollInterval,
		pendingPollAttempts: DefaultPendingPollAttempts,
		actionPollInterval:  DefaultActionPollInterval,
		deleteConcurrency:   DefaultDeleteConcurrency,
		clock:               clock.RealClock{},
		log:                 logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindExisting returns the first droplet carrying tag, or nil.
func (c *Coordinator) FindExisting(ctx context.Context, tag string) (*droplet.Record, error) {
	droplets, err := c.cloud.ListByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to list droplets tagged %s: %w", tag, err)
	}
	if len(droplets) == 0 {
		return nil, nil
	}
	if len(droplets) > 1 {
		c.log.Info("more than one droplet carries the tag, using the first", "tag", tag, "count", len(droplets))
	}
	d := droplets[0]
	return &d, nil
}

// FindSnapshot returns the snapshot named name, or nil.
func (c *Coordinator) FindSnapshot(ctx context.Context, name string) (*droplet.Snapshot, error) {
	snapshots, err := c.cloud.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	for i := range snapshots {
		if snapshots[i].Name == name {
			return &snapshots[i], nil
		}
	}
	return nil, nil
}

// FindFirewall returns the firewall named name, or nil.
func (c *Coordinator) FindFirewall(ctx context.Context, name string) (*droplet.Firewall, error) {
	firewalls, err := c.cloud.ListFirewalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list firewalls: %w", err)
	}
	for i := range firewalls {
		if firewalls[i].Name == name {
			return &firewalls[i], nil
		}
	}
	return nil, nil
}

// Status returns the droplet carrying tag with its current actions.
func (c *Coordinator) Status(ctx context.Context, tag string) (*droplet.Record, error) {
	d, err := c.FindExisting(ctx, tag)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, droplet.Errorf(droplet.KindResourceMissing, "status", tag, "there are no droplets tagged with %s", tag)
	}
	actions, err := c.cloud.Actions(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load actions of %s: %w", d.Name, err)
	}
	d.Actions = actions
	return d, nil
}

// Pending reports whether a creation for name has been started and the
// droplet not yet destroyed.
func (c *Coordinator) Pending(name string) bool {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	_, ok := c.pending[name]
	return ok
}

func (c *Coordinator) markPending(name string) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	c.pending[name] = struct{}{}
}

func (c *Coordinator) clearPending(name string) {
	c.regMu.Lock()
	defer c.regMu.Unlock()
	delete(c.pending, name)
}

// CreateOrGet returns the droplet for p.Tag, creating it from p.Snapshot
// when none exists. It fails with droplet.ErrResourceLocked when another
// creation is in flight, droplet.ErrResourceMissing when the snapshot,
// firewall or a pending droplet cannot be found, and droplet.ErrBootFailed
// when the provider reports the boot as errored.
func (c *Coordinator) CreateOrGet(ctx context.Context, p CreateParams) (*droplet.Record, error) {
	name := naming.Droplet(p.Snapshot, p.Tag)
	if !c.lock.TryAcquire(1) {
		recordCreateMetric(resultLocked, 0)
		return nil, droplet.Errorf(droplet.KindResourceLocked, "create", name, "droplet %s is already being created", name)
	}
	defer c.lock.Release(1)

	start := c.clock.Now()
	d, result, err := c.createOrGet(ctx, name, p)
	recordCreateMetric(result, c.clock.Since(start).Seconds())
	return d, err
}

func (c *Coordinator) createOrGet(ctx context.Context, name string, p CreateParams) (*droplet.Record, string, error) {
	log := c.log.WithValues("droplet", name, "tag", p.Tag)

	existing, err := c.FindExisting(ctx, p.Tag)
	if err != nil {
		return nil, resultError, err
	}
	if existing != nil {
		log.V(1).Info("droplet already exists", "id", existing.ID)
		return existing, resultExisting, nil
	}

	if c.Pending(name) {
		log.Info("creation already started, waiting for droplet to appear")
		d, err := c.awaitPending(ctx, name, p.Tag)
		if err != nil {
			return nil, resultFor(err), err
		}
		return d, resultExisting, nil
	}

	snapshot, err := c.FindSnapshot(ctx, p.Snapshot)
	if err != nil {
		return nil, resultError, err
	}
	if snapshot == nil {
		err := droplet.Errorf(droplet.KindResourceMissing, "create", p.Snapshot, "snapshot %s is missing", p.Snapshot)
		return nil, resultMissing, err
	}

	keys, err := c.cloud.ListSSHKeys(ctx)
	if err != nil {
		return nil, resultError, fmt.Errorf("failed to list ssh keys: %w", err)
	}

	region := c.fallbackRegion
	if len(snapshot.Regions) > 0 {
		region = snapshot.Regions[0]
	}
	req := droplet.CreateRequest{
		Name:    name,
		Region:  region,
		Size:    c.size,
		Image:   snapshot.ID,
		SSHKeys: keys,
		Tags:    []string{p.Tag},
	}

	c.markPending(name)
	progress(p.Progress, fmt.Sprintf("Creating droplet %s in %s...", name, region))
	log.Info("creating droplet", "snapshot", snapshot.Name, "region", region, "size", c.size)

	created, err := c.cloud.Create(ctx, req)
	if err != nil {
		// The provider rejected the request, so nothing is pending.
		c.clearPending(name)
		return nil, resultError, fmt.Errorf("failed to create droplet %s: %w", name, err)
	}
	log = log.WithValues("id", created.ID)

	if p.Firewall != "" {
		fw, err := c.FindFirewall(ctx, p.Firewall)
		if err != nil {
			return nil, resultError, err
		}
		if fw == nil {
			err := droplet.Errorf(droplet.KindResourceMissing, "create", p.Firewall, "firewall %s is missing", p.Firewall)
			return nil, resultMissing, err
		}
		if err := c.cloud.AddToFirewall(ctx, fw.ID, created.ID); err != nil {
			return nil, resultError, fmt.Errorf("failed to attach %s to firewall %s: %w", name, fw.Name, err)
		}
		log.V(1).Info("attached to firewall", "firewall", fw.Name)
	}

	progress(p.Progress, fmt.Sprintf("Droplet %s created, waiting for it to boot...", name))

	status, err := c.awaitActions(ctx, created.ID)
	if err != nil {
		return nil, resultError, err
	}
	if status == droplet.ActionErrored {
		err := droplet.Errorf(droplet.KindBootFailed, "create", name, "droplet %s failed to boot", name)
		return nil, resultBootFailed, err
	}

	d, err := c.cloud.Get(ctx, created.ID)
	if err != nil {
		return nil, resultError, fmt.Errorf("failed to refresh droplet %s: %w", name, err)
	}
	log.Info("droplet ready", "ip", d.IPv4, "status", d.Status)
	return d, resultCreated, nil
}

// awaitPending polls for a droplet whose creation an earlier call started.
func (c *Coordinator) awaitPending(ctx context.Context, name, tag string) (*droplet.Record, error) {
	for attempt := 0; attempt < c.pendingPollAttempts; attempt++ {
		d, err := c.FindExisting(ctx, tag)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
		if err := c.sleep(ctx, c.pendingPollInterval); err != nil {
			return nil, err
		}
	}
	return nil, droplet.Errorf(droplet.KindResourceMissing, "create", name,
		"droplet %s did not appear after %d polls", name, c.pendingPollAttempts)
}

// awaitActions polls the droplet's actions until none is in progress and
// returns the terminal status observed.
func (c *Coordinator) awaitActions(ctx context.Context, id string) (droplet.ActionStatus, error) {
	if c.actionPollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.actionPollTimeout)
		defer cancel()
	}

	for {
		actions, err := c.cloud.Actions(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to poll actions of droplet %s: %w", id, err)
		}
		if status, done := terminalStatus(actions); done {
			return status, nil
		}
		if err := c.sleep(ctx, c.actionPollInterval); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return "", fmt.Errorf("droplet %s still booting after %s: %w", id, c.actionPollTimeout, err)
			}
			return "", err
		}
	}
}

// terminalStatus reports whether no action is in progress and, if so, the
// status to act on. An errored action wins over any other.
func terminalStatus(actions []droplet.Action) (droplet.ActionStatus, bool) {
	status := droplet.ActionCompleted
	if len(actions) > 0 {
		status = actions[0].Status
	}
	for _, a := range actions {
		if !a.Status.Terminal() {
			return "", false
		}
		if a.Status == droplet.ActionErrored {
			status = droplet.ActionErrored
		}
	}
	return status, true
}

// DestroyTagged deletes every droplet carrying tag and returns them. No
// match is not an error.
func (c *Coordinator) DestroyTagged(ctx context.Context, tag string) ([]droplet.Record, error) {
	droplets, err := c.cloud.ListByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to list droplets tagged %s: %w", tag, err)
	}
	if len(droplets) == 0 {
		return []droplet.Record{}, nil
	}

	if c.deleteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deleteTimeout)
		defer cancel()
	}

	var (
		mu        sync.Mutex
		destroyed []droplet.Record
	)
	tasks := make([]async.Task, 0, len(droplets))
	for _, d := range droplets {
		tasks = append(tasks, async.Task{
			Name: d.Name,
			Func: func(ctx context.Context) error {
				if err := c.cloud.Delete(ctx, d.ID); err != nil {
					return err
				}
				c.clearPending(d.Name)
				mu.Lock()
				destroyed = append(destroyed, d)
				mu.Unlock()
				c.log.Info("droplet destroyed", "droplet", d.Name, "id", d.ID, "tag", tag)
				return nil
			},
		})
	}

	err = async.RunParallel(ctx, tasks, c.deleteConcurrency)
	recordDestroyMetric(len(destroyed))

	// Keep the provider's listing order regardless of completion order.
	ordered := make([]droplet.Record, 0, len(destroyed))
	for _, d := range droplets {
		for _, x := range destroyed {
			if x.ID == d.ID {
				ordered = append(ordered, d)
				break
			}
		}
	}
	if err != nil {
		return ordered, fmt.Errorf("failed to destroy droplets tagged %s: %w", tag, err)
	}
	return ordered, nil
}

func (c *Coordinator) sleep(ctx context.Context, d time.Duration) error {
	t := c.clock.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}

func progress(fn ProgressFunc, text string) {
	if fn != nil {
		fn(text)
	}
}
