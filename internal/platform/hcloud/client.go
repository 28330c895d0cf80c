package hcloud

import (
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/dropletd/internal/droplet"
	"github.com/imamik/dropletd/internal/util/labels"
)

var _ droplet.Cloud = (*RealClient)(nil)

// toRecord converts a server into a droplet record.
func toRecord(s *hcloud.Server) droplet.Record {
	rec := droplet.Record{
		ID:      strconv.FormatInt(s.ID, 10),
		Name:    s.Name,
		Tags:    labels.Tags(s.Labels),
		Status:  string(s.Status),
		Created: s.Created,
	}
	if s.Location != nil {
		rec.Region = s.Location.Name
	}
	if s.ServerType != nil {
		rec.Size = s.ServerType.Name
	}
	if s.Image != nil {
		rec.Image = strconv.FormatInt(s.Image.ID, 10)
	}
	if ip := s.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		rec.IPv4 = ip.String()
	}
	return rec
}

// toAction converts a Hetzner action into a droplet action.
func toAction(a *hcloud.Action) droplet.Action {
	return droplet.Action{
		ID:        strconv.FormatInt(a.ID, 10),
		Type:      a.Command,
		Status:    actionStatus(a.Status),
		StartedAt: a.Started,
	}
}

func actionStatus(s hcloud.ActionStatus) droplet.ActionStatus {
	switch s {
	case hcloud.ActionStatusRunning:
		return droplet.ActionInProgress
	case hcloud.ActionStatusSuccess:
		return droplet.ActionCompleted
	case hcloud.ActionStatusError:
		return droplet.ActionErrored
	default:
		return droplet.ActionStatus(s)
	}
}

func parseID(kind, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", kind, id)
	}
	return n, nil
}
