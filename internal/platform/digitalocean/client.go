package digitalocean

import (
	"context"
	"strconv"
	"time"

	"github.com/digitalocean/godo"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
)

const perPage = 200

var _ droplet.Cloud = (*Client)(nil)

// Client implements droplet.Cloud using the DigitalOcean API.
type Client struct {
	godo     *godo.Client
	timeouts *config.Timeouts
}

// Option configures a Client.
type Option func(*Client)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) Option {
	return func(c *Client) {
		c.timeouts = t
	}
}

// WithGodoClient sets a custom godo client (useful for testing).
func WithGodoClient(gc *godo.Client) Option {
	return func(c *Client) {
		c.godo = gc
	}
}

// New creates a Client authenticated with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		godo:     godo.NewFromToken(token),
		timeouts: config.LoadTimeouts(),
	}
	c.godo.UserAgent = "dropletd " + c.godo.UserAgent
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GodoClient returns the underlying godo client.
func (c *Client) GodoClient() *godo.Client {
	return c.godo
}

// listAll follows DigitalOcean pagination links until the last page.
func listAll[T any](ctx context.Context, list func(context.Context, *godo.ListOptions) ([]T, *godo.Response, error)) ([]T, error) {
	opt := &godo.ListOptions{PerPage: perPage}
	var out []T
	for {
		page, resp, err := list(ctx, opt)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)

		if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
			return out, nil
		}
		current, err := resp.Links.CurrentPage()
		if err != nil {
			return nil, err
		}
		opt.Page = current + 1
	}
}

func toRecord(d *godo.Droplet) droplet.Record {
	rec := droplet.Record{
		ID:     strconv.Itoa(d.ID),
		Name:   d.Name,
		Tags:   d.Tags,
		Status: d.Status,
		Size:   d.SizeSlug,
	}
	if d.Region != nil {
		rec.Region = d.Region.Slug
	}
	if d.Image != nil {
		rec.Image = strconv.Itoa(d.Image.ID)
	}
	if ip, err := d.PublicIPv4(); err == nil {
		rec.IPv4 = ip
	}
	if created, err := time.Parse(time.RFC3339, d.Created); err == nil {
		rec.Created = created
	}
	return rec
}

func toAction(a *godo.Action) droplet.Action {
	out := droplet.Action{
		ID:     strconv.Itoa(a.ID),
		Type:   a.Type,
		Status: droplet.ActionStatus(a.Status),
	}
	if a.StartedAt != nil {
		out.StartedAt = a.StartedAt.Time
	}
	return out
}

func parseID(kind, id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, &invalidIDError{kind: kind, id: id}
	}
	return n, nil
}
