package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/imamik/dropletd/internal/droplet"
)

// LivenessPath is the endpoint served by the droplet.
const LivenessPath = "/last_active_time"

// LivenessFetcher returns the last time the droplet reported activity.
// A nil time means the droplet has no activity to report yet.
type LivenessFetcher interface {
	LastActive(ctx context.Context, record droplet.Record) (*time.Time, error)
}

// FetcherFunc adapts a function to LivenessFetcher.
type FetcherFunc func(ctx context.Context, record droplet.Record) (*time.Time, error)

// LastActive calls f.
func (f FetcherFunc) LastActive(ctx context.Context, record droplet.Record) (*time.Time, error) {
	return f(ctx, record)
}

// HTTPFetcher reads GET http://{ip}/last_active_time.
type HTTPFetcher struct {
	Client *http.Client
	// BaseURL overrides http://{ip}, mainly for tests.
	BaseURL string
}

// NewHTTPFetcher returns an HTTPFetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

const lastActiveKey = "last_active_time"

// LastActive implements LivenessFetcher.
func (f *HTTPFetcher) LastActive(ctx context.Context, record droplet.Record) (*time.Time, error) {
	base := f.BaseURL
	if base == "" {
		if record.IPv4 == "" {
			return nil, fmt.Errorf("droplet %s has no public address", record.Name)
		}
		base = "http://" + record.IPv4
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(base, "/")+LivenessPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build liveness request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("liveness request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("liveness endpoint returned %s", resp.Status)
	}

	// A null body decodes into a nil map, so it is caught with a missing key.
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed liveness payload: %w", err)
	}
	raw, ok := body[lastActiveKey]
	if !ok {
		return nil, fmt.Errorf("malformed liveness payload: missing %s", lastActiveKey)
	}
	return parseTimestamp(raw)
}

// parseTimestamp accepts a Unix timestamp in seconds given as a JSON
// number, a numeric string, or null. Only null yields a nil time.
func parseTimestamp(raw json.RawMessage) (*time.Time, error) {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return nil, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, fmt.Errorf("malformed last_active_time: %w", err)
		}
		s = strings.TrimSpace(str)
	}

	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return nil, fmt.Errorf("malformed last_active_time %q", s)
	}

	whole, frac := math.Modf(secs)
	ts := time.Unix(int64(whole), int64(frac*float64(time.Second)))
	return &ts, nil
}
