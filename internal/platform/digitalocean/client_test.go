package digitalocean

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/digitalocean/godo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/droplet"
)

type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{server: server, mux: mux}
}

func (ts *testServer) client(t *testing.T) *Client {
	gc, err := godo.New(ts.server.Client(), godo.SetBaseURL(ts.server.URL+"/"))
	require.NoError(t, err)
	return New("test-token",
		WithGodoClient(gc),
		WithTimeouts(&config.Timeouts{
			Delete:            10 * time.Second,
			RetryMaxAttempts:  3,
			RetryInitialDelay: time.Millisecond,
		}),
	)
}

func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

func jsonResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = fmt.Fprint(w, body)
}

const dropletJSON = `{
	"id": 42,
	"name": "obs-base-stream",
	"status": "active",
	"tags": ["stream"],
	"size_slug": "s-1vcpu-2gb",
	"region": {"slug": "nyc3"},
	"image": {"id": 4711},
	"created_at": "2026-03-01T12:00:00Z",
	"networks": {"v4": [
		{"ip_address": "10.10.0.5", "type": "private"},
		{"ip_address": "203.0.113.5", "type": "public"}
	]}
}`

func TestClient_ListByTag(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/droplets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stream", r.URL.Query().Get("tag_name"))
		jsonResponse(w, http.StatusOK, `{"droplets": [`+dropletJSON+`], "meta": {"total": 1}}`)
	})

	got, err := ts.client(t).ListByTag(context.Background(), "stream")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, droplet.Record{
		ID:      "42",
		Name:    "obs-base-stream",
		Tags:    []string{"stream"},
		Region:  "nyc3",
		Image:   "4711",
		Size:    "s-1vcpu-2gb",
		IPv4:    "203.0.113.5",
		Status:  "active",
		Created: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}, got[0])
}

func TestClient_ListSnapshotsPaginates(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/snapshots", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "droplet", r.URL.Query().Get("resource_type"))
		base := ts.server.URL + "/v2/snapshots?resource_type=droplet"
		switch r.URL.Query().Get("page") {
		case "", "1":
			jsonResponse(w, http.StatusOK, `{
				"snapshots": [{"id": "1", "name": "nginx-rtmp", "regions": ["ams3"]}],
				"links": {"pages": {"next": "`+base+`&page=2", "last": "`+base+`&page=2"}}
			}`)
		case "2":
			jsonResponse(w, http.StatusOK, `{
				"snapshots": [{"id": "2", "name": "obs-base", "regions": ["sfo2", "nyc3"]}],
				"links": {"pages": {"first": "`+base+`&page=1", "prev": "`+base+`&page=1"}}
			}`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	got, err := ts.client(t).ListSnapshots(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []droplet.Snapshot{
		{ID: "1", Name: "nginx-rtmp", Regions: []string{"ams3"}},
		{ID: "2", Name: "obs-base", Regions: []string{"sfo2", "nyc3"}},
	}, got)
}

func TestClient_Create(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	var body struct {
		Name    string   `json:"name"`
		Region  string   `json:"region"`
		Size    string   `json:"size"`
		Image   int      `json:"image"`
		SSHKeys []int    `json:"ssh_keys"`
		Tags    []string `json:"tags"`
	}
	ts.handleFunc("/v2/droplets", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		jsonResponse(w, http.StatusAccepted, `{"droplet": {"id": 42, "name": "obs-base-stream", "status": "new", "tags": ["stream"]}}`)
	})

	rec, err := ts.client(t).Create(context.Background(), droplet.CreateRequest{
		Name:    "obs-base-stream",
		Region:  "sfo2",
		Size:    "s-1vcpu-2gb",
		Image:   "4711",
		SSHKeys: []droplet.SSHKey{{ID: "7", Fingerprint: "aa:bb"}},
		Tags:    []string{"stream"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
	assert.Empty(t, rec.IPv4)

	assert.Equal(t, "obs-base-stream", body.Name)
	assert.Equal(t, "sfo2", body.Region)
	assert.Equal(t, "s-1vcpu-2gb", body.Size)
	assert.Equal(t, 4711, body.Image)
	assert.Equal(t, []string{"stream"}, body.Tags)
	assert.Equal(t, []int{7}, body.SSHKeys)
}

func TestClient_CreateInvalidImage(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, err := ts.client(t).Create(context.Background(), droplet.CreateRequest{Image: "obs-base"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid image id "obs-base"`)
}

func TestClient_Get(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/droplets/42", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, `{"droplet": `+dropletJSON+`}`)
	})
	ts.handleFunc("/v2/droplets/43", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusNotFound, `{"id": "not_found", "message": "The resource you requested could not be found."}`)
	})

	client := ts.client(t)
	rec, err := client.Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", rec.IPv4)

	_, err = client.Get(context.Background(), "43")
	require.ErrorIs(t, err, droplet.ErrResourceMissing)
}

func TestClient_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responses []int
		wantErr   bool
		wantCalls int32
	}{
		{name: "deleted", responses: []int{http.StatusNoContent}, wantCalls: 1},
		{name: "already gone", responses: []int{http.StatusNotFound}, wantCalls: 1},
		{name: "pending event retried", responses: []int{http.StatusUnprocessableEntity, http.StatusNoContent}, wantCalls: 2},
		{name: "rate limited exhausted", responses: []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests}, wantErr: true, wantCalls: 3},
		{name: "forbidden is fatal", responses: []int{http.StatusForbidden}, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)

			var calls atomic.Int32
			ts.handleFunc("/v2/droplets/42", func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodDelete, r.Method)
				n := calls.Add(1)
				status := tt.responses[int(n)-1]
				switch status {
				case http.StatusNoContent:
					w.WriteHeader(status)
				case http.StatusUnprocessableEntity:
					jsonResponse(w, status, `{"id": "unprocessable_entity", "message": "Droplet already has a pending event."}`)
				default:
					jsonResponse(w, status, `{"id": "error", "message": "nope"}`)
				}
			})

			err := ts.client(t).Delete(context.Background(), "42")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_Actions(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/droplets/42/actions", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, `{"actions": [
			{"id": 1, "type": "create", "status": "completed", "started_at": "2026-03-01T12:00:00Z"},
			{"id": 2, "type": "power_on", "status": "in-progress"}
		]}`)
	})

	got, err := ts.client(t).Actions(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, droplet.ActionCompleted, got[0].Status)
	assert.Equal(t, "create", got[0].Type)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), got[0].StartedAt)
	assert.Equal(t, droplet.ActionInProgress, got[1].Status)
	assert.True(t, got[1].StartedAt.IsZero())
}

func TestClient_Firewalls(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/firewalls", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, `{"firewalls": [{"id": "fw-1", "name": "stream-fw"}]}`)
	})
	var added struct {
		DropletIDs []int `json:"droplet_ids"`
	}
	ts.handleFunc("/v2/firewalls/fw-1/droplets", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&added))
		w.WriteHeader(http.StatusNoContent)
	})

	client := ts.client(t)
	fws, err := client.ListFirewalls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []droplet.Firewall{{ID: "fw-1", Name: "stream-fw"}}, fws)

	require.NoError(t, client.AddToFirewall(context.Background(), "fw-1", "42"))
	assert.Equal(t, []int{42}, added.DropletIDs)
}

func TestClient_ListSSHKeys(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/account/keys", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, `{"ssh_keys": [{"id": 7, "name": "laptop", "fingerprint": "aa:bb"}]}`)
	})

	got, err := ts.client(t).ListSSHKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []droplet.SSHKey{{ID: "7", Name: "laptop", Fingerprint: "aa:bb"}}, got)
}

func TestClient_ListError(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	ts.handleFunc("/v2/account/keys", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusUnauthorized, `{"id": "unauthorized", "message": "Unable to authenticate you."}`)
	})

	_, err := ts.client(t).ListSSHKeys(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list ssh keys")
}
