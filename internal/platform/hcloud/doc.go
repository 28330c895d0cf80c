// Package hcloud implements droplet.Cloud on the Hetzner Cloud API.
//
// Hetzner has no droplet tags, so the tag is stored as the label
// dropletd.io/tag and listings use a label selector. Snapshots are images
// of type snapshot matched by description, and firewalls are attached
// through ApplyResources.
//
// Hetzner cannot list the actions of a server, so the client remembers
// the action IDs returned by create and refreshes them by ID. Action
// statuses are mapped onto the droplet vocabulary:
//
//   - running: in-progress
//   - success: completed
//   - error: errored
//
// # Retry and Timeout Configuration
//
// Deletes retry locked resources with exponential backoff, bounded by the
// timeouts from config.LoadTimeouts:
//
//   - DROPLETD_TIMEOUT_DELETE: server deletion timeout (default: 5m)
//   - DROPLETD_RETRY_MAX_ATTEMPTS: maximum attempts (default: 5)
//   - DROPLETD_RETRY_INITIAL_DELAY: initial retry delay (default: 1s)
package hcloud
