// Package config defines the dropletd configuration model.
//
// The [Config] struct is loaded from a YAML file (default dropletd.yaml)
// and carries the droplet identity (tag, snapshot, firewall), the
// inactivity window, bot settings and optional integrations. Secrets such
// as API tokens are read from the environment, never from the file.
//
// A [Store] holds the current configuration and reloads it when the file
// changes, so long-running components read fresh values through
// [Store.Current] without managing the refresh themselves.
//
// Operational knobs that rarely change (poll intervals, retry limits) are
// tuned through environment variables, see [LoadTimeouts].
package config
