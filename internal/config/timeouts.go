package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout and polling values.
// These values can be customized via environment variables.
type Timeouts struct {
	ActionPoll          time.Duration // Interval between droplet action status polls
	ActionPollTimeout   time.Duration // Ceiling for the action poll, 0 waits indefinitely
	PendingPoll         time.Duration // Interval between polls for a creation started elsewhere
	PendingPollAttempts int           // Number of polls before giving up on a pending creation
	Delete              time.Duration // Timeout for destroying all tagged droplets
	LivenessRequest     time.Duration // HTTP timeout for a single liveness request
	RetryMaxAttempts    int           // Maximum number of attempts for retried cloud calls
	RetryInitialDelay   time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - DROPLETD_ACTION_POLL_INTERVAL (default: 1s)
//   - DROPLETD_ACTION_POLL_TIMEOUT (default: 0, unbounded)
//   - DROPLETD_PENDING_POLL_INTERVAL (default: 1s)
//   - DROPLETD_PENDING_POLL_ATTEMPTS (default: 30)
//   - DROPLETD_TIMEOUT_DELETE (default: 5m)
//   - DROPLETD_TIMEOUT_LIVENESS (default: 10s)
//   - DROPLETD_RETRY_MAX_ATTEMPTS (default: 5)
//   - DROPLETD_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ActionPoll:          parseDuration("DROPLETD_ACTION_POLL_INTERVAL", 1*time.Second),
		ActionPollTimeout:   parseDuration("DROPLETD_ACTION_POLL_TIMEOUT", 0),
		PendingPoll:         parseDuration("DROPLETD_PENDING_POLL_INTERVAL", 1*time.Second),
		PendingPollAttempts: parseInt("DROPLETD_PENDING_POLL_ATTEMPTS", 30),
		Delete:              parseDuration("DROPLETD_TIMEOUT_DELETE", 5*time.Minute),
		LivenessRequest:     parseDuration("DROPLETD_TIMEOUT_LIVENESS", 10*time.Second),
		RetryMaxAttempts:    parseInt("DROPLETD_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay:   parseDuration("DROPLETD_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
