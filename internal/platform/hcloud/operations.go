package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/dropletd/internal/util/retry"
)

// DeleteOperation encapsulates deletion logic for an hcloud resource
// looked up by ID. It provides consistent retry, timeout, and error
// handling.
//
// Usage example:
//
//	err := (&DeleteOperation[*hcloud.Server]{
//	    ID:           serverID,
//	    ResourceType: "server",
//	    Get:          c.client.Server.GetByID,
//	    Delete:       deleteServer,
//	}).Execute(ctx, c)
type DeleteOperation[T any] struct {
	ID           int64
	ResourceType string

	// Get retrieves the resource by ID
	Get func(ctx context.Context, id int64) (T, *hcloud.Response, error)

	// Delete removes the resource
	Delete func(ctx context.Context, resource T) (*hcloud.Response, error)
}

// Execute performs the delete operation with retry logic and timeout handling.
// The operation is idempotent - it succeeds if the resource doesn't exist.
// Locked resources are retried with exponential backoff.
func (op *DeleteOperation[T]) Execute(ctx context.Context, client *RealClient) error {
	if client.timeouts.Delete > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.timeouts.Delete)
		defer cancel()
	}

	return retry.WithExponentialBackoff(ctx, func() error {
		resource, _, err := op.Get(ctx, op.ID)
		if err != nil {
			if isResourceLocked(err) || IsRateLimited(err) {
				return err
			}
			return retry.Fatal(fmt.Errorf("failed to get %s: %w", op.ResourceType, err))
		}

		// Check if resource is nil (already deleted)
		if reflect.ValueOf(resource).IsNil() {
			return nil
		}

		_, err = op.Delete(ctx, resource)
		if err != nil {
			if IsNotFound(err) {
				return nil
			}
			if isResourceLocked(err) || IsRateLimited(err) {
				return err // Retryable
			}
			return retry.Fatal(fmt.Errorf("failed to delete %s: %w", op.ResourceType, err))
		}
		return nil
	},
		retry.WithMaxAttempts(client.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(client.timeouts.RetryInitialDelay))
}
