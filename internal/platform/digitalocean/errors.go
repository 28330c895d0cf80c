package digitalocean

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/digitalocean/godo"
)

type invalidIDError struct {
	kind, id string
}

func (e *invalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id %q", e.kind, e.id)
}

// statusCode returns the HTTP status of a godo API error, or 0.
func statusCode(err error) int {
	var apiErr *godo.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode
	}
	return 0
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// IsRateLimited checks if an error indicates rate limiting.
func IsRateLimited(err error) bool {
	return statusCode(err) == http.StatusTooManyRequests
}

// isResourceLocked checks if an error indicates the droplet has another
// event in flight. DigitalOcean reports this as 422 with a pending event
// message. These errors are retryable.
func isResourceLocked(err error) bool {
	if statusCode(err) != http.StatusUnprocessableEntity {
		return false
	}
	var apiErr *godo.ErrorResponse
	errors.As(err, &apiErr)
	return strings.Contains(strings.ToLower(apiErr.Message), "pending event")
}
