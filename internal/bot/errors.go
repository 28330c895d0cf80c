package bot

import (
	"errors"
	"fmt"

	"github.com/imamik/dropletd/internal/droplet"
)

// ErrUnauthorized is returned when the author may not manage droplets.
var ErrUnauthorized = errors.New("unauthorized")

const holdYourHorses = "Hold your horses, I'm doing stuff, but not for you... ば.. ばか!!"

// userText renders err as a chat reply.
func userText(err error, msg Message) string {
	if errors.Is(err, ErrUnauthorized) {
		return fmt.Sprintf("I'm sorry %s, I'm afraid I can't allow you to do that.", msg.AuthorName)
	}
	switch droplet.KindOf(err) {
	case droplet.KindResourceLocked:
		return cause(err) + ", try again shortly"
	case droplet.KindResourceMissing:
		return cause(err)
	case droplet.KindBootFailed:
		return cause(err) + ", turn it off and try again"
	default:
		return "Unexpected error: " + err.Error()
	}
}

// cause returns the message of the innermost operational error without
// its kind and operation prefix.
func cause(err error) string {
	var e *droplet.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

const (
	resultSuccess      = "success"
	resultError        = "error"
	resultUnauthorized = "unauthorized"
	resultRateLimited  = "rate_limited"
)

func commandResult(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrUnauthorized):
		return resultUnauthorized
	default:
		return resultError
	}
}
