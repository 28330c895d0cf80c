package droplet

import (
	"errors"
	"fmt"
)

// Kind classifies operational failures.
type Kind int

// Failure kinds. The zero value is not a valid kind.
const (
	KindUnknown Kind = iota
	// KindResourceLocked means a creation is already in flight.
	KindResourceLocked
	// KindResourceMissing means a snapshot, firewall or droplet was not found.
	KindResourceMissing
	// KindBootFailed means the provisioning action reached "errored".
	KindBootFailed
	// KindTransientFetch means the liveness fetch failed after retries.
	KindTransientFetch
)

func (k Kind) String() string {
	switch k {
	case KindResourceLocked:
		return "resource locked"
	case KindResourceMissing:
		return "resource missing"
	case KindBootFailed:
		return "boot failed"
	case KindTransientFetch:
		return "transient fetch error"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is checks against an *Error of that kind.
var (
	ErrResourceLocked  = &Error{Kind: KindResourceLocked}
	ErrResourceMissing = &Error{Kind: KindResourceMissing}
	ErrBootFailed      = &Error{Kind: KindBootFailed}
	ErrTransientFetch  = &Error{Kind: KindTransientFetch}
)

// Error is an operational failure of the provisioning core.
type Error struct {
	Kind     Kind
	Op       string // operation that failed, e.g. "create"
	Resource string // name of the droplet, snapshot or firewall involved
	Err      error
}

// Errorf builds an *Error of the given kind with a formatted cause.
func Errorf(kind Kind, op, resource, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Resource: resource, Err: fmt.Errorf(format, args...)}
}

// Wrap builds an *Error of the given kind around err.
func Wrap(kind Kind, op, resource string, err error) *Error {
	return &Error{Kind: kind, Op: op, Resource: resource, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Resource != "" {
		msg += " (" + e.Resource + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsOperational reports whether err is an operational failure as opposed
// to a programming or provider error.
func IsOperational(err error) bool {
	return KindOf(err) != KindUnknown
}
