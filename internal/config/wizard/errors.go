package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errTagRequired      = errors.New("tag is required")
	errTagInvalid       = errors.New("tag must be 1-63 characters of letters, digits, colons, dashes or underscores")
	errSnapshotRequired = errors.New("snapshot name is required")
	errDurationInvalid  = errors.New("duration must be positive, e.g. 5m or 300s")
	errConfigExists     = errors.New("config file already exists (use --force to overwrite)")
)
