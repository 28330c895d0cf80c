// Package naming provides consistent naming functions for droplets.
//
// Droplets created from a snapshot for a tag are named {snapshot}-{tag}.
// The same name keys the provisioning coordinator's pending-creation
// registry, so both must be derived here.
package naming
