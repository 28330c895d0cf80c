// Package provisioning owns the lifecycle of the single managed droplet.
//
// The Coordinator serializes creation through a try-acquire lock: a caller
// that finds a creation already in flight fails immediately with
// droplet.ErrResourceLocked instead of queueing. Under the lock it
// re-checks for an existing droplet, waits on a creation another caller
// started, or creates the droplet from a snapshot, attaches the firewall
// and polls the droplet's actions until boot has finished.
//
// Destruction is lock-free and idempotent; it clears the pending-creation
// marker of every droplet it removes.
package provisioning
