// Package droplet defines the provider-neutral model shared by the
// provisioning coordinator, the inactivity monitor and the cloud adapters.
//
// Cloud adapters (see internal/platform/digitalocean and
// internal/platform/hcloud) translate their SDK types into [Record],
// [Snapshot], [Firewall] and [Action] so the core never depends on a
// particular provider client shape.
//
// Operational failures are reported as [*Error] values carrying a [Kind].
// Use [KindOf] or errors.Is with the sentinel errors to classify them.
package droplet
