// Package labels maps droplet tags onto Hetzner Cloud labels.
//
// Hetzner servers carry key/value labels instead of free-form tags. A tag
// is stored as the value of [KeyTag], so listing droplets by tag becomes a
// label selector query.
package labels
