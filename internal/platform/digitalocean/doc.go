// Package digitalocean implements droplet.Cloud on the DigitalOcean API
// using github.com/digitalocean/godo.
//
// Droplets are matched by native DigitalOcean tags. Snapshots are droplet
// snapshots matched by name, and action statuses are reported verbatim
// (in-progress, completed, errored).
package digitalocean
