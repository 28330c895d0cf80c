package naming

import "fmt"

// Droplet returns the name of the droplet created from snapshot for tag.
func Droplet(snapshot, tag string) string {
	return fmt.Sprintf("%s-%s", snapshot, tag)
}
