package labels

import (
	"sort"
	"strings"
)

// Standard label keys, namespaced under dropletd.io.
const (
	// KeyTag carries the droplet tag.
	KeyTag = "dropletd.io/tag"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "dropletd.io/managed-by"

	// ManagedByDropletd is the KeyManagedBy value set on created servers.
	ManagedByDropletd = "dropletd"
)

// LabelBuilder provides a fluent interface for building server labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a label builder with the tag and managed-by
// labels pre-set.
func NewLabelBuilder(tag string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyTag:       tag,
			KeyManagedBy: ManagedByDropletd,
		},
	}
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForTag returns the label selector matching servers with tag.
func SelectorForTag(tag string) string {
	return KeyTag + "=" + tag
}

// Selector renders labels as a comma-separated (AND) selector with keys
// in sorted order.
func Selector(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}

// Tags returns the tags encoded in a server's labels.
func Tags(labels map[string]string) []string {
	if tag, ok := labels[KeyTag]; ok && tag != "" {
		return []string{tag}
	}
	return nil
}
