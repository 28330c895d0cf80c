package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelBuilder(t *testing.T) {
	t.Parallel()

	lb := NewLabelBuilder("stream")
	got := lb.Merge(map[string]string{"env": "prod"}).Build()

	assert.Equal(t, map[string]string{
		KeyTag:       "stream",
		KeyManagedBy: ManagedByDropletd,
		"env":        "prod",
	}, got)

	got["env"] = "mutated"
	assert.Equal(t, "prod", lb.Build()["env"], "Build must return a copy")
}

func TestSelectorForTag(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "dropletd.io/tag=stream", SelectorForTag("stream"))
}

func TestSelector_SortedKeys(t *testing.T) {
	t.Parallel()
	sel := Selector(map[string]string{"b": "2", "a": "1", KeyTag: "x"})
	assert.Equal(t, "a=1,b=2,dropletd.io/tag=x", sel)
	assert.Equal(t, "", Selector(nil))
}

func TestTags(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"stream"}, Tags(map[string]string{KeyTag: "stream"}))
	assert.Nil(t, Tags(map[string]string{"other": "x"}))
	assert.Nil(t, Tags(map[string]string{KeyTag: ""}))
}
