package triggers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_ContainsBuiltinTriggers(t *testing.T) {
	catalog := DefaultCatalog()

	for _, id := range []string{
		"post.published", "post.updated", "post.trashed", "post.status_changed",
		"media.uploaded", "media.deleted",
		"theme.switched", "theme.installed",
		"privacy.export_requested", "privacy.export_ready", "privacy.erasure_requested", "privacy.erased",
		"user.registered", "user.login_failed",
		"comment.posted",
	} {
		d, ok := catalog.Get(id)
		require.True(t, ok, id)
		assert.NotEmpty(t, d.Name, id)
		assert.NotEmpty(t, d.MergeTags, id)
	}

	assert.False(t, catalog.Has("post.exploded"))
}

func TestCatalog_AllSortedByGroupThenID(t *testing.T) {
	catalog := NewCatalog(
		Definition{ID: "user.b", Group: "user"},
		Definition{ID: "media.z", Group: "media"},
		Definition{ID: "user.a", Group: "user"},
	)

	var ids []string
	for _, d := range catalog.All() {
		ids = append(ids, d.ID)
	}

	assert.Equal(t, []string{"media.z", "user.a", "user.b"}, ids)
}

func TestCatalog_Tags(t *testing.T) {
	catalog := DefaultCatalog()

	tags := catalog.Tags("theme.switched")

	var names []string
	for _, tag := range tags {
		names = append(names, tag.Tag)
	}

	assert.Contains(t, names, "trigger_id")
	assert.Contains(t, names, "theme.name")
	assert.Contains(t, names, "old_theme.name")
	assert.Nil(t, catalog.Tags("unknown"))

	d, _ := catalog.Get("theme.installed")
	assert.NotContains(t, d.MergeTags, MergeTag{Tag: "old_theme.name", Description: "Previously active theme"})
}
