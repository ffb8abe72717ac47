// Package triggers holds the built-in trigger catalog and fires triggers into
// the dispatcher.
package triggers

import (
	"cmp"
	"slices"
)

// MergeTag documents one expression usable in connection settings for a trigger.
type MergeTag struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

// Definition describes a trigger notifications can bind to.
type Definition struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Group       string     `json:"group"`
	Description string     `json:"description"`
	MergeTags   []MergeTag `json:"merge_tags"`
}

type Catalog struct {
	definitions map[string]Definition
}

// NewCatalog builds a catalog from definitions. Later duplicates win.
func NewCatalog(definitions ...Definition) *Catalog {
	c := &Catalog{definitions: make(map[string]Definition, len(definitions))}
	for _, d := range definitions {
		c.definitions[d.ID] = d
	}

	return c
}

// DefaultCatalog returns the built-in triggers.
func DefaultCatalog() *Catalog {
	return NewCatalog(builtin...)
}

func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.definitions[id]

	return d, ok
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.definitions[id]

	return ok
}

// All returns every definition sorted by group, then id.
func (c *Catalog) All() []Definition {
	all := make([]Definition, 0, len(c.definitions))
	for _, d := range c.definitions {
		all = append(all, d)
	}

	slices.SortFunc(all, func(a, b Definition) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.ID, b.ID))
	})

	return all
}

// Tags returns the merge tags documented for a trigger, including the ones
// every trigger carries.
func (c *Catalog) Tags(id string) []MergeTag {
	d, ok := c.definitions[id]
	if !ok {
		return nil
	}

	return append(slices.Clone(commonTags), d.MergeTags...)
}

var commonTags = []MergeTag{
	{Tag: "trigger_id", Description: "Identifier of the fired trigger"},
	{Tag: "fired_at", Description: "RFC 3339 time the trigger fired"},
	{Tag: "site.name", Description: "Site name"},
	{Tag: "site.url", Description: "Site URL"},
}

var postTags = []MergeTag{
	{Tag: "post.id", Description: "Post ID"},
	{Tag: "post.title", Description: "Post title"},
	{Tag: "post.url", Description: "Post permalink"},
	{Tag: "post.status", Description: "Post status"},
	{Tag: "post.type", Description: "Post type"},
	{Tag: "author.name", Description: "Author display name"},
	{Tag: "author.email", Description: "Author email"},
}

var mediaTags = []MergeTag{
	{Tag: "media.id", Description: "Attachment ID"},
	{Tag: "media.title", Description: "Attachment title"},
	{Tag: "media.url", Description: "Attachment URL"},
	{Tag: "media.mime_type", Description: "Attachment MIME type"},
	{Tag: "user.name", Description: "User performing the action"},
}

var themeTags = []MergeTag{
	{Tag: "theme.name", Description: "Theme name"},
	{Tag: "theme.version", Description: "Theme version"},
	{Tag: "theme.author", Description: "Theme author"},
}

var privacyTags = []MergeTag{
	{Tag: "request.id", Description: "Privacy request ID"},
	{Tag: "request.email", Description: "Email of the data subject"},
	{Tag: "request.action", Description: "Request type (export or erasure)"},
	{Tag: "request.url", Description: "Export download or confirmation URL"},
}

var userTags = []MergeTag{
	{Tag: "user.id", Description: "User ID"},
	{Tag: "user.login", Description: "User login"},
	{Tag: "user.email", Description: "User email"},
	{Tag: "user.role", Description: "User role"},
}

var commentTags = []MergeTag{
	{Tag: "comment.id", Description: "Comment ID"},
	{Tag: "comment.author", Description: "Comment author name"},
	{Tag: "comment.content", Description: "Comment text"},
	{Tag: "post.title", Description: "Title of the commented post"},
	{Tag: "post.url", Description: "Permalink of the commented post"},
}

var builtin = []Definition{
	{ID: "post.published", Group: "post", Name: "Post published", Description: "A post is published", MergeTags: postTags},
	{ID: "post.updated", Group: "post", Name: "Post updated", Description: "A published post is updated", MergeTags: postTags},
	{ID: "post.trashed", Group: "post", Name: "Post trashed", Description: "A post is moved to the trash", MergeTags: postTags},
	{
		ID: "post.status_changed", Group: "post", Name: "Post status changed",
		Description: "A post moves from one status to another",
		MergeTags:   append(slices.Clone(postTags), MergeTag{Tag: "old_status", Description: "Previous status"}),
	},
	{ID: "media.uploaded", Group: "media", Name: "Media uploaded", Description: "A file is added to the media library", MergeTags: mediaTags},
	{ID: "media.deleted", Group: "media", Name: "Media deleted", Description: "A file is removed from the media library", MergeTags: mediaTags},
	{ID: "theme.switched", Group: "theme", Name: "Theme switched", Description: "The active theme changes", MergeTags: append(slices.Clone(themeTags), MergeTag{Tag: "old_theme.name", Description: "Previously active theme"})},
	{ID: "theme.installed", Group: "theme", Name: "Theme installed", Description: "A new theme is installed", MergeTags: themeTags},
	{ID: "privacy.export_requested", Group: "privacy", Name: "Data export requested", Description: "A personal data export is requested", MergeTags: privacyTags},
	{ID: "privacy.export_ready", Group: "privacy", Name: "Data export ready", Description: "A personal data export file is ready", MergeTags: privacyTags},
	{ID: "privacy.erasure_requested", Group: "privacy", Name: "Data erasure requested", Description: "A personal data erasure is requested", MergeTags: privacyTags},
	{ID: "privacy.erased", Group: "privacy", Name: "Data erased", Description: "Personal data was erased", MergeTags: privacyTags},
	{ID: "user.registered", Group: "user", Name: "User registered", Description: "A new user account is created", MergeTags: userTags},
	{
		ID: "user.login_failed", Group: "user", Name: "Login failed",
		Description: "A login attempt fails",
		MergeTags:   append(slices.Clone(userTags), MergeTag{Tag: "ip", Description: "Client IP address"}),
	},
	{ID: "comment.posted", Group: "comment", Name: "Comment posted", Description: "A new comment is submitted", MergeTags: commentTags},
}
