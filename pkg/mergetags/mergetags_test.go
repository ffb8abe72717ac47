package mergetags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleData = map[string]any{
	"post": map[string]any{
		"title":  "Hello world",
		"id":     float64(12),
		"sticky": true,
		"tags":   []any{"go", "news"},
		"author": map[string]any{"name": "Ana", "email": "ana@example.com"},
	},
	"site": "Example",
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "plain text", template: "no tags here", want: "no tags here"},
		{name: "simple field", template: "{{post.title}}", want: "Hello world"},
		{name: "spaces inside braces", template: "{{ post.author.name }} wrote it", want: "Ana wrote it"},
		{name: "several tags", template: "[{{site}}] {{post.title}} by {{post.author.email}}", want: "[Example] Hello world by ana@example.com"},
		{name: "integral number", template: "#{{post.id}}", want: "#12"},
		{name: "boolean", template: "{{post.sticky}}", want: "true"},
		{name: "missing value", template: "x{{post.missing}}y", want: "xy"},
		{name: "array as json", template: "{{post.tags}}", want: `["go","news"]`},
		{name: "jmespath function", template: "{{join(', ', post.tags)}}", want: "go, news"},
		{name: "invalid expression left as is", template: "{{post.[}}", want: "{{post.[}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.template, sampleData))
		})
	}
}

func TestResolve_NilData(t *testing.T) {
	assert.Equal(t, "Title: ", Resolve("Title: {{post.title}}", nil))
}

func TestResolveMap(t *testing.T) {
	settings := map[string]any{
		"subject": "New post: {{post.title}}",
		"to":      "{{post.author.email}}",
		"retries": float64(3),
		"headers": map[string]any{"X-Site": "{{site}}"},
		"lines":   []any{"{{post.id}}", "static"},
	}

	got := ResolveMap(settings, sampleData)

	assert.Equal(t, "New post: Hello world", got["subject"])
	assert.Equal(t, "ana@example.com", got["to"])
	assert.Equal(t, float64(3), got["retries"])
	assert.Equal(t, map[string]any{"X-Site": "Example"}, got["headers"])
	assert.Equal(t, []any{"12", "static"}, got["lines"])

	assert.Equal(t, "New post: {{post.title}}", settings["subject"], "input must not be modified")
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("plain"))
	require.NoError(t, Validate("{{post.title}} {{ length(post.tags) }}"))

	err := Validate("ok {{post.title}} broken {{post.[}}")
	require.ErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), "post.[")
}

func TestValidateMap(t *testing.T) {
	require.NoError(t, ValidateMap(map[string]any{"a": "{{x}}", "b": []any{"{{y}}"}}))

	err := ValidateMap(map[string]any{"nested": map[string]any{"body": "{{a.[}}"}})
	require.ErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), "nested")
}

func TestExpressions(t *testing.T) {
	assert.Equal(t, []string{"post.title", "user.email"}, Expressions("{{post.title}} - {{ user.email }}"))
	assert.Empty(t, Expressions("nothing"))
}
