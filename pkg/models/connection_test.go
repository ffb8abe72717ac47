package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_IsEnabled(t *testing.T) {
	assert.True(t, Connection{Integration: "email"}.IsEnabled())
	assert.True(t, Connection{Integration: "email", Enabled: Bool(true)}.IsEnabled())
	assert.False(t, Connection{Integration: "email", Enabled: Bool(false)}.IsEnabled())
}

func TestConnections_PreservesInsertionOrder(t *testing.T) {
	var cs Connections

	cs.Set("zeta", Connection{Integration: "email"})
	cs.Set("alpha", Connection{Integration: "webhook"})
	cs.Set("mid", Connection{Integration: "discord"})

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, cs.IDs())

	cs.Set("alpha", Connection{Integration: "log"})
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, cs.IDs(), "replacing keeps position")

	c, ok := cs.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "log", c.Integration)

	cs.Delete("zeta")
	cs.Delete("missing")
	assert.Equal(t, []string{"alpha", "mid"}, cs.IDs())
	assert.Equal(t, 2, cs.Len())
}

func TestConnections_AllStopsEarly(t *testing.T) {
	cs := NewConnections(
		ConnectionEntry{ID: "a", Connection: Connection{Integration: "email"}},
		ConnectionEntry{ID: "b", Connection: Connection{Integration: "email"}},
	)

	var seen []string
	for id := range cs.All() {
		seen = append(seen, id)

		break
	}

	assert.Equal(t, []string{"a"}, seen)
}

func TestConnections_JSONRoundTripKeepsOrder(t *testing.T) {
	doc := `{"c3":{"integration":"email","settings":{"to":"a@example.com"}},` +
		`"c1":{"enabled":false,"integration":"webhook","settings":{}},` +
		`"c2":{"integration":"discord","settings":null}}`

	var cs Connections
	require.NoError(t, json.Unmarshal([]byte(doc), &cs))

	assert.Equal(t, []string{"c3", "c1", "c2"}, cs.IDs())

	c1, _ := cs.Get("c1")
	assert.False(t, c1.IsEnabled())

	c3, _ := cs.Get("c3")
	assert.True(t, c3.IsEnabled())
	assert.Equal(t, "a@example.com", c3.Settings["to"])

	encoded, err := json.Marshal(cs)
	require.NoError(t, err)

	var again Connections
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, cs.IDs(), again.IDs())
}

func TestConnections_UnmarshalEmptyShapes(t *testing.T) {
	for _, doc := range []string{`null`, `[]`, `{}`} {
		cs := NewConnections(ConnectionEntry{ID: "stale", Connection: Connection{Integration: "email"}})

		require.NoError(t, json.Unmarshal([]byte(doc), &cs), doc)
		assert.Equal(t, 0, cs.Len(), doc)
	}
}

func TestConnections_UnmarshalRejectsNonObjects(t *testing.T) {
	for _, doc := range []string{`"email"`, `[{"integration":"email"}]`, `42`} {
		var cs Connections

		assert.Error(t, json.Unmarshal([]byte(doc), &cs), doc)
	}
}

func TestConnections_MarshalZeroValue(t *testing.T) {
	encoded, err := json.Marshal(Notification{Title: "t"})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"connections":{}`)
}

func TestConnections_CloneIsIndependent(t *testing.T) {
	cs := NewConnections(ConnectionEntry{ID: "a", Connection: Connection{
		Integration: "email",
		Settings:    map[string]any{"to": "x@example.com"},
	}})

	clone := cs.Clone()
	clone.Set("b", Connection{Integration: "log"})

	c, _ := clone.Get("a")
	c.Settings["to"] = "changed"

	original, _ := cs.Get("a")
	assert.Equal(t, "x@example.com", original.Settings["to"])
	assert.Equal(t, 1, cs.Len())
}

func TestSettings_Lookup(t *testing.T) {
	s := DefaultSettings()
	s.BackgroundProcessing = true

	v, ok := s.Lookup(SettingBackgroundProcessing)
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = s.Lookup(SettingLogRetentionDays)
	require.True(t, ok)
	assert.Equal(t, DefaultLogRetentionDays, v)

	_, ok = s.Lookup("unknown")
	assert.False(t, ok)
}

func TestTriggerContext_Clone(t *testing.T) {
	var nilCtx TriggerContext
	assert.NotNil(t, nilCtx.Clone())

	ctx := TriggerContext{"post": "hello"}
	clone := ctx.Clone()
	clone["post"] = "changed"

	assert.Equal(t, "hello", ctx.String("post"))
	assert.Empty(t, ctx.String("missing"))
}
