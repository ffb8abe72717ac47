package registry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFactory struct {
	id        string
	createErr error
	created   int
}

func (m *mockFactory) Create(_ protocol.Dependencies) (protocol.Integration, error) {
	m.created++

	if m.createErr != nil {
		return nil, m.createErr
	}

	return protocol.IntegrationFunc(func(context.Context, protocol.Delivery) error { return nil }), nil
}

func (m *mockFactory) ID() string          { return m.id }
func (m *mockFactory) Name() string        { return "Mock " + m.id }
func (m *mockFactory) Description() string { return "mock integration" }
func (m *mockFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{"to"},
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := newTestRegistry()
	factory := &mockFactory{id: "email"}

	require.NoError(t, reg.RegisterIntegration(factory))

	integration, ok := reg.Resolve("email")
	require.True(t, ok)
	assert.NotNil(t, integration)
	assert.True(t, reg.IsRegistered("email"))

	_, ok = reg.Resolve("slack")
	assert.False(t, ok)
}

func TestRegistry_ResolveDoesNotCreate(t *testing.T) {
	reg := newTestRegistry()
	factory := &mockFactory{id: "email"}

	require.NoError(t, reg.RegisterIntegration(factory))

	for range 3 {
		_, ok := reg.Resolve("email")
		require.True(t, ok)
	}

	assert.Equal(t, 1, factory.created)
}

func TestRegistry_RegisterFailure(t *testing.T) {
	reg := newTestRegistry()

	err := reg.RegisterIntegration(&mockFactory{id: "broken", createErr: errors.New("no smtp host")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.False(t, reg.IsRegistered("broken"))
}

func TestRegistry_IntegrationsSorted(t *testing.T) {
	reg := newTestRegistry()

	require.NoError(t, reg.RegisterIntegration(&mockFactory{id: "webhook"}))
	require.NoError(t, reg.RegisterIntegration(&mockFactory{id: "discord"}))
	require.NoError(t, reg.RegisterIntegration(&mockFactory{id: "email"}))

	infos := reg.Integrations()
	require.Len(t, infos, 3)
	assert.Equal(t, "discord", infos[0].ID)
	assert.Equal(t, "email", infos[1].ID)
	assert.Equal(t, "webhook", infos[2].ID)
	assert.Equal(t, "Mock email", infos[1].Name)
}

func TestRegistry_ValidateSettings(t *testing.T) {
	reg := newTestRegistry()
	require.NoError(t, reg.RegisterIntegration(&mockFactory{id: "email"}))

	tests := []struct {
		name        string
		integration string
		settings    map[string]any
		wantErr     error
	}{
		{name: "valid", integration: "email", settings: map[string]any{"to": "a@example.com"}},
		{name: "missing required", integration: "email", settings: map[string]any{}, wantErr: ErrInvalidSettings},
		{name: "nil settings", integration: "email", settings: nil, wantErr: ErrInvalidSettings},
		{name: "wrong type", integration: "email", settings: map[string]any{"to": 42}, wantErr: ErrInvalidSettings},
		{name: "unknown integration", integration: "slack", settings: map[string]any{}, wantErr: ErrIntegrationNotRegistered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ValidateSettings(tt.integration, tt.settings)
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistry_HealthCheck(t *testing.T) {
	reg := newTestRegistry()

	_, ok := reg.HealthCheck()
	assert.False(t, ok)

	require.NoError(t, reg.RegisterIntegration(&mockFactory{id: "email"}))

	msg, ok := reg.HealthCheck()
	assert.True(t, ok)
	assert.Equal(t, "1 integrations registered", msg)
}
