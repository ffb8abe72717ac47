// Package registry maps integration identifiers to their implementations.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrIntegrationNotRegistered is returned when an identifier has no registered integration.
	ErrIntegrationNotRegistered = errors.New("integration not registered")

	// ErrInvalidSettings is returned when connection settings fail schema validation.
	ErrInvalidSettings = errors.New("invalid integration settings")
)

// IntegrationInfo describes a registered integration for API consumers.
type IntegrationInfo struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}

type entry struct {
	factory     protocol.IntegrationFactory
	integration protocol.Integration
}

// Registry holds one instance per registered integration. It is built by the
// composition root and passed to whoever needs lookups.
type Registry struct {
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:  log,
		entries: make(map[string]entry),
	}
}

// RegisterIntegration creates the integration from its factory and stores it
// under the factory ID, replacing any previous registration.
func (r *Registry) RegisterIntegration(factory protocol.IntegrationFactory) error {
	integration, err := factory.Create(protocol.Dependencies{
		Logger: r.logger.With("integration", factory.ID()),
	})
	if err != nil {
		return fmt.Errorf("failed to create integration '%s': %w", factory.ID(), err)
	}

	r.mu.Lock()
	r.entries[factory.ID()] = entry{factory: factory, integration: integration}
	r.mu.Unlock()

	r.logger.Debug("Registered integration", "integration", factory.ID())

	return nil
}

// Resolve returns the integration registered under id.
func (r *Registry) Resolve(id string) (protocol.Integration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}

	return e.integration, true
}

// IsRegistered reports whether id resolves to an integration.
func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.Resolve(id)

	return ok
}

// Integrations returns metadata for every registered integration sorted by ID.
func (r *Registry) Integrations() []IntegrationInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]IntegrationInfo, 0, len(r.entries))
	for id, e := range r.entries {
		infos = append(infos, IntegrationInfo{
			ID:          id,
			Name:        e.factory.Name(),
			Description: e.factory.Description(),
			Schema:      e.factory.Schema(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

	return infos
}

// ValidateSettings checks connection settings against the integration schema.
func (r *Registry) ValidateSettings(id string, settings map[string]any) error {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrIntegrationNotRegistered, id)
	}

	if settings == nil {
		settings = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(e.factory.Schema()),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("failed to validate settings for '%s': %w", id, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w for '%s': %s", ErrInvalidSettings, id, strings.Join(details, "; "))
	}

	return nil
}

// HealthCheck reports whether any integration is registered.
func (r *Registry) HealthCheck() (string, bool) {
	r.mu.RLock()
	count := len(r.entries)
	r.mu.RUnlock()

	if count == 0 {
		return "No integrations registered", false
	}

	return fmt.Sprintf("%d integrations registered", count), true
}
