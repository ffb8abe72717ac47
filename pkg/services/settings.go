package services

import (
	"context"
	"fmt"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/persistence"
	"github.com/go-playground/validator/v10"
)

type Settings struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

func NewSettings(persistence persistence.Persistence) *Settings {
	return &Settings{
		persistence: persistence,
		validate:    validator.New(),
	}
}

func (s *Settings) Get(ctx context.Context) (models.Settings, error) {
	settings, err := s.persistence.SettingsRepository().Get(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	return settings, nil
}

func (s *Settings) Update(ctx context.Context, settings models.Settings) (models.Settings, error) {
	err := s.validate.Struct(settings)
	if err != nil {
		return models.Settings{}, NewValidationError("Update", "INVALID_SETTINGS", err.Error(), ErrInvalidRequest)
	}

	err = s.persistence.SettingsRepository().Save(ctx, settings)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	return settings, nil
}
