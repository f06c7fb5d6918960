package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"go.uber.org/zap"
)

type SettingsService struct {
	settingsRepo repo.SettingsRepository
	notifier     notify.Notifier
	logger       *zap.SugaredLogger
}

func NewSettingsService(
	settingsRepo repo.SettingsRepository,
	notifier notify.Notifier,
	logger *zap.SugaredLogger,
) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		notifier:     notifier,
		logger:       logger,
	}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (s *SettingsService) Get(ctx context.Context) (*domain.RestaurantSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		defaults := domain.DefaultSettings()
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

func (s *SettingsService) SetTotalTables(ctx context.Context, totalTables int) (*domain.RestaurantSettings, error) {
	if totalTables < 1 || totalTables > domain.MaxTotalTables {
		return nil, domain.NewValidationError("total_tables", fmt.Sprintf("must be between 1 and %d", domain.MaxTotalTables))
	}

	settings := &domain.RestaurantSettings{TotalTables: totalTables}
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.notifier.Changed(ctx, domain.TableSettings, domain.ChangeUpdate)
	s.logger.Infow("settings updated", "total_tables", totalTables)

	return settings, nil
}
