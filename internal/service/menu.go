package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type MenuService struct {
	menuRepo repo.MenuRepository
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewMenuService(
	menuRepo repo.MenuRepository,
	notifier notify.Notifier,
	logger *zap.SugaredLogger,
) *MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		notifier: notifier,
		logger:   logger,
	}
}

type CreateMenuItemInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
}

func validateMenuFields(name *string, price *decimal.Decimal) error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return domain.NewValidationError("name", "is required")
	}
	if price != nil && !price.IsPositive() {
		return domain.NewValidationError("price", "must be greater than zero")
	}
	return nil
}

func (s *MenuService) Create(ctx context.Context, in CreateMenuItemInput) (*domain.MenuItem, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateMenuFields(&name, &in.Price); err != nil {
		return nil, err
	}

	item := &domain.MenuItem{
		Name:        name,
		Price:       in.Price,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Status:      domain.MenuItemEnabled,
	}

	if err := s.menuRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.notifier.Changed(ctx, domain.TableMenuItems, domain.ChangeInsert)
	s.logger.Infow("menu item created", "menu_item_id", item.ID, "name", item.Name)

	return item, nil
}

func (s *MenuService) Update(ctx context.Context, id uuid.UUID, patch domain.MenuItemPatch) (*domain.MenuItem, error) {
	if patch.Empty() {
		return nil, domain.NewValidationError("body", "nothing to update")
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := validateMenuFields(patch.Name, patch.Price); err != nil {
		return nil, err
	}

	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(item)

	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	s.notifier.Changed(ctx, domain.TableMenuItems, domain.ChangeUpdate)

	return item, nil
}

func (s *MenuService) SetStatus(ctx context.Context, id uuid.UUID, status domain.MenuItemStatus) (*domain.MenuItem, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be enabled or disabled")
	}

	if err := s.menuRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.notifier.Changed(ctx, domain.TableMenuItems, domain.ChangeUpdate)
	s.logger.Infow("menu item status changed", "menu_item_id", id, "status", status)

	return s.menuRepo.GetByID(ctx, id)
}

// Toggle flips an item between enabled and disabled.
func (s *MenuService) Toggle(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetStatus(ctx, id, item.Status.Toggled())
}

func (s *MenuService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.menuRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.Changed(ctx, domain.TableMenuItems, domain.ChangeDelete)
	s.logger.Infow("menu item deleted", "menu_item_id", id)

	return nil
}

func (s *MenuService) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.menuRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return items, nil
}

func (s *MenuService) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	items, err := s.menuRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu: %w", err)
	}
	return items, nil
}
