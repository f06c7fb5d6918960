package repo

import (
	"context"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
)

type MenuRepository interface {
	Create(ctx context.Context, item *domain.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error)
	// List returns items newest first; onlyEnabled drops disabled items.
	List(ctx context.Context, onlyEnabled bool) ([]domain.MenuItem, error)
	Update(ctx context.Context, item *domain.MenuItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MenuItemStatus) error
	// UpsertByName inserts the item or overwrites the item with the same name.
	UpsertByName(ctx context.Context, item *domain.MenuItem) (created bool, err error)
	Delete(ctx context.Context, id uuid.UUID) error
}
