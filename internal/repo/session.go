package repo

import (
	"context"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
)

type TableSessionRepository interface {
	// Create returns domain.ErrConflict when the table already has an open session.
	Create(ctx context.Context, session *domain.TableSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TableSession, error)
	FindOpenByTable(ctx context.Context, table int) (*domain.TableSession, error)
	ListOpen(ctx context.Context) ([]domain.TableSession, error)
	// Close returns domain.ErrInvalidTransition when the session is already closed.
	Close(ctx context.Context, id uuid.UUID, at time.Time) (*domain.TableSession, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (*domain.RestaurantSettings, error)
	Upsert(ctx context.Context, settings *domain.RestaurantSettings) error
}
