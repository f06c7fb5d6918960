package repo

import (
	"context"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
)

type OrderRepository interface {
	// Create inserts the order row only; items are written through OrderItemRepository.
	Create(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GetByToken returns the most recently created order holding token.
	GetByToken(ctx context.Context, token string) (*domain.Order, error)
	ActiveTokenExists(ctx context.Context, token string) (bool, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Order, error)
	// UpdateStatus moves the order holding token from one status to another. It returns
	// domain.ErrNotFound when no order with that token is in status from.
	UpdateStatus(ctx context.Context, token string, from, to domain.OrderStatus) (*domain.Order, error)
}

type OrderItemRepository interface {
	CreateMany(ctx context.Context, items []domain.OrderItem) error
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]domain.OrderItem, error)
}
