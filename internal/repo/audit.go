package repo

import (
	"context"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
)

type OrderStatusAuditRepository interface {
	Create(ctx context.Context, audit *domain.OrderStatusAudit) error
	// GetByOrderID returns the newest audit records of one order first.
	GetByOrderID(ctx context.Context, orderID uuid.UUID, limit int) ([]domain.OrderStatusAudit, error)
}
