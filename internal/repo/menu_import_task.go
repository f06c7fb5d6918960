package repo

import (
	"context"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
)

type MenuImportTaskRepository interface {
	Create(ctx context.Context, task *domain.MenuImportTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuImportTask, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportTaskStatus, errorMsg string) error
	Complete(ctx context.Context, id uuid.UUID, imported, skipped int) error
	IncrementRetryCount(ctx context.Context, id uuid.UUID) error
}
