package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultAuditLimit = 100

type OrderStatusAuditRepository struct {
	pool *pgxpool.Pool
}

func (r *OrderStatusAuditRepository) Create(ctx context.Context, audit *domain.OrderStatusAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.Timestamp.IsZero() {
		audit.Timestamp = time.Now()
	}

	_, err := r.pool.Exec(ctx, insertAuditSQL,
		audit.ID,
		audit.OrderID,
		audit.Token,
		audit.EventType,
		string(audit.OldStatus),
		string(audit.NewStatus),
		audit.ChangedBy,
		audit.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

func (r *OrderStatusAuditRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID, limit int) ([]domain.OrderStatusAudit, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	rows, err := r.pool.Query(ctx, listAuditByOrderSQL, orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit records: %w", err)
	}
	defer rows.Close()

	audits := []domain.OrderStatusAudit{}
	for rows.Next() {
		var a domain.OrderStatusAudit
		if err := rows.Scan(&a.ID, &a.OrderID, &a.Token, &a.EventType, &a.OldStatus, &a.NewStatus, &a.ChangedBy, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		audits = append(audits, a)
	}

	return audits, rows.Err()
}

type MenuImportTaskRepository struct {
	pool *pgxpool.Pool
}

func (r *MenuImportTaskRepository) Create(ctx context.Context, task *domain.MenuImportTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt

	_, err := r.pool.Exec(ctx, insertImportTaskSQL,
		task.ID, string(task.Status), task.SpreadsheetID, task.SheetRange, task.RetryCount, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create import task: %w", err)
	}

	return nil
}

func (r *MenuImportTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuImportTask, error) {
	var t domain.MenuImportTask
	err := r.pool.QueryRow(ctx, getImportTaskSQL, id).Scan(
		&t.ID,
		&t.Status,
		&t.SpreadsheetID,
		&t.SheetRange,
		&t.Imported,
		&t.Skipped,
		&t.ErrorMessage,
		&t.RetryCount,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("import task: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get import task: %w", err)
	}
	return &t, nil
}

func (r *MenuImportTaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportTaskStatus, errorMsg string) error {
	return r.exec(ctx, "failed to update import task status", updateImportTaskStatusSQL, id, string(status), errorMsg)
}

func (r *MenuImportTaskRepository) Complete(ctx context.Context, id uuid.UUID, imported, skipped int) error {
	return r.exec(ctx, "failed to complete import task", completeImportTaskSQL, id, imported, skipped)
}

func (r *MenuImportTaskRepository) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "failed to increment retry count", incrementImportRetrySQL, id)
}

func (r *MenuImportTaskRepository) exec(ctx context.Context, msg, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("import task: %w", domain.ErrNotFound)
	}
	return nil
}
