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

type MenuRepository struct {
	pool *pgxpool.Pool
}

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.Description,
		&item.ImageURL,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (r *MenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt

	_, err := r.pool.Exec(ctx, insertMenuItemSQL,
		item.ID, item.Name, item.Price, item.Description, item.ImageURL, string(item.Status), item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu item: %w", err)
	}

	return nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	item, err := scanMenuItem(r.pool.QueryRow(ctx, getMenuItemSQL, id))
	if err != nil {
		return nil, notFound(err, "menu item")
	}
	return &item, nil
}

func (r *MenuRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error) {
	return r.query(ctx, getMenuItemsByIDsSQL, idStrings(ids))
}

func (r *MenuRepository) List(ctx context.Context, onlyEnabled bool) ([]domain.MenuItem, error) {
	return r.query(ctx, listMenuItemsSQL, onlyEnabled)
}

func (r *MenuRepository) query(ctx context.Context, sql string, args ...any) ([]domain.MenuItem, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	items := []domain.MenuItem{}
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *MenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	err := r.pool.QueryRow(ctx, updateMenuItemSQL,
		item.ID, item.Name, item.Price, item.Description, item.ImageURL, string(item.Status),
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("menu item: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to update menu item: %w", err)
	}

	return nil
}

func (r *MenuRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MenuItemStatus) error {
	tag, err := r.pool.Exec(ctx, updateMenuItemStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update menu item status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *MenuRepository) UpsertByName(ctx context.Context, item *domain.MenuItem) (bool, error) {
	updated, err := scanMenuItem(r.pool.QueryRow(ctx, updateMenuItemByNameSQL,
		item.Name, item.Price, item.Description, item.ImageURL, string(item.Status)))
	if err == nil {
		*item = updated
		return false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("failed to upsert menu item: %w", err)
	}

	if err := r.Create(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

func (r *MenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteMenuItemSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("menu item: %w", domain.ErrNotFound)
	}

	return nil
}
