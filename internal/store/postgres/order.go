package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o           domain.Order
		serviceType *string
		table       *int
	)
	err := row.Scan(
		&o.ID,
		&o.Token,
		&o.Status,
		&o.Total,
		&serviceType,
		&table,
		&o.SessionID,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}

	st := ""
	if serviceType != nil {
		st = *serviceType
	}
	o.Fulfillment = domain.FulfillmentFromRow(st, table)
	return o, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt

	_, err := r.pool.Exec(ctx, insertOrderSQL,
		order.ID,
		order.Token,
		string(order.Status),
		order.Total,
		string(order.Fulfillment.Type()),
		order.Fulfillment.TableNumber(),
		order.SessionID,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *OrderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, getOrderByTokenSQL, token))
	if err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

func (r *OrderRepository) ActiveTokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, activeTokenExistsSQL, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return r.query(ctx, listOrdersSQL)
}

func (r *OrderRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Order, error) {
	return r.query(ctx, listOrdersBySessionSQL, sessionID)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, token string, from, to domain.OrderStatus) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, updateOrderStatusSQL, token, string(from), string(to)))
	if err != nil {
		return nil, notFound(err, "order")
	}
	return &o, nil
}

type OrderItemRepository struct {
	pool *pgxpool.Pool
}

func (r *OrderItemRepository) CreateMany(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		item := items[i]
		batch.Queue(insertOrderItemSQL,
			item.ID, item.OrderID, item.MenuItemID, item.Name, item.UnitPrice, item.Quantity)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *OrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]domain.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, listOrderItemsSQL, idStrings(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
