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

type TableSessionRepository struct {
	pool *pgxpool.Pool
}

func scanSession(row pgx.Row) (domain.TableSession, error) {
	var s domain.TableSession
	err := row.Scan(&s.ID, &s.TableNumber, &s.Status, &s.OpenedAt, &s.ClosedAt)
	return s, err
}

func (r *TableSessionRepository) Create(ctx context.Context, session *domain.TableSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = time.Now()
	}

	_, err := r.pool.Exec(ctx, insertSessionSQL,
		session.ID, session.TableNumber, string(session.Status), session.OpenedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("table %d already has an open session: %w", session.TableNumber, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create table session: %w", err)
	}

	return nil
}

func (r *TableSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TableSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, getSessionSQL, id))
	if err != nil {
		return nil, notFound(err, "table session")
	}
	return &s, nil
}

func (r *TableSessionRepository) FindOpenByTable(ctx context.Context, table int) (*domain.TableSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, findOpenSessionSQL, table))
	if err != nil {
		return nil, notFound(err, "table session")
	}
	return &s, nil
}

func (r *TableSessionRepository) ListOpen(ctx context.Context) ([]domain.TableSession, error) {
	rows, err := r.pool.Query(ctx, listOpenSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list table sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.TableSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (r *TableSessionRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) (*domain.TableSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, closeSessionSQL, id, at))
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to close table session: %w", err)
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("table session already closed: %w", domain.ErrInvalidTransition)
}

type SettingsRepository struct {
	pool *pgxpool.Pool
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.RestaurantSettings, error) {
	var s domain.RestaurantSettings
	err := r.pool.QueryRow(ctx, getSettingsSQL, domain.SettingsID).Scan(&s.ID, &s.TotalTables, &s.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "settings")
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.RestaurantSettings) error {
	settings.ID = domain.SettingsID
	err := r.pool.QueryRow(ctx, upsertSettingsSQL, settings.ID, settings.TotalTables).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
