package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// tableLocks serialises session lookups per table number within this process.
type tableLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func (l *tableLocks) lock(table int) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int]*sync.Mutex)
	}
	m, ok := l.locks[table]
	if !ok {
		m = &sync.Mutex{}
		l.locks[table] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

type SessionService struct {
	sessionRepo   repo.TableSessionRepository
	orderRepo     repo.OrderRepository
	orderItemRepo repo.OrderItemRepository
	notifier      notify.Notifier
	logger        *zap.SugaredLogger
	locks         tableLocks
	now           func() time.Time
}

func NewSessionService(
	sessionRepo repo.TableSessionRepository,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	notifier notify.Notifier,
	logger *zap.SugaredLogger,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		notifier:      notifier,
		logger:        logger,
		now:           time.Now,
	}
}

// OpenOrReuse returns the open session of table, opening one if there is none.
func (s *SessionService) OpenOrReuse(ctx context.Context, table int) (*domain.TableSession, error) {
	unlock := s.locks.lock(table)
	defer unlock()

	session, _, err := s.openOrReuse(ctx, table)
	return session, err
}

// WithOpenSession runs fn against the open session of table while holding the
// table lock, so the session cannot be closed under fn. A session opened by this
// call is closed again when fn fails.
func (s *SessionService) WithOpenSession(ctx context.Context, table int, fn func(*domain.TableSession) error) error {
	unlock := s.locks.lock(table)
	defer unlock()

	session, opened, err := s.openOrReuse(ctx, table)
	if err != nil {
		return err
	}

	if err := fn(session); err != nil {
		if opened {
			if _, closeErr := s.sessionRepo.Close(ctx, session.ID, s.now()); closeErr != nil {
				s.logger.Errorw("failed to close unused session", "session_id", session.ID, "error", closeErr)
			} else {
				s.notifier.Changed(ctx, domain.TableSessions, domain.ChangeUpdate)
			}
		}
		return err
	}

	return nil
}

// openOrReuse expects the table lock to be held.
func (s *SessionService) openOrReuse(ctx context.Context, table int) (*domain.TableSession, bool, error) {
	session, err := s.sessionRepo.FindOpenByTable(ctx, table)
	if err == nil {
		return session, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to find open session: %w", err)
	}

	session = &domain.TableSession{
		TableNumber: table,
		Status:      domain.SessionOpen,
		OpenedAt:    s.now(),
	}

	err = s.sessionRepo.Create(ctx, session)
	if errors.Is(err, domain.ErrConflict) {
		// another process opened it between our lookup and insert
		session, err = s.sessionRepo.FindOpenByTable(ctx, table)
		return session, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open session: %w", err)
	}

	s.notifier.Changed(ctx, domain.TableSessions, domain.ChangeInsert)
	s.logger.Infow("table session opened", "session_id", session.ID, "table_number", table)

	return session, true, nil
}

func (s *SessionService) Bill(ctx context.Context, sessionID uuid.UUID) (*domain.Bill, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	bill, err := s.billFor(ctx, *session)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s *SessionService) billFor(ctx context.Context, session domain.TableSession) (domain.Bill, error) {
	orders, err := s.orderRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("failed to list session orders: %w", err)
	}

	items, err := s.orderItemRepo.ListByOrderIDs(ctx, domain.OrderIDs(orders))
	if err != nil {
		return domain.Bill{}, fmt.Errorf("failed to list session items: %w", err)
	}
	domain.AttachItems(orders, items)

	return domain.BuildBill(session, orders), nil
}

// OpenBills returns the bill of every open session, ordered by table number.
func (s *SessionService) OpenBills(ctx context.Context) ([]domain.Bill, error) {
	sessions, err := s.sessionRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}

	bills := make([]domain.Bill, 0, len(sessions))
	for _, session := range sessions {
		bill, err := s.billFor(ctx, session)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}

	return bills, nil
}

// Close ends a session. Its orders are left as they are.
func (s *SessionService) Close(ctx context.Context, sessionID uuid.UUID) (*domain.TableSession, error) {
	open, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(open.TableNumber)
	defer unlock()

	session, err := s.sessionRepo.Close(ctx, sessionID, s.now())
	if err != nil {
		return nil, err
	}

	s.notifier.Changed(ctx, domain.TableSessions, domain.ChangeUpdate)
	s.logger.Infow("table session closed", "session_id", session.ID, "table_number", session.TableNumber)

	return session, nil
}
