// Package memory keeps every collection in process memory. It backs tests and
// STORE_DRIVER=memory local runs; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/google/uuid"
)

type Storage struct {
	mu          sync.RWMutex
	menu        map[uuid.UUID]domain.MenuItem
	orders      map[uuid.UUID]domain.Order
	orderItems  []domain.OrderItem
	sessions    map[uuid.UUID]domain.TableSession
	settings    *domain.RestaurantSettings
	audits      []domain.OrderStatusAudit
	importTasks map[uuid.UUID]domain.MenuImportTask

	now func() time.Time
}

func New() *Storage {
	return &Storage{
		menu:        make(map[uuid.UUID]domain.MenuItem),
		orders:      make(map[uuid.UUID]domain.Order),
		sessions:    make(map[uuid.UUID]domain.TableSession),
		importTasks: make(map[uuid.UUID]domain.MenuImportTask),
		now:         time.Now,
	}
}

func (s *Storage) Ping(ctx context.Context) error  { return ctx.Err() }
func (s *Storage) Close(ctx context.Context) error { return nil }

func (s *Storage) Repositories() repo.Repositories {
	return repo.Repositories{
		Menu:        &MenuRepository{s},
		Orders:      &OrderRepository{s},
		OrderItems:  &OrderItemRepository{s},
		Sessions:    &TableSessionRepository{s},
		Settings:    &SettingsRepository{s},
		Audits:      &OrderStatusAuditRepository{s},
		ImportTasks: &MenuImportTaskRepository{s},
	}
}

type MenuRepository struct{ s *Storage }

func (r *MenuRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := r.s.now()
	item.CreatedAt, item.UpdatedAt = now, now
	r.s.menu[item.ID] = *item
	return nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.menu[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

func (r *MenuRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]domain.MenuItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.s.menu[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *MenuRepository) List(ctx context.Context, onlyEnabled bool) ([]domain.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]domain.MenuItem, 0, len(r.s.menu))
	for _, item := range r.s.menu {
		if onlyEnabled && !item.Available() {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (r *MenuRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.menu[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = r.s.now()
	r.s.menu[item.ID] = *item
	return nil
}

func (r *MenuRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MenuItemStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.menu[id]
	if !ok {
		return domain.ErrNotFound
	}
	item.Status = status
	item.UpdatedAt = r.s.now()
	r.s.menu[id] = item
	return nil
}

func (r *MenuRepository) UpsertByName(ctx context.Context, item *domain.MenuItem) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	for id, existing := range r.s.menu {
		if existing.Name == item.Name {
			item.ID = id
			item.CreatedAt = existing.CreatedAt
			item.UpdatedAt = now
			r.s.menu[id] = *item
			return false, nil
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt, item.UpdatedAt = now, now
	r.s.menu[item.ID] = *item
	return true, nil
}

func (r *MenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.menu[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.menu, id)
	return nil
}

type OrderRepository struct{ s *Storage }

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.s.now()
	}
	order.UpdatedAt = order.CreatedAt
	stored := *order
	stored.Items = nil
	r.s.orders[order.ID] = stored
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r *OrderRepository) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *domain.Order
	for _, o := range r.s.orders {
		if o.Token != token {
			continue
		}
		if found == nil || o.CreatedAt.After(found.CreatedAt) {
			o := o
			found = &o
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (r *OrderRepository) ActiveTokenExists(ctx context.Context, token string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		if o.Token == token && o.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		orders = append(orders, o)
	}
	sortOrders(orders)
	return orders, nil
}

func (r *OrderRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var orders []domain.Order
	for _, o := range r.s.orders {
		if o.SessionID != nil && *o.SessionID == sessionID {
			orders = append(orders, o)
		}
	}
	sortOrders(orders)
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, token string, from, to domain.OrderStatus) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, o := range r.s.orders {
		if o.Token != token || o.Status != from {
			continue
		}
		o.Status = to
		o.UpdatedAt = r.s.now()
		r.s.orders[id] = o
		return &o, nil
	}
	return nil, domain.ErrNotFound
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
}

type OrderItemRepository struct{ s *Storage }

func (r *OrderItemRepository) CreateMany(ctx context.Context, items []domain.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	r.s.orderItems = append(r.s.orderItems, items...)
	return nil
}

func (r *OrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]domain.OrderItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[uuid.UUID]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = struct{}{}
	}
	var items []domain.OrderItem
	for _, item := range r.s.orderItems {
		if _, ok := wanted[item.OrderID]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

type TableSessionRepository struct{ s *Storage }

func (r *TableSessionRepository) Create(ctx context.Context, session *domain.TableSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.sessions {
		if existing.TableNumber == session.TableNumber && existing.Status == domain.SessionOpen {
			return domain.ErrConflict
		}
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.OpenedAt.IsZero() {
		session.OpenedAt = r.s.now()
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *TableSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TableSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

func (r *TableSessionRepository) FindOpenByTable(ctx context.Context, table int) (*domain.TableSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, session := range r.s.sessions {
		if session.TableNumber == table && session.Status == domain.SessionOpen {
			return &session, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *TableSessionRepository) ListOpen(ctx context.Context) ([]domain.TableSession, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var sessions []domain.TableSession
	for _, session := range r.s.sessions {
		if session.Status == domain.SessionOpen {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].TableNumber < sessions[j].TableNumber })
	return sessions, nil
}

func (r *TableSessionRepository) Close(ctx context.Context, id uuid.UUID, at time.Time) (*domain.TableSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if session.Status == domain.SessionClosed {
		return nil, domain.ErrInvalidTransition
	}
	session.Status = domain.SessionClosed
	session.ClosedAt = &at
	r.s.sessions[id] = session
	return &session, nil
}

type SettingsRepository struct{ s *Storage }

func (r *SettingsRepository) Get(ctx context.Context) (*domain.RestaurantSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.settings == nil {
		return nil, domain.ErrNotFound
	}
	settings := *r.s.settings
	return &settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.RestaurantSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	settings.ID = domain.SettingsID
	settings.UpdatedAt = r.s.now()
	stored := *settings
	r.s.settings = &stored
	return nil
}

type OrderStatusAuditRepository struct{ s *Storage }

func (r *OrderStatusAuditRepository) Create(ctx context.Context, audit *domain.OrderStatusAudit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	if audit.Timestamp.IsZero() {
		audit.Timestamp = r.s.now()
	}
	r.s.audits = append(r.s.audits, *audit)
	return nil
}

func (r *OrderStatusAuditRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID, limit int) ([]domain.OrderStatusAudit, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var audits []domain.OrderStatusAudit
	for _, a := range r.s.audits {
		if a.OrderID == orderID {
			audits = append(audits, a)
		}
	}
	sort.SliceStable(audits, func(i, j int) bool { return audits[i].Timestamp.After(audits[j].Timestamp) })
	if limit > 0 && len(audits) > limit {
		audits = audits[:limit]
	}
	return audits, nil
}

type MenuImportTaskRepository struct{ s *Storage }

func (r *MenuImportTaskRepository) Create(ctx context.Context, task *domain.MenuImportTask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := r.s.now()
	task.CreatedAt, task.UpdatedAt = now, now
	r.s.importTasks[task.ID] = *task
	return nil
}

func (r *MenuImportTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MenuImportTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.importTasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &task, nil
}

func (r *MenuImportTaskRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ImportTaskStatus, errorMsg string) error {
	return r.update(id, func(task *domain.MenuImportTask) {
		task.Status = status
		if errorMsg != "" {
			task.ErrorMessage = errorMsg
		}
	})
}

func (r *MenuImportTaskRepository) Complete(ctx context.Context, id uuid.UUID, imported, skipped int) error {
	return r.update(id, func(task *domain.MenuImportTask) {
		task.Status = domain.ImportCompleted
		task.Imported = imported
		task.Skipped = skipped
		task.ErrorMessage = ""
	})
}

func (r *MenuImportTaskRepository) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	return r.update(id, func(task *domain.MenuImportTask) { task.RetryCount++ })
}

func (r *MenuImportTaskRepository) update(id uuid.UUID, fn func(*domain.MenuImportTask)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.importTasks[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&task)
	task.UpdatedAt = r.s.now()
	r.s.importTasks[id] = task
	return nil
}
