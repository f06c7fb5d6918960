package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTokenAttempts  = 10
	historyLimit      = 50
	changedByCustomer = "customer"
)

type OrderService struct {
	menuRepo        repo.MenuRepository
	orderRepo       repo.OrderRepository
	orderItemRepo   repo.OrderItemRepository
	auditRepo       repo.OrderStatusAuditRepository
	settingsService *SettingsService
	sessionService  *SessionService
	broker          queue.Broker
	notifier        notify.Notifier
	logger          *zap.SugaredLogger

	loc      *time.Location
	now      func() time.Time
	newToken func() string
	tokenMu  sync.Mutex
}

func NewOrderService(
	menuRepo repo.MenuRepository,
	orderRepo repo.OrderRepository,
	orderItemRepo repo.OrderItemRepository,
	auditRepo repo.OrderStatusAuditRepository,
	settingsService *SettingsService,
	sessionService *SessionService,
	broker queue.Broker,
	notifier notify.Notifier,
	loc *time.Location,
	logger *zap.SugaredLogger,
) *OrderService {
	if loc == nil {
		loc = time.Local
	}
	return &OrderService{
		menuRepo:        menuRepo,
		orderRepo:       orderRepo,
		orderItemRepo:   orderItemRepo,
		auditRepo:       auditRepo,
		settingsService: settingsService,
		sessionService:  sessionService,
		broker:          broker,
		notifier:        notifier,
		logger:          logger,
		loc:             loc,
		now:             time.Now,
		newToken:        randomToken,
	}
}

func randomToken() string {
	return strconv.Itoa(10000 + rand.IntN(90000))
}

type PlaceOrderInput struct {
	Lines       []domain.OrderLine
	Fulfillment domain.Fulfillment
}

// mergeLines sums quantities of repeated menu items, keeping first-seen order.
func mergeLines(lines []domain.OrderLine) ([]domain.OrderLine, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("items", "at least one item is required")
	}

	merged := make([]domain.OrderLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.MenuItemID == uuid.Nil {
			return nil, domain.NewValidationError("menu_item_id", "is required")
		}
		if line.Quantity < 1 {
			return nil, domain.NewValidationError("quantity", "must be at least 1")
		}
		if i, ok := index[line.MenuItemID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.MenuItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	lines, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.MenuItemID)
	}

	menuItems, err := s.menuRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	byID := make(map[uuid.UUID]domain.MenuItem, len(menuItems))
	for _, item := range menuItems {
		byID[item.ID] = item
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		menuItem, ok := byID[line.MenuItemID]
		if !ok || !menuItem.Available() {
			return nil, domain.NewValidationError("menu_item_id", fmt.Sprintf("menu item %s is not available", line.MenuItemID))
		}
		items = append(items, domain.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
			Quantity:   line.Quantity,
		})
	}

	order := &domain.Order{
		Status:      domain.OrderCurrent,
		Total:       domain.ItemsTotal(items),
		Fulfillment: in.Fulfillment,
		CreatedAt:   s.now(),
	}

	if table, dineIn := in.Fulfillment.Table(); dineIn {
		settings, err := s.settingsService.Get(ctx)
		if err != nil {
			return nil, err
		}
		if !settings.ValidTable(table) {
			return nil, domain.NewValidationError("table_number", fmt.Sprintf("must be between 1 and %d", settings.TotalTables))
		}

		err = s.sessionService.WithOpenSession(ctx, table, func(session *domain.TableSession) error {
			order.SessionID = &session.ID
			return s.insertOrder(ctx, order, items)
		})
		if err != nil {
			return nil, err
		}
	} else if err := s.insertOrder(ctx, order, items); err != nil {
		return nil, err
	}
	order.Items = items

	s.publishStatusEvent(ctx, domain.EventOrderCreated, order, "", changedByCustomer)
	s.notifier.Changed(ctx, domain.TableOrders, domain.ChangeInsert)
	s.notifier.Changed(ctx, domain.TableOrderItems, domain.ChangeInsert)

	s.logger.Infow("order placed",
		"order_id", order.ID,
		"token", order.Token,
		"fulfillment", order.Fulfillment.String(),
		"total", order.Total.StringFixed(2),
	)

	return order, nil
}

// insertOrder stores the order with a fresh token, then its items. The order row is
// removed again when the items cannot be stored.
func (s *OrderService) insertOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	if err := s.insertWithToken(ctx, order); err != nil {
		return err
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := s.orderItemRepo.CreateMany(ctx, items); err != nil {
		if delErr := s.orderRepo.Delete(ctx, order.ID); delErr != nil {
			s.logger.Errorw("failed to remove order after item insert failure", "order_id", order.ID, "error", delErr)
		}
		return fmt.Errorf("failed to create order items: %w", err)
	}
	return nil
}

// insertWithToken assigns a token no active order holds and inserts the order row.
func (s *OrderService) insertWithToken(ctx context.Context, order *domain.Order) error {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token := s.newToken()
		taken, err := s.orderRepo.ActiveTokenExists(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to check token: %w", err)
		}
		if taken {
			continue
		}

		order.Token = token
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	}

	return fmt.Errorf("no free order token after %d attempts: %w", maxTokenAttempts, domain.ErrConflict)
}

func (s *OrderService) MarkPrepared(ctx context.Context, token, changedBy string) (*domain.Order, error) {
	return s.advance(ctx, token, domain.OrderPrepared, changedBy)
}

func (s *OrderService) MarkReceived(ctx context.Context, token, changedBy string) (*domain.Order, error) {
	return s.advance(ctx, token, domain.OrderReceived, changedBy)
}

// advance moves the order holding token one step forward to status to. The update only
// applies while the order is in the step right before to.
func (s *OrderService) advance(ctx context.Context, token string, to domain.OrderStatus, changedBy string) (*domain.Order, error) {
	from, ok := to.Previous()
	if !ok {
		return nil, fmt.Errorf("cannot move an order to %s: %w", to, domain.ErrInvalidTransition)
	}

	order, err := s.orderRepo.UpdateStatus(ctx, token, from, to)
	if errors.Is(err, domain.ErrNotFound) {
		existing, getErr := s.orderRepo.GetByToken(ctx, token)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("order %s is %s, cannot move to %s: %w", token, existing.Status, to, domain.ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}

	s.publishStatusEvent(ctx, domain.EventOrderStatusChanged, order, from, changedBy)
	s.notifier.Changed(ctx, domain.TableOrders, domain.ChangeUpdate)

	s.logger.Infow("order status changed", "order_id", order.ID, "token", token, "old_status", from, "new_status", to)

	return order, nil
}

func (s *OrderService) attachItems(ctx context.Context, order *domain.Order) error {
	items, err := s.orderItemRepo.ListByOrderIDs(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return fmt.Errorf("failed to list order items: %w", err)
	}
	if items == nil {
		items = []domain.OrderItem{}
	}
	order.Items = items
	return nil
}

func (s *OrderService) publishStatusEvent(ctx context.Context, eventType string, order *domain.Order, old domain.OrderStatus, changedBy string) {
	event := domain.OrderStatusEvent{
		EventType: eventType,
		OrderID:   order.ID.String(),
		Token:     order.Token,
		OldStatus: old,
		NewStatus: order.Status,
		ChangedBy: changedBy,
		Timestamp: s.now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorw("failed to marshal status event", "order_id", order.ID, "error", err)
		return
	}

	if err := s.broker.Publish(ctx, queue.QueueOrderStatus, body); err != nil {
		s.logger.Errorw("failed to publish status event", "order_id", order.ID, "error", err)
	}
}

// ProcessStatusEvent stores the audit record of a status event.
func (s *OrderService) ProcessStatusEvent(ctx context.Context, event domain.OrderStatusEvent) error {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", event.OrderID, err)
	}

	audit := &domain.OrderStatusAudit{
		OrderID:   orderID,
		Token:     event.Token,
		EventType: event.EventType,
		OldStatus: event.OldStatus,
		NewStatus: event.NewStatus,
		ChangedBy: event.ChangedBy,
		Timestamp: event.Timestamp,
	}

	if err := s.auditRepo.Create(ctx, audit); err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	return nil
}

// Board returns every order grouped by status.
func (s *OrderService) Board(ctx context.Context) (domain.Board, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return domain.Board{}, fmt.Errorf("failed to list orders: %w", err)
	}

	items, err := s.orderItemRepo.ListByOrderIDs(ctx, domain.OrderIDs(orders))
	if err != nil {
		return domain.Board{}, fmt.Errorf("failed to list order items: %w", err)
	}
	domain.AttachItems(orders, items)

	return domain.PartitionByStatus(orders), nil
}

func (s *OrderService) GetByToken(ctx context.Context, token string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) History(ctx context.Context, token string) ([]domain.OrderStatusAudit, error) {
	order, err := s.orderRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	audits, err := s.auditRepo.GetByOrderID(ctx, order.ID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get order history: %w", err)
	}
	if audits == nil {
		audits = []domain.OrderStatusAudit{}
	}
	return audits, nil
}

// Revenue sums received orders created inside window, evaluated now in the
// configured location.
func (s *OrderService) Revenue(ctx context.Context, window domain.RevenueWindow) (domain.Revenue, error) {
	if !window.Valid() {
		return domain.Revenue{}, domain.NewValidationError("window", "must be one of all, today, yesterday, this_month, last_month")
	}

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return domain.Revenue{}, fmt.Errorf("failed to list orders: %w", err)
	}

	rev := domain.SumRevenue(orders, window, s.now().In(s.loc))
	rev.Total = rev.Total.Round(2)
	return rev, nil
}
