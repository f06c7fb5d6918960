package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/Beka01247/restaurant-orders/internal/store/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type testEnv struct {
	repos    repo.Repositories
	broker   *queue.MemoryBroker
	settings *SettingsService
	menu     *MenuService
	sessions *SessionService
	orders   *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repos := memory.New().Repositories()
	return newTestEnvWith(t, repos)
}

func newTestEnvWith(t *testing.T, repos repo.Repositories) *testEnv {
	t.Helper()

	logger := zap.NewNop().Sugar()
	broker := queue.NewMemoryBroker(1)
	notifier := notify.NewPublisher(broker, logger)

	settings := NewSettingsService(repos.Settings, notifier, logger)
	sessions := NewSessionService(repos.Sessions, repos.Orders, repos.OrderItems, notifier, logger)

	return &testEnv{
		repos:    repos,
		broker:   broker,
		settings: settings,
		menu:     NewMenuService(repos.Menu, notifier, logger),
		sessions: sessions,
		orders: NewOrderService(
			repos.Menu,
			repos.Orders,
			repos.OrderItems,
			repos.Audits,
			settings,
			sessions,
			broker,
			notifier,
			nil,
			logger,
		),
	}
}

func (e *testEnv) addMenuItem(t *testing.T, name, price string) domain.MenuItem {
	t.Helper()

	item, err := e.menu.Create(context.Background(), CreateMenuItemInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("create menu item %q: %v", name, err)
	}
	return *item
}

func (e *testEnv) placeOrder(t *testing.T, f domain.Fulfillment, lines ...domain.OrderLine) *domain.Order {
	t.Helper()

	order, err := e.orders.PlaceOrder(context.Background(), PlaceOrderInput{Lines: lines, Fulfillment: f})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	return order
}

func line(item domain.MenuItem, qty int) domain.OrderLine {
	return domain.OrderLine{MenuItemID: item.ID, Quantity: qty}
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()

	var v domain.ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected validation error on %s, got %v", field, err)
	}
	if v.Field != field {
		t.Errorf("validation field = %q, want %q", v.Field, field)
	}
}

func TestMergeLines(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	merged, err := mergeLines([]domain.OrderLine{
		{MenuItemID: a, Quantity: 1},
		{MenuItemID: b, Quantity: 2},
		{MenuItemID: a, Quantity: 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(merged) != 2 || merged[0].MenuItemID != a || merged[0].Quantity != 4 || merged[1].Quantity != 2 {
		t.Errorf("unexpected merge %+v", merged)
	}

	tests := []struct {
		name  string
		lines []domain.OrderLine
		field string
	}{
		{"empty", nil, "items"},
		{"missing id", []domain.OrderLine{{Quantity: 1}}, "menu_item_id"},
		{"zero quantity", []domain.OrderLine{{MenuItemID: a}}, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mergeLines(tt.lines)
			assertValidation(t, err, tt.field)
		})
	}
}
