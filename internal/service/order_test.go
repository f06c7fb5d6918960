package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/Beka01247/restaurant-orders/internal/store/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPlaceOrderSnapshotsPricesAndMergesLines(t *testing.T) {
	env := newTestEnv(t)
	burger := env.addMenuItem(t, "Burger", "10.00")
	fries := env.addMenuItem(t, "Fries", "2.50")

	order := env.placeOrder(t, domain.Parcel(), line(burger, 1), line(fries, 2), line(burger, 1))

	if order.Status != domain.OrderCurrent {
		t.Errorf("status = %s, want current", order.Status)
	}
	if !order.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("total = %s, want 25.00", order.Total)
	}
	if len(order.Token) != 5 {
		t.Errorf("token %q is not five digits", order.Token)
	}
	if order.SessionID != nil {
		t.Errorf("parcel order got session %s", order.SessionID)
	}
	if len(order.Items) != 2 || order.Items[0].Quantity != 2 || order.Items[0].Name != "Burger" {
		t.Errorf("unexpected items %+v", order.Items)
	}

	// later price changes leave the order untouched
	newPrice := decimal.RequireFromString("99")
	if _, err := env.menu.Update(context.Background(), burger.ID, domain.MenuItemPatch{Price: &newPrice}); err != nil {
		t.Fatal(err)
	}
	got, err := env.orders.GetByToken(context.Background(), order.Token)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Total.Equal(order.Total) || !got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10")) {
		t.Errorf("stored order changed with menu price: %+v", got)
	}
}

func TestPlaceOrderRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	soup := env.addMenuItem(t, "Soup", "4.00")
	tea := env.addMenuItem(t, "Tea", "1.00")
	if _, err := env.menu.SetStatus(ctx, tea.ID, domain.MenuItemDisabled); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		in    PlaceOrderInput
		field string
	}{
		{"no lines", PlaceOrderInput{}, "items"},
		{"disabled item", PlaceOrderInput{Lines: []domain.OrderLine{line(tea, 1)}}, "menu_item_id"},
		{"unknown item", PlaceOrderInput{Lines: []domain.OrderLine{{MenuItemID: uuid.New(), Quantity: 1}}}, "menu_item_id"},
		{"table zero", PlaceOrderInput{Lines: []domain.OrderLine{line(soup, 1)}, Fulfillment: domain.DineIn(0)}, "table_number"},
		{"table above total", PlaceOrderInput{Lines: []domain.OrderLine{line(soup, 1)}, Fulfillment: domain.DineIn(11)}, "table_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.PlaceOrder(ctx, tt.in)
			assertValidation(t, err, tt.field)
		})
	}

	orders, _ := env.repos.Orders.List(ctx)
	if len(orders) != 0 {
		t.Errorf("rejected input stored %d orders", len(orders))
	}
}

func TestDineInOrdersShareTableSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pasta := env.addMenuItem(t, "Pasta", "8.00")

	first := env.placeOrder(t, domain.DineIn(3), line(pasta, 1))
	second := env.placeOrder(t, domain.DineIn(3), line(pasta, 2))
	other := env.placeOrder(t, domain.DineIn(4), line(pasta, 1))

	if first.SessionID == nil || second.SessionID == nil || *first.SessionID != *second.SessionID {
		t.Fatalf("orders at table 3 have sessions %v and %v", first.SessionID, second.SessionID)
	}
	if *other.SessionID == *first.SessionID {
		t.Error("table 4 reused the session of table 3")
	}

	bill, err := env.sessions.Bill(ctx, *first.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if bill.OrderCount != 2 || len(bill.Lines) != 1 || bill.Lines[0].Quantity != 3 {
		t.Errorf("unexpected bill %+v", bill)
	}
	if !bill.Total.Equal(decimal.RequireFromString("24")) {
		t.Errorf("bill total = %s, want 24", bill.Total)
	}
}

type failingItems struct {
	repo.OrderItemRepository
}

func (failingItems) CreateMany(context.Context, []domain.OrderItem) error {
	return errors.New("disk full")
}

func TestPlaceOrderRemovesOrderWhenItemsFail(t *testing.T) {
	repos := memory.New().Repositories()
	repos.OrderItems = failingItems{repos.OrderItems}
	env := newTestEnvWith(t, repos)
	ctx := context.Background()
	cake := env.addMenuItem(t, "Cake", "5.00")

	if _, err := env.orders.PlaceOrder(ctx, PlaceOrderInput{Lines: []domain.OrderLine{line(cake, 1)}}); err == nil {
		t.Fatal("expected error")
	}

	orders, _ := repos.Orders.List(ctx)
	if len(orders) != 0 {
		t.Errorf("order left behind after item failure: %+v", orders)
	}
}

func TestTokensAreUniqueAmongActiveOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.orders.newToken = func() string { return "12345" }
	cola := env.addMenuItem(t, "Cola", "1.50")

	first := env.placeOrder(t, domain.Parcel(), line(cola, 1))

	_, err := env.orders.PlaceOrder(ctx, PlaceOrderInput{Lines: []domain.OrderLine{line(cola, 1)}})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict while token is held, got %v", err)
	}

	if _, err := env.orders.MarkPrepared(ctx, first.Token, "kitchen"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.orders.MarkReceived(ctx, first.Token, "kitchen"); err != nil {
		t.Fatal(err)
	}

	second := env.placeOrder(t, domain.Parcel(), line(cola, 1))
	if second.Token != first.Token {
		t.Errorf("token = %s, want released token %s", second.Token, first.Token)
	}
}

func TestTokenRetriesUntilFree(t *testing.T) {
	env := newTestEnv(t)
	cola := env.addMenuItem(t, "Cola", "1.50")

	tokens := []string{"11111", "11111", "22222"}
	env.orders.newToken = func() string {
		tok := tokens[0]
		tokens = tokens[1:]
		return tok
	}

	first := env.placeOrder(t, domain.Parcel(), line(cola, 1))
	second := env.placeOrder(t, domain.Parcel(), line(cola, 1))

	if first.Token != "11111" || second.Token != "22222" {
		t.Errorf("tokens = %s, %s", first.Token, second.Token)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	salad := env.addMenuItem(t, "Salad", "6.00")
	order := env.placeOrder(t, domain.Parcel(), line(salad, 1))

	if _, err := env.orders.MarkReceived(ctx, order.Token, "kitchen"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("current to received: expected ErrInvalidTransition, got %v", err)
	}

	prepared, err := env.orders.MarkPrepared(ctx, order.Token, "kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if prepared.Status != domain.OrderPrepared || len(prepared.Items) != 1 {
		t.Errorf("unexpected prepared order %+v", prepared)
	}

	if _, err := env.orders.MarkPrepared(ctx, order.Token, "kitchen"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("prepared twice: expected ErrInvalidTransition, got %v", err)
	}

	received, err := env.orders.MarkReceived(ctx, order.Token, "kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if received.Status != domain.OrderReceived {
		t.Errorf("status = %s, want received", received.Status)
	}

	if _, err := env.orders.MarkPrepared(ctx, "00000", "kitchen"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown token: expected ErrNotFound, got %v", err)
	}
}

func TestBoardGroupsOrdersByStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tea := env.addMenuItem(t, "Tea", "1.00")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var tokens []string
	for i := 0; i < 4; i++ {
		env.orders.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		tokens = append(tokens, env.placeOrder(t, domain.Parcel(), line(tea, 1)).Token)
	}

	if _, err := env.orders.MarkPrepared(ctx, tokens[1], "kitchen"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.orders.MarkPrepared(ctx, tokens[2], "kitchen"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.orders.MarkReceived(ctx, tokens[2], "kitchen"); err != nil {
		t.Fatal(err)
	}

	board, err := env.orders.Board(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Current) != 2 || len(board.Prepared) != 1 || len(board.Received) != 1 {
		t.Fatalf("unexpected board sizes %d/%d/%d", len(board.Current), len(board.Prepared), len(board.Received))
	}
	if board.Current[0].Token != tokens[0] || board.Current[1].Token != tokens[3] {
		t.Errorf("current orders are not oldest first")
	}
	if len(board.Prepared[0].Items) != 1 {
		t.Errorf("board orders are missing items")
	}
}

func TestRevenueSumsReceivedOrdersInWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.orders.loc = time.UTC
	steak := env.addMenuItem(t, "Steak", "20.005")

	now := time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC)
	at := func(ts time.Time) { env.orders.now = func() time.Time { return ts } }

	receive := func(ts time.Time) {
		at(ts)
		order := env.placeOrder(t, domain.Parcel(), line(steak, 1))
		if _, err := env.orders.MarkPrepared(ctx, order.Token, "k"); err != nil {
			t.Fatal(err)
		}
		if _, err := env.orders.MarkReceived(ctx, order.Token, "k"); err != nil {
			t.Fatal(err)
		}
	}

	receive(now.Add(-time.Hour))
	receive(now.Add(-2 * time.Hour))
	receive(now.AddDate(0, 0, -1))
	receive(now.AddDate(0, -1, 0))
	at(now)
	env.placeOrder(t, domain.Parcel(), line(steak, 1))

	tests := []struct {
		window domain.RevenueWindow
		count  int
		total  string
	}{
		{domain.RevenueToday, 2, "40.01"},
		{domain.RevenueYesterday, 1, "20.01"},
		{domain.RevenueThisMonth, 3, "60.02"},
		{domain.RevenueLastMonth, 1, "20.01"},
		{domain.RevenueAll, 4, "80.02"},
	}
	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			rev, err := env.orders.Revenue(ctx, tt.window)
			if err != nil {
				t.Fatal(err)
			}
			if rev.OrderCount != tt.count || !rev.Total.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("got %d orders totalling %s, want %d totalling %s", rev.OrderCount, rev.Total, tt.count, tt.total)
			}
		})
	}

	_, err := env.orders.Revenue(ctx, "week")
	assertValidation(t, err, "window")
}

func TestHistoryOfUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.orders.History(context.Background(), "99999"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessStatusEventStoresAudit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tea := env.addMenuItem(t, "Tea", "1.00")
	order := env.placeOrder(t, domain.Parcel(), line(tea, 1))

	event := domain.OrderStatusEvent{
		EventType: domain.EventOrderStatusChanged,
		OrderID:   order.ID.String(),
		Token:     order.Token,
		OldStatus: domain.OrderCurrent,
		NewStatus: domain.OrderPrepared,
		ChangedBy: "kitchen",
		Timestamp: time.Now(),
	}
	if err := env.orders.ProcessStatusEvent(ctx, event); err != nil {
		t.Fatal(err)
	}

	history, err := env.orders.History(ctx, order.Token)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].NewStatus != domain.OrderPrepared || history[0].OrderID != order.ID {
		t.Errorf("unexpected history %+v", history)
	}

	event.OrderID = "not-a-uuid"
	if err := env.orders.ProcessStatusEvent(ctx, event); err == nil {
		t.Error("expected error for malformed order id")
	}
}

func TestHistoryCoversOnlyTheOrderHoldingToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.orders.newToken = func() string { return "12345" }
	err := env.broker.Subscribe(ctx, queue.QueueOrderStatus, func(ctx context.Context, body []byte) error {
		var event domain.OrderStatusEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return err
		}
		return env.orders.ProcessStatusEvent(ctx, event)
	})
	if err != nil {
		t.Fatal(err)
	}
	rice := env.addMenuItem(t, "Rice", "3.00")

	first := env.placeOrder(t, domain.Parcel(), line(rice, 1))
	if _, err := env.orders.MarkPrepared(ctx, first.Token, "kitchen"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.orders.MarkReceived(ctx, first.Token, "kitchen"); err != nil {
		t.Fatal(err)
	}

	second := env.placeOrder(t, domain.Parcel(), line(rice, 2))
	if second.Token != first.Token {
		t.Fatalf("token = %s, want reused %s", second.Token, first.Token)
	}

	history, err := env.orders.History(ctx, second.Token)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("history has %d entries, want 1: %+v", len(history), history)
	}
	if history[0].OrderID != second.ID || history[0].NewStatus != domain.OrderCurrent {
		t.Errorf("unexpected history entry %+v", history[0])
	}
}

func TestFailedDineInOrderLeavesNoOpenSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.orders.newToken = func() string { return "54321" }
	soup := env.addMenuItem(t, "Soup", "4.00")

	env.placeOrder(t, domain.Parcel(), line(soup, 1))

	_, err := env.orders.PlaceOrder(ctx, PlaceOrderInput{Lines: []domain.OrderLine{line(soup, 1)}, Fulfillment: domain.DineIn(4)})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	bills, err := env.sessions.OpenBills(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(bills) != 0 {
		t.Errorf("empty session left open: %+v", bills)
	}
}

func TestDisabledMenuItemKeepsOrderLinesReadable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pie := env.addMenuItem(t, "Pie", "6.40")

	order := env.placeOrder(t, domain.Parcel(), line(pie, 2))

	if _, err := env.menu.SetStatus(ctx, pie.ID, domain.MenuItemDisabled); err != nil {
		t.Fatal(err)
	}

	got, err := env.orders.GetByToken(ctx, order.Token)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %+v, want one line", got.Items)
	}
	it := got.Items[0]
	if it.Name != "Pie" || !it.UnitPrice.Equal(decimal.RequireFromString("6.40")) || it.Quantity != 2 {
		t.Errorf("order line changed after disabling: %+v", it)
	}
	if !got.Total.Equal(decimal.RequireFromString("12.80")) {
		t.Errorf("total = %s, want 12.80", got.Total)
	}

	board, err := env.orders.Board(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(board.Current) != 1 || board.Current[0].Items[0].Name != "Pie" {
		t.Errorf("board lost order line: %+v", board.Current)
	}
}
