package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/ratelimiter"
	"github.com/Beka01247/restaurant-orders/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func createMenuItem(t *testing.T, app *application, token, name, price string) domain.MenuItem {
	t.Helper()

	rr := executeRequest(app, http.MethodPost, "/api/v1/admin/menu", map[string]any{
		"name":  name,
		"price": json.Number(price),
	}, token)
	checkResponseCode(t, http.StatusCreated, rr)

	var item domain.MenuItem
	decodeData(t, rr, &item)
	return item
}

func placeOrder(t *testing.T, app *application, body map[string]any) domain.Order {
	t.Helper()

	rr := executeRequest(app, http.MethodPost, "/api/v1/orders", body, "")
	checkResponseCode(t, http.StatusCreated, rr)

	var order domain.Order
	decodeData(t, rr, &order)
	return order
}

func TestHealthCheck(t *testing.T) {
	app := newTestApplication(t, config{})

	rr := executeRequest(app, http.MethodGet, "/api/v1/health", nil, "")
	checkResponseCode(t, http.StatusOK, rr)

	_ = app.broker.Close()
	rr = executeRequest(app, http.MethodGet, "/api/v1/health", nil, "")
	checkResponseCode(t, http.StatusServiceUnavailable, rr)
}

func TestStaffRoutesRequireToken(t *testing.T) {
	app := newTestApplication(t, config{})

	t.Run("missing header", func(t *testing.T) {
		rr := executeRequest(app, http.MethodGet, "/api/v1/admin/orders", nil, "")
		checkResponseCode(t, http.StatusUnauthorized, rr)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr := executeRequest(app, http.MethodGet, "/api/v1/admin/orders", nil, "not-a-jwt")
		checkResponseCode(t, http.StatusUnauthorized, rr)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := executeRequest(app, http.MethodPost, "/api/v1/auth/login", LoginRequest{Password: "nope"}, "")
		checkResponseCode(t, http.StatusUnauthorized, rr)
	})

	t.Run("valid token", func(t *testing.T) {
		rr := executeRequest(app, http.MethodGet, "/api/v1/admin/orders", nil, staffToken(t, app))
		checkResponseCode(t, http.StatusOK, rr)
	})
}

func TestPlaceAndTrackOrder(t *testing.T) {
	app := newTestApplication(t, config{})
	token := staffToken(t, app)
	burger := createMenuItem(t, app, token, "Burger", "10.00")
	fries := createMenuItem(t, app, token, "Fries", "5.00")

	order := placeOrder(t, app, map[string]any{
		"service_type": "dine-in",
		"table_number": 3,
		"items": []map[string]any{
			{"menu_item_id": burger.ID, "quantity": 2},
			{"menu_item_id": fries.ID, "quantity": 1},
		},
	})

	if !order.Total.Equal(decimal.RequireFromString("25")) || len(order.Items) != 2 {
		t.Errorf("unexpected order %+v", order)
	}
	if table, dineIn := order.Fulfillment.Table(); !dineIn || table != 3 {
		t.Errorf("fulfillment = %s, want dine-in at table 3", order.Fulfillment)
	}

	rr := executeRequest(app, http.MethodGet, "/api/v1/orders/"+order.Token, nil, "")
	checkResponseCode(t, http.StatusOK, rr)

	var tracked domain.Order
	decodeData(t, rr, &tracked)
	if tracked.ID != order.ID || tracked.Status != domain.OrderCurrent {
		t.Errorf("unexpected tracked order %+v", tracked)
	}

	rr = executeRequest(app, http.MethodGet, "/api/v1/orders/00000", nil, "")
	checkResponseCode(t, http.StatusNotFound, rr)
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	app := newTestApplication(t, config{})
	item := createMenuItem(t, app, staffToken(t, app), "Soup", "4.00")
	items := []map[string]any{{"menu_item_id": item.ID, "quantity": 1}}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"dine-in without table", map[string]any{"service_type": "dine-in", "items": items}},
		{"table out of range", map[string]any{"service_type": "dine-in", "table_number": 99, "items": items}},
		{"unknown service type", map[string]any{"service_type": "delivery", "items": items}},
		{"no items", map[string]any{"service_type": "parcel", "items": []any{}}},
		{"zero quantity", map[string]any{"service_type": "parcel", "items": []map[string]any{{"menu_item_id": item.ID, "quantity": 0}}}},
		{"unknown item", map[string]any{"service_type": "parcel", "items": []map[string]any{{"menu_item_id": uuid.New(), "quantity": 1}}}},
		{"unknown field", map[string]any{"service_type": "parcel", "items": items, "tip": 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := executeRequest(app, http.MethodPost, "/api/v1/orders", tt.body, "")
			checkResponseCode(t, http.StatusBadRequest, rr)
		})
	}
}

func TestKitchenMovesOrdersForward(t *testing.T) {
	app := newTestApplication(t, config{})
	token := staffToken(t, app)
	tea := createMenuItem(t, app, token, "Tea", "1.50")
	order := placeOrder(t, app, map[string]any{
		"service_type": "parcel",
		"items":        []map[string]any{{"menu_item_id": tea.ID, "quantity": 1}},
	})

	base := "/api/v1/admin/orders/" + order.Token

	rr := executeRequest(app, http.MethodPost, base+"/received", nil, token)
	checkResponseCode(t, http.StatusConflict, rr)

	rr = executeRequest(app, http.MethodPost, base+"/prepared", nil, token)
	checkResponseCode(t, http.StatusOK, rr)

	rr = executeRequest(app, http.MethodPost, base+"/prepared", nil, token)
	checkResponseCode(t, http.StatusConflict, rr)

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/orders", nil, token)
	checkResponseCode(t, http.StatusOK, rr)
	var board domain.Board
	decodeData(t, rr, &board)
	if len(board.Current) != 0 || len(board.Prepared) != 1 || len(board.Received) != 0 {
		t.Errorf("unexpected board %+v", board)
	}

	rr = executeRequest(app, http.MethodPost, base+"/received", nil, token)
	checkResponseCode(t, http.StatusOK, rr)

	rr = executeRequest(app, http.MethodPost, "/api/v1/admin/orders/00000/prepared", nil, token)
	checkResponseCode(t, http.StatusNotFound, rr)

	rr = executeRequest(app, http.MethodGet, base+"/history", nil, token)
	checkResponseCode(t, http.StatusOK, rr)
	var history []domain.OrderStatusAudit
	decodeData(t, rr, &history)
	if len(history) != 3 {
		t.Fatalf("history has %d entries, want 3", len(history))
	}
	for _, h := range history {
		if h.EventType == domain.EventOrderStatusChanged && h.ChangedBy != "staff" {
			t.Errorf("changed_by = %q, want staff", h.ChangedBy)
		}
	}

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/revenue?window=today", nil, token)
	checkResponseCode(t, http.StatusOK, rr)
	var revenue domain.Revenue
	decodeData(t, rr, &revenue)
	if revenue.OrderCount != 1 || !revenue.Total.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("unexpected revenue %+v", revenue)
	}

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/revenue?window=fortnight", nil, token)
	checkResponseCode(t, http.StatusBadRequest, rr)
}

func TestBillsAndSessionClose(t *testing.T) {
	app := newTestApplication(t, config{})
	token := staffToken(t, app)
	pasta := createMenuItem(t, app, token, "Pasta", "8.00")

	var session uuid.UUID
	for i := 0; i < 2; i++ {
		order := placeOrder(t, app, map[string]any{
			"service_type": "dine-in",
			"table_number": 2,
			"items":        []map[string]any{{"menu_item_id": pasta.ID, "quantity": 1}},
		})
		session = *order.SessionID
	}

	rr := executeRequest(app, http.MethodGet, "/api/v1/admin/bills", nil, token)
	checkResponseCode(t, http.StatusOK, rr)
	var bills []domain.Bill
	decodeData(t, rr, &bills)
	if len(bills) != 1 || bills[0].OrderCount != 2 || !bills[0].Total.Equal(decimal.RequireFromString("16")) {
		t.Fatalf("unexpected bills %+v", bills)
	}

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/bills/"+session.String(), nil, token)
	checkResponseCode(t, http.StatusOK, rr)

	rr = executeRequest(app, http.MethodPost, "/api/v1/admin/bills/"+session.String()+"/close", nil, token)
	checkResponseCode(t, http.StatusOK, rr)

	rr = executeRequest(app, http.MethodPost, "/api/v1/admin/bills/"+session.String()+"/close", nil, token)
	checkResponseCode(t, http.StatusConflict, rr)

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/bills/not-a-uuid", nil, token)
	checkResponseCode(t, http.StatusBadRequest, rr)

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/bills", nil, token)
	checkResponseCode(t, http.StatusOK, rr)
	decodeData(t, rr, &bills)
	if len(bills) != 0 {
		t.Errorf("closed session still listed: %+v", bills)
	}
}

func TestMenuAdministration(t *testing.T) {
	app := newTestApplication(t, config{})
	token := staffToken(t, app)
	item := createMenuItem(t, app, token, "Cake", "5.00")
	path := "/api/v1/admin/menu/" + item.ID.String()

	rr := executeRequest(app, http.MethodPatch, path+"/status", map[string]any{}, token)
	checkResponseCode(t, http.StatusOK, rr)
	var toggled domain.MenuItem
	decodeData(t, rr, &toggled)
	if toggled.Status != domain.MenuItemDisabled {
		t.Errorf("status = %s, want disabled", toggled.Status)
	}

	rr = executeRequest(app, http.MethodGet, "/api/v1/menu", nil, "")
	checkResponseCode(t, http.StatusOK, rr)
	var menu []domain.MenuItem
	decodeData(t, rr, &menu)
	if len(menu) != 0 {
		t.Errorf("disabled item on customer menu: %+v", menu)
	}

	rr = executeRequest(app, http.MethodPatch, path+"/status", map[string]any{"status": "sold-out"}, token)
	checkResponseCode(t, http.StatusBadRequest, rr)

	// no body at all toggles too
	rr = executeRequest(app, http.MethodPatch, path+"/status", nil, token)
	checkResponseCode(t, http.StatusOK, rr)
	decodeData(t, rr, &toggled)
	if toggled.Status != domain.MenuItemEnabled {
		t.Errorf("status = %s, want enabled", toggled.Status)
	}

	rr = executeRequest(app, http.MethodPatch, path, map[string]any{"price": json.Number("6.25")}, token)
	checkResponseCode(t, http.StatusOK, rr)
	var updated domain.MenuItem
	decodeData(t, rr, &updated)
	if !updated.Price.Equal(decimal.RequireFromString("6.25")) || updated.Name != "Cake" {
		t.Errorf("unexpected update %+v", updated)
	}

	rr = executeRequest(app, http.MethodPatch, path, map[string]any{}, token)
	checkResponseCode(t, http.StatusBadRequest, rr)

	rr = executeRequest(app, http.MethodPost, "/api/v1/admin/menu", map[string]any{"name": "Free", "price": 0}, token)
	checkResponseCode(t, http.StatusBadRequest, rr)

	rr = executeRequest(app, http.MethodDelete, path, nil, token)
	checkResponseCode(t, http.StatusNoContent, rr)

	rr = executeRequest(app, http.MethodDelete, path, nil, token)
	checkResponseCode(t, http.StatusNotFound, rr)
}

func TestSettingsEndpoints(t *testing.T) {
	app := newTestApplication(t, config{})
	token := staffToken(t, app)

	rr := executeRequest(app, http.MethodGet, "/api/v1/settings", nil, "")
	checkResponseCode(t, http.StatusOK, rr)
	var settings domain.RestaurantSettings
	decodeData(t, rr, &settings)
	if settings.TotalTables != domain.DefaultTotalTables {
		t.Errorf("total_tables = %d, want default", settings.TotalTables)
	}

	rr = executeRequest(app, http.MethodPut, "/api/v1/admin/settings", UpdateSettingsRequest{TotalTables: 501}, token)
	checkResponseCode(t, http.StatusBadRequest, rr)

	rr = executeRequest(app, http.MethodPut, "/api/v1/admin/settings", UpdateSettingsRequest{TotalTables: 40}, token)
	checkResponseCode(t, http.StatusOK, rr)

	rr = executeRequest(app, http.MethodPut, "/api/v1/settings", UpdateSettingsRequest{TotalTables: 40}, "")
	checkResponseCode(t, http.StatusMethodNotAllowed, rr)
}

func TestMenuImportWithoutCredentials(t *testing.T) {
	app := newTestApplication(t, config{})
	token := staffToken(t, app)

	rr := executeRequest(app, http.MethodPost, "/api/v1/admin/menu/import", CreateMenuImportRequest{SpreadsheetID: "sheet"}, token)
	checkResponseCode(t, http.StatusServiceUnavailable, rr)

	rr = executeRequest(app, http.MethodPost, "/api/v1/admin/menu/import", map[string]any{}, token)
	checkResponseCode(t, http.StatusBadRequest, rr)

	rr = executeRequest(app, http.MethodGet, "/api/v1/admin/menu/import/"+uuid.NewString(), nil, token)
	checkResponseCode(t, http.StatusNotFound, rr)
}

func TestRateLimiterMiddleware(t *testing.T) {
	app := newTestApplication(t, config{rateLimiter: ratelimiter.Config{
		RequestsPerTimeFrame: 2,
		TimeFrame:            time.Minute,
		Enabled:              true,
	}})

	for i := 0; i < 2; i++ {
		rr := executeRequest(app, http.MethodGet, "/api/v1/settings", nil, "")
		checkResponseCode(t, http.StatusOK, rr)
	}

	rr := executeRequest(app, http.MethodGet, "/api/v1/settings", nil, "")
	checkResponseCode(t, http.StatusTooManyRequests, rr)
	if rr.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestMenuStreamSendsSnapshotAfterChange(t *testing.T) {
	app := newTestApplication(t, config{})

	srv := httptest.NewServer(app.mount())
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(srv.URL + "/api/v1/menu/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readSnapshot := func() []domain.MenuItem {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: ")
			if !ok {
				continue
			}
			var items []domain.MenuItem
			if err := json.Unmarshal([]byte(data), &items); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			return items
		}
	}

	if first := readSnapshot(); len(first) != 0 {
		t.Fatalf("first snapshot has %d items", len(first))
	}

	_, err = app.menuService.Create(context.Background(), service.CreateMenuItemInput{
		Name:  "Waffle",
		Price: decimal.NewFromInt(3),
	})
	if err != nil {
		t.Fatal(err)
	}

	second := readSnapshot()
	if len(second) != 1 || second[0].Name != "Waffle" {
		t.Errorf("unexpected second snapshot %+v", second)
	}
}
