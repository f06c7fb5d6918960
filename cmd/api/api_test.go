package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/auth"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"github.com/Beka01247/restaurant-orders/internal/ratelimiter"
	"github.com/Beka01247/restaurant-orders/internal/service"
	"github.com/Beka01247/restaurant-orders/internal/store/memory"
	"github.com/Beka01247/restaurant-orders/internal/worker"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testPassword = "letmein"

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func newTestApplication(t *testing.T, cfg config) *application {
	t.Helper()

	logger := zap.NewNop().Sugar()
	storage := memory.New()
	repos := storage.Repositories()
	broker := queue.NewMemoryBroker(1)
	notifier := notify.NewPublisher(broker, logger)

	settingsService := service.NewSettingsService(repos.Settings, notifier, logger)
	sessionService := service.NewSessionService(repos.Sessions, repos.Orders, repos.OrderItems, notifier, logger)
	orderService := service.NewOrderService(repos.Menu, repos.Orders, repos.OrderItems, repos.Audits,
		settingsService, sessionService, broker, notifier, time.UTC, logger)
	importService := service.NewImportService(repos.ImportTasks, repos.Menu, nil, broker, notifier, logger)

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.corsOrigins == nil {
		cfg.corsOrigins = []string{"*"}
	}
	if cfg.apiURL == "" {
		cfg.apiURL = "localhost:8080"
	}

	app := &application{
		config:          cfg,
		logger:          logger,
		rateLimiter:     ratelimiter.NewFixedWindowLimiter(cfg.rateLimiter.RequestsPerTimeFrame, time.Minute),
		storage:         storage,
		broker:          broker,
		auth:            auth.New(auth.Config{Secret: "test-secret", PasswordHash: hash}),
		hub:             notify.NewHub(broker, logger),
		menuService:     service.NewMenuService(repos.Menu, notifier, logger),
		orderService:    orderService,
		sessionService:  sessionService,
		settingsService: settingsService,
		importService:   importService,
		importWorker:    worker.NewMenuImportWorker(importService, broker, logger),
		statusWorker:    worker.NewOrderStatusWorker(orderService, broker, logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := app.hub.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := app.statusWorker.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.statusWorker.Stop)

	return app
}

func executeRequest(app *application, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected int, rr *httptest.ResponseRecorder) {
	t.Helper()

	if rr.Code != expected {
		t.Fatalf("expected the response code to be %d and we got %d: %s", expected, rr.Code, rr.Body.String())
	}
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()

	envelope := struct {
		Data any `json:"data"`
	}{Data: v}
	if err := json.NewDecoder(rr.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func staffToken(t *testing.T, app *application) string {
	t.Helper()

	rr := executeRequest(app, http.MethodPost, "/api/v1/auth/login", LoginRequest{Password: testPassword}, "")
	checkResponseCode(t, http.StatusOK, rr)

	var resp LoginResponse
	decodeData(t, rr, &resp)
	return resp.Token
}
