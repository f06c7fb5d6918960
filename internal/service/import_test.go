package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeSource struct {
	items   []domain.MenuItem
	skipped int
	err     error
	calls   int
}

func (f *fakeSource) ParseMenuItems(ctx context.Context, spreadsheetID, sheetRange string) ([]domain.MenuItem, int, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	items := make([]domain.MenuItem, len(f.items))
	copy(items, f.items)
	return items, f.skipped, nil
}

func newImportService(env *testEnv, source MenuSource) *ImportService {
	logger := zap.NewNop().Sugar()
	return NewImportService(
		env.repos.ImportTasks,
		env.repos.Menu,
		source,
		env.broker,
		notify.NewPublisher(env.broker, logger),
		logger,
	)
}

func TestImportUpsertsMenuByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	existing := env.addMenuItem(t, "Burger", "10.00")

	source := &fakeSource{
		items: []domain.MenuItem{
			{Name: "Burger", Price: decimal.RequireFromString("11.50"), Status: domain.MenuItemEnabled},
			{Name: "Shake", Price: decimal.RequireFromString("4.00"), Status: domain.MenuItemDisabled},
		},
		skipped: 2,
	}
	svc := newImportService(env, source)

	task, err := svc.CreateImportTask(ctx, " sheet-1 ", "")
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != domain.ImportQueued || task.SpreadsheetID != "sheet-1" {
		t.Errorf("unexpected task %+v", task)
	}

	if err := svc.ProcessImportTask(ctx, task.ID); err != nil {
		t.Fatal(err)
	}

	done, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != domain.ImportCompleted || done.Imported != 2 || done.Skipped != 2 {
		t.Errorf("unexpected finished task %+v", done)
	}

	items, err := env.menu.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("menu has %d items, want 2", len(items))
	}
	burger, err := env.repos.Menu.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !burger.Price.Equal(decimal.RequireFromString("11.50")) {
		t.Errorf("burger price = %s, want 11.50", burger.Price)
	}

	// a completed task is not parsed again
	if err := svc.ProcessImportTask(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	if source.calls != 1 {
		t.Errorf("source parsed %d times, want 1", source.calls)
	}
}

func TestImportFailureMarksTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newImportService(env, &fakeSource{err: errors.New("sheet not shared")})

	task, err := svc.CreateImportTask(ctx, "sheet-2", "Menu!A:E")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ProcessImportTask(ctx, task.ID); err == nil {
		t.Fatal("expected error")
	}

	failed, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != domain.ImportFailed || failed.RetryCount != 1 || failed.ErrorMessage != "sheet not shared" {
		t.Errorf("unexpected failed task %+v", failed)
	}
}

func TestImportValidationAndAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := newImportService(env, &fakeSource{}).CreateImportTask(ctx, "  ", "")
	assertValidation(t, err, "spreadsheet_id")

	disabled := newImportService(env, nil)
	if disabled.Enabled() {
		t.Error("service without source reports enabled")
	}
	if _, err := disabled.CreateImportTask(ctx, "sheet", ""); !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
