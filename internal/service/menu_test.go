package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestMenuCreateValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateMenuItemInput
		field string
	}{
		{"blank name", CreateMenuItemInput{Name: "  ", Price: decimal.NewFromInt(1)}, "name"},
		{"zero price", CreateMenuItemInput{Name: "Water"}, "price"},
		{"negative price", CreateMenuItemInput{Name: "Water", Price: decimal.NewFromInt(-2)}, "price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.menu.Create(ctx, tt.in)
			assertValidation(t, err, tt.field)
		})
	}
}

func TestMenuToggleAndAvailability(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	soup := env.addMenuItem(t, "Soup", "4.00")
	env.addMenuItem(t, "Tea", "1.00")

	toggled, err := env.menu.Toggle(ctx, soup.ID)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.Status != domain.MenuItemDisabled {
		t.Errorf("status = %s, want disabled", toggled.Status)
	}

	available, err := env.menu.ListAvailable(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(available) != 1 || available[0].Name != "Tea" {
		t.Errorf("unexpected available items %+v", available)
	}

	all, err := env.menu.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all items = %d, want 2", len(all))
	}

	toggled, err = env.menu.Toggle(ctx, soup.ID)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.Status != domain.MenuItemEnabled {
		t.Errorf("status = %s, want enabled", toggled.Status)
	}

	if _, err := env.menu.SetStatus(ctx, soup.ID, "hidden"); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestMenuUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.addMenuItem(t, "Juice", "3.00")

	if _, err := env.menu.Update(ctx, item.ID, domain.MenuItemPatch{}); !domain.IsValidation(err) {
		t.Errorf("empty patch: expected validation error, got %v", err)
	}

	zero := decimal.Zero
	_, err := env.menu.Update(ctx, item.ID, domain.MenuItemPatch{Price: &zero})
	assertValidation(t, err, "price")

	name, desc := " Orange juice ", "fresh"
	updated, err := env.menu.Update(ctx, item.ID, domain.MenuItemPatch{Name: &name, Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Orange juice" || updated.Description != "fresh" || !updated.Price.Equal(item.Price) {
		t.Errorf("unexpected update %+v", updated)
	}

	if _, err := env.menu.Update(ctx, uuid.New(), domain.MenuItemPatch{Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown item: expected ErrNotFound, got %v", err)
	}
}

func TestMenuDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.addMenuItem(t, "Pie", "5.00")

	if err := env.menu.Delete(ctx, item.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.menu.Delete(ctx, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSettingsDefaultsAndRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.settings.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if settings.TotalTables != domain.DefaultTotalTables {
		t.Errorf("default tables = %d, want %d", settings.TotalTables, domain.DefaultTotalTables)
	}

	for _, n := range []int{0, domain.MaxTotalTables + 1} {
		_, err := env.settings.SetTotalTables(ctx, n)
		assertValidation(t, err, "total_tables")
	}

	if _, err := env.settings.SetTotalTables(ctx, 20); err != nil {
		t.Fatal(err)
	}
	settings, err = env.settings.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if settings.TotalTables != 20 {
		t.Errorf("tables = %d, want 20", settings.TotalTables)
	}

	pie := env.addMenuItem(t, "Pie", "5.00")
	env.placeOrder(t, domain.DineIn(15), line(pie, 1))
}
