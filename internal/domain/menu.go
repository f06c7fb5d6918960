package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MenuItemStatus string

const (
	MenuItemEnabled  MenuItemStatus = "enabled"
	MenuItemDisabled MenuItemStatus = "disabled"
)

func (s MenuItemStatus) Valid() bool {
	return s == MenuItemEnabled || s == MenuItemDisabled
}

// Toggled returns the opposite status.
func (s MenuItemStatus) Toggled() MenuItemStatus {
	if s == MenuItemEnabled {
		return MenuItemDisabled
	}
	return MenuItemEnabled
}

type MenuItem struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Status      MenuItemStatus  `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (m MenuItem) Available() bool {
	return m.Status == MenuItemEnabled
}

// MenuItemPatch carries the fields of a partial menu item update; nil means unchanged.
type MenuItemPatch struct {
	Name        *string
	Price       *decimal.Decimal
	Description *string
	ImageURL    *string
}

func (p MenuItemPatch) Apply(item *MenuItem) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
}

func (p MenuItemPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Description == nil && p.ImageURL == nil
}
