package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCurrent  OrderStatus = "current"
	OrderPrepared OrderStatus = "prepared"
	OrderReceived OrderStatus = "received"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderCurrent, OrderPrepared, OrderReceived:
		return true
	}
	return false
}

// Previous returns the only status an order may move to s from.
func (s OrderStatus) Previous() (OrderStatus, bool) {
	switch s {
	case OrderPrepared:
		return OrderCurrent, true
	case OrderReceived:
		return OrderPrepared, true
	}
	return "", false
}

// Active reports whether the order still holds its token.
func (s OrderStatus) Active() bool {
	return s == OrderCurrent || s == OrderPrepared
}

type ServiceType string

const (
	ServiceDineIn ServiceType = "dine-in"
	ServiceParcel ServiceType = "parcel"
)

// Fulfillment is either DineIn at a table or Parcel. The zero value is Parcel.
type Fulfillment struct {
	dineIn bool
	table  int
}

func DineIn(table int) Fulfillment {
	return Fulfillment{dineIn: true, table: table}
}

func Parcel() Fulfillment {
	return Fulfillment{}
}

// FulfillmentFromRow normalises the stored service_type/table_number pair. Rows written
// before service_type existed carry only a nullable table number.
func FulfillmentFromRow(serviceType string, table *int) Fulfillment {
	switch ServiceType(serviceType) {
	case ServiceDineIn:
		if table != nil {
			return DineIn(*table)
		}
		return DineIn(0)
	case ServiceParcel:
		return Parcel()
	}
	if table != nil && *table > 0 {
		return DineIn(*table)
	}
	return Parcel()
}

func (f Fulfillment) Type() ServiceType {
	if f.dineIn {
		return ServiceDineIn
	}
	return ServiceParcel
}

func (f Fulfillment) IsDineIn() bool { return f.dineIn }

// Table returns the table number for dine-in orders.
func (f Fulfillment) Table() (int, bool) {
	return f.table, f.dineIn
}

// TableNumber is the nullable column form.
func (f Fulfillment) TableNumber() *int {
	if !f.dineIn {
		return nil
	}
	t := f.table
	return &t
}

func (f Fulfillment) String() string {
	if f.dineIn {
		return fmt.Sprintf("dine-in (table %d)", f.table)
	}
	return string(ServiceParcel)
}

type fulfillmentJSON struct {
	ServiceType ServiceType `json:"service_type"`
	TableNumber *int        `json:"table_number,omitempty"`
}

func (f Fulfillment) MarshalJSON() ([]byte, error) {
	return json.Marshal(fulfillmentJSON{ServiceType: f.Type(), TableNumber: f.TableNumber()})
}

func (f *Fulfillment) UnmarshalJSON(data []byte) error {
	var raw fulfillmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = FulfillmentFromRow(string(raw.ServiceType), raw.TableNumber)
	return nil
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	Token       string          `json:"token"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total"`
	Fulfillment Fulfillment     `json:"fulfillment"`
	SessionID   *uuid.UUID      `json:"session_id,omitempty"`
	Items       []OrderItem     `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderItem captures the menu item's name and price at order time.
type OrderItem struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderLine is one requested (menu item, quantity) pair.
type OrderLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,min=1"`
}

func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Board is the kitchen view of all orders grouped by status.
type Board struct {
	Current  []Order `json:"current"`
	Prepared []Order `json:"prepared"`
	Received []Order `json:"received"`
}

// PartitionByStatus groups orders by status, oldest first. Orders with any other status
// are left out of all three groups.
func PartitionByStatus(orders []Order) Board {
	board := Board{
		Current:  []Order{},
		Prepared: []Order{},
		Received: []Order{},
	}
	for _, o := range orders {
		switch o.Status {
		case OrderCurrent:
			board.Current = append(board.Current, o)
		case OrderPrepared:
			board.Prepared = append(board.Prepared, o)
		case OrderReceived:
			board.Received = append(board.Received, o)
		}
	}
	for _, group := range [][]Order{board.Current, board.Prepared, board.Received} {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		})
	}
	return board
}

// AttachItems sets each order's Items from a flat item list.
func AttachItems(orders []Order, items []OrderItem) {
	byOrder := make(map[uuid.UUID][]OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []OrderItem{}
		}
	}
}

func OrderIDs(orders []Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}
