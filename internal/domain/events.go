package domain

import "time"

// Store tables that emit change notifications.
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
	TableMenuItems  = "menu_items"
	TableSessions   = "table_sessions"
	TableSettings   = "restaurant_settings"
)

type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

// ChangeEvent announces that rows of Table changed. Receivers re-read the table.
type ChangeEvent struct {
	Table string    `json:"table"`
	Op    ChangeOp  `json:"op"`
	At    time.Time `json:"at"`
}

type MenuImportMessage struct {
	TaskID        string `json:"task_id"`
	SpreadsheetID string `json:"spreadsheet_id"`
	SheetRange    string `json:"sheet_range"`
}

type OrderStatusEvent struct {
	EventType string      `json:"event_type"`
	OrderID   string      `json:"order_id"`
	Token     string      `json:"token"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedBy string      `json:"changed_by"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)
