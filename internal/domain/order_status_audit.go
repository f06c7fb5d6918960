package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatusAudit struct {
	ID        uuid.UUID   `json:"id"`
	OrderID   uuid.UUID   `json:"order_id"`
	Token     string      `json:"token"`
	EventType string      `json:"event_type"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedBy string      `json:"changed_by"`
	Timestamp time.Time   `json:"timestamp"`
}
