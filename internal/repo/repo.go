package repo

import "context"

// Repositories bundles every repository of one storage backend.
type Repositories struct {
	Menu        MenuRepository
	Orders      OrderRepository
	OrderItems  OrderItemRepository
	Sessions    TableSessionRepository
	Settings    SettingsRepository
	Audits      OrderStatusAuditRepository
	ImportTasks MenuImportTaskRepository
}

// Storage is a connected backend.
type Storage interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
