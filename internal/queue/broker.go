package queue

import (
	"context"
)

// Broker carries work queues with retry and dead-lettering, plus fanout exchanges
// whose messages reach every listening process.
type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Subscribe(ctx context.Context, queueName string, handler MessageHandler) error
	Broadcast(ctx context.Context, exchange string, message []byte) error
	Listen(ctx context.Context, exchange string, handler MessageHandler) error
	Ping() error
	Close() error
}

type MessageHandler func(ctx context.Context, message []byte) error

const (
	QueueMenuImport     = "menu-import"
	QueueOrderStatus    = "order-status"
	QueueMenuImportDLQ  = "menu-import-dlq"
	QueueOrderStatusDLQ = "order-status-dlq"

	ExchangeStoreChanges = "store-changes"
)

const (
	defaultMaxRetries = 3
	headerRetryCount  = "x-retry-count"
)

func dlqName(queueName string) string {
	return queueName + "-dlq"
}
