// Package notify carries row-level change notifications between processes. Writers
// announce which table changed; readers re-run their query.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"go.uber.org/zap"
)

// Notifier is implemented by Publisher; services depend on it to announce writes.
type Notifier interface {
	Changed(ctx context.Context, table string, op domain.ChangeOp)
}

type Publisher struct {
	broker queue.Broker
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewPublisher(broker queue.Broker, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{
		broker: broker,
		logger: logger,
		now:    time.Now,
	}
}

// Changed broadcasts a change of table. A failed broadcast is logged and never fails
// the write that caused it.
func (p *Publisher) Changed(ctx context.Context, table string, op domain.ChangeOp) {
	event := domain.ChangeEvent{Table: table, Op: op, At: p.now()}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorw("failed to marshal change event", "table", table, "error", err)
		return
	}

	if err := p.broker.Broadcast(ctx, queue.ExchangeStoreChanges, body); err != nil {
		p.logger.Warnw("failed to broadcast change event", "table", table, "op", op, "error", err)
	}
}
