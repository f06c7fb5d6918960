package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Beka01247/restaurant-orders/internal/domain"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"go.uber.org/zap"
)

type subscriber struct {
	tables map[string]struct{}
	ch     chan domain.ChangeEvent
}

// Hub fans change events from the broker out to local subscribers. Each subscriber
// holds at most one pending event; bursts collapse into a single refresh.
type Hub struct {
	broker queue.Broker
	logger *zap.SugaredLogger

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

func NewHub(broker queue.Broker, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		broker: broker,
		logger: logger,
		subs:   make(map[int]*subscriber),
	}
}

func (h *Hub) Start(ctx context.Context) error {
	if err := h.broker.Listen(ctx, queue.ExchangeStoreChanges, h.handle); err != nil {
		return fmt.Errorf("failed to listen for changes: %w", err)
	}
	h.logger.Info("change notification hub started")
	return nil
}

func (h *Hub) handle(ctx context.Context, message []byte) error {
	var event domain.ChangeEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return fmt.Errorf("failed to unmarshal change event: %w", err)
	}
	h.Dispatch(event)
	return nil
}

// Dispatch hands event to every subscriber of its table without blocking.
func (h *Hub) Dispatch(event domain.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if _, ok := sub.tables[event.Table]; !ok {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel receiving changes of the given tables and a function
// that ends the subscription.
func (h *Hub) Subscribe(tables ...string) (<-chan domain.ChangeEvent, func()) {
	sub := &subscriber{
		tables: make(map[string]struct{}, len(tables)),
		ch:     make(chan domain.ChangeEvent, 1),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
