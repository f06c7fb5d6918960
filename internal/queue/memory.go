package queue

import (
	"context"
	"errors"
	"sync"
)

var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker runs every queue in process. Publish delivers to the queue's handler
// synchronously, retrying up to maxRetries times before the message is dead-lettered.
// Messages published before a handler subscribes are held until it does.
type MemoryBroker struct {
	mu         sync.Mutex
	handlers   map[string]MessageHandler
	pending    map[string][][]byte
	listeners  map[string][]MessageHandler
	dead       map[string][][]byte
	maxRetries int
	closed     bool
}

func NewMemoryBroker(maxRetries int) *MemoryBroker {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &MemoryBroker{
		handlers:   make(map[string]MessageHandler),
		pending:    make(map[string][][]byte),
		listeners:  make(map[string][]MessageHandler),
		dead:       make(map[string][][]byte),
		maxRetries: maxRetries,
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, queueName string, message []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}
	handler, ok := b.handlers[queueName]
	if !ok {
		b.pending[queueName] = append(b.pending[queueName], message)
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	b.deliver(ctx, queueName, handler, message)
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, queueName string, handler MessageHandler) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}
	b.handlers[queueName] = handler
	backlog := b.pending[queueName]
	delete(b.pending, queueName)
	b.mu.Unlock()

	for _, message := range backlog {
		b.deliver(ctx, queueName, handler, message)
	}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, queueName)
		b.mu.Unlock()
	}()

	return nil
}

func (b *MemoryBroker) deliver(ctx context.Context, queueName string, handler MessageHandler, message []byte) {
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if err := handler(ctx, message); err == nil {
			return
		}
	}

	b.mu.Lock()
	b.dead[dlqName(queueName)] = append(b.dead[dlqName(queueName)], message)
	b.mu.Unlock()
}

func (b *MemoryBroker) Broadcast(ctx context.Context, exchange string, message []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBrokerClosed
	}
	listeners := append([]MessageHandler(nil), b.listeners[exchange]...)
	b.mu.Unlock()

	for _, listener := range listeners {
		_ = listener(ctx, message)
	}
	return nil
}

func (b *MemoryBroker) Listen(ctx context.Context, exchange string, handler MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	b.listeners[exchange] = append(b.listeners[exchange], handler)
	return nil
}

// DeadLetters returns the messages dead-lettered from queueName.
func (b *MemoryBroker) DeadLetters(queueName string) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([][]byte(nil), b.dead[dlqName(queueName)]...)
}

func (b *MemoryBroker) Ping() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBrokerClosed
	}
	return nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
