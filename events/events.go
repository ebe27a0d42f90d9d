// Package events fans order lifecycle changes out to live subscribers.
package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/swiftcart-api/models"
)

type Type string

const (
	OrderCreated       Type = "OrderCreated"
	OrderStatusChanged Type = "OrderStatusChanged"
)

type OrderEvent struct {
	EventID   string       `json:"event_id"`
	EventType Type         `json:"event_type"`
	Payload   models.Order `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewOrderEvent(t Type, order models.Order, at time.Time) OrderEvent {
	return OrderEvent{EventID: uuid.NewString(), EventType: t, Payload: order, Timestamp: at}
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (r *Recorder) Publish(_ context.Context, ev OrderEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderEvent(nil), r.events...)
}
