package memory

import (
	"context"
	"sync"

	"chirp/application/ports"
	"chirp/domain/events"
)

// Publisher implements ports.EventPublisher by collecting events
type Publisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

// NewPublisher creates an empty collecting publisher
func NewPublisher() *Publisher {
	return &Publisher{}
}

var _ ports.EventPublisher = (*Publisher)(nil)

// Publish records the event
func (p *Publisher) Publish(ctx context.Context, event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns the events published so far
func (p *Publisher) Events() []events.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.DomainEvent(nil), p.events...)
}
