package providers

import (
	"context"

	"github.com/mBrond/chat-medicamentos/internal/domain/entities"
)

// EventBus carries dataset change notifications between replicas
type EventBus interface {
	// Publish sends an event to every subscriber of channel
	Publish(ctx context.Context, channel string, event *entities.DatasetEvent) error

	// Subscribe returns a channel of events that is closed when ctx ends
	Subscribe(ctx context.Context, channel string) (<-chan *entities.DatasetEvent, error)

	// Unsubscribe drops every subscriber of channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close releases all subscriptions
	Close() error
}
