package providers

import (
	"context"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to park events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ParkEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ParkEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelParkUpdates is the channel for all park updates
const EventChannelParkUpdates = "park:updates"
