package services

import (
	"context"
	"sort"
	"time"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
)

// publishParkEvent broadcasts a park change. Failures are logged only;
// the change itself has already been stored.
func publishParkEvent(ctx context.Context, bus providers.EventBus, event *entities.ParkEvent) {
	if bus == nil {
		return
	}
	if err := bus.Publish(context.WithoutCancel(ctx), providers.EventChannelParkUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("park_id", event.ParkID).
			Str("event_type", string(event.EventType)).
			Msg("failed to publish park event")
	}
}

func newestFirst[T any](items []T, createdAt func(T) time.Time) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
	return items
}
