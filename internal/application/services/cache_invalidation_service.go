package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
)

// CacheInvalidationService drops cached parks when another instance
// broadcasts a change to them
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for park events
func (s *CacheInvalidationService) Start() error {
	events, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelParkUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to park updates: %w", err)
	}

	s.wg.Add(1)
	go s.processEvents(events)
	log.Info().Str("channel", providers.EventChannelParkUpdates).Msg("cache invalidation service started")
	return nil
}

// Stop stops the listener and waits for it to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(events <-chan *entities.ParkEvent) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event != nil {
				s.handleEvent(event)
			}
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.ParkEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.InvalidatePark(ctx, event.ParkID); err != nil {
		log.Warn().Err(err).Str("park_id", event.ParkID).Str("event_type", string(event.EventType)).Msg("failed to invalidate cached park")
		return
	}
	log.Debug().Str("park_id", event.ParkID).Str("event_type", string(event.EventType)).Msg("invalidated cached park")
}

// InvalidatePark drops the cached copy of a park
func (s *CacheInvalidationService) InvalidatePark(ctx context.Context, parkID string) error {
	if err := s.cache.Delete(ctx, providers.ParkCacheKey(parkID)); err != nil {
		return fmt.Errorf("failed to invalidate park cache: %w", err)
	}
	return nil
}
