package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
)

const parkByIDTTL = 5 * time.Minute

// CachedParkAdapter wraps a ParkRepository with a read-through cache of
// single parks. Every write drops the cached copy of the park it touches.
type CachedParkAdapter struct {
	adapter repositories.ParkRepository
	cache   providers.CacheProvider
}

// NewCachedParkAdapter creates a new cached park adapter
func NewCachedParkAdapter(adapter repositories.ParkRepository, cache providers.CacheProvider) repositories.ParkRepository {
	return &CachedParkAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// GetByID retrieves a park by ID with caching
func (a *CachedParkAdapter) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	cacheKey := providers.ParkCacheKey(id)

	cached, err := a.cache.Get(ctx, cacheKey)
	if err == nil {
		var park entities.Park
		if err := json.Unmarshal(cached, &park); err == nil {
			return &park, nil
		}
		log.Warn().Err(err).Str("park_id", id).Msg("dropping unreadable cached park")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		log.Warn().Err(err).Str("park_id", id).Msg("park cache read failed")
	}

	park, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(park); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, parkByIDTTL); err != nil {
			log.Warn().Err(err).Str("park_id", id).Msg("failed to cache park")
		}
	}
	return park, nil
}

// GetByIDs is not cached
func (a *CachedParkAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	return a.adapter.GetByIDs(ctx, ids)
}

// List is not cached; listings change on every write to any park
func (a *CachedParkAdapter) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	return a.adapter.List(ctx, filter)
}

func (a *CachedParkAdapter) Create(ctx context.Context, park *entities.Park) error {
	return a.adapter.Create(ctx, park)
}

func (a *CachedParkAdapter) Update(ctx context.Context, park *entities.Park) error {
	defer a.invalidate(ctx, park.ID)
	return a.adapter.Update(ctx, park)
}

func (a *CachedParkAdapter) RefreshRating(ctx context.Context, id string) (*entities.Park, error) {
	defer a.invalidate(ctx, id)
	return a.adapter.RefreshRating(ctx, id)
}

func (a *CachedParkAdapter) AppendComment(ctx context.Context, parkID, commentID string) (*entities.Park, error) {
	defer a.invalidate(ctx, parkID)
	return a.adapter.AppendComment(ctx, parkID, commentID)
}

func (a *CachedParkAdapter) RemoveComment(ctx context.Context, parkID, commentID string) (*entities.Park, error) {
	defer a.invalidate(ctx, parkID)
	return a.adapter.RemoveComment(ctx, parkID, commentID)
}

func (a *CachedParkAdapter) AppendReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error) {
	defer a.invalidate(ctx, parkID)
	return a.adapter.AppendReview(ctx, parkID, reviewID)
}

func (a *CachedParkAdapter) RemoveReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error) {
	defer a.invalidate(ctx, parkID)
	return a.adapter.RemoveReview(ctx, parkID, reviewID)
}

func (a *CachedParkAdapter) Delete(ctx context.Context, id string) (*entities.Park, error) {
	defer a.invalidate(ctx, id)
	return a.adapter.Delete(ctx, id)
}

func (a *CachedParkAdapter) invalidate(ctx context.Context, id string) {
	if err := a.cache.Delete(context.WithoutCancel(ctx), providers.ParkCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("park_id", id).Msg("failed to invalidate cached park")
	}
}
