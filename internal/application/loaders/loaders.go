package loaders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

const batchWait = 2 * time.Millisecond

// ErrMissing marks an id whose record no longer exists
var ErrMissing = errors.New("record not found")

// Loaders contains the request-scoped batch loaders for park children
type Loaders struct {
	CommentLoader *dataloader.Loader[string, *entities.Comment]
	ReviewLoader  *dataloader.Loader[string, *entities.Review]
}

// NewLoaders creates a new instance of Loaders
func NewLoaders(commentRepo repositories.CommentRepository, reviewRepo repositories.ReviewRepository) *Loaders {
	return &Loaders{
		CommentLoader: dataloader.NewBatchedLoader(
			batchFunc(func(ctx context.Context, ids []string) ([]*entities.Comment, error) {
				return commentRepo.GetByIDs(ctx, ids)
			}, func(c *entities.Comment) string { return c.ID }, "comment"),
			dataloader.WithWait[string, *entities.Comment](batchWait),
		),
		ReviewLoader: dataloader.NewBatchedLoader(
			batchFunc(func(ctx context.Context, ids []string) ([]*entities.Review, error) {
				return reviewRepo.GetByIDs(ctx, ids)
			}, func(r *entities.Review) string { return r.ID }, "review"),
			dataloader.WithWait[string, *entities.Review](batchWait),
		),
	}
}

func batchFunc[V any](
	fetch func(ctx context.Context, ids []string) ([]V, error),
	idOf func(V) string,
	kind string,
) dataloader.BatchFunc[string, V] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))
		items, err := fetch(ctx, keys)

		byID := make(map[string]V, len(items))
		if err == nil {
			for _, item := range items {
				byID[idOf(item)] = item
			}
		}

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[V]{Error: err}
			} else if item, ok := byID[key]; ok {
				results[i] = &dataloader.Result[V]{Data: item}
			} else {
				results[i] = &dataloader.Result[V]{Error: fmt.Errorf("%w: %s %s", ErrMissing, kind, key)}
			}
		}
		return results
	}
}

// For returns the loaders for a given context, or nil outside a request
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Comments resolves comment ids through the request loader when present,
// falling back to repo. Ids without a record are skipped.
func Comments(ctx context.Context, repo repositories.CommentRepository, ids []string) ([]*entities.Comment, error) {
	if len(ids) == 0 {
		return []*entities.Comment{}, nil
	}
	if l := For(ctx); l != nil {
		return collect(l.CommentLoader.LoadMany(ctx, ids))
	}
	return repo.GetByIDs(ctx, ids)
}

// Reviews resolves review ids the same way as Comments
func Reviews(ctx context.Context, repo repositories.ReviewRepository, ids []string) ([]*entities.Review, error) {
	if len(ids) == 0 {
		return []*entities.Review{}, nil
	}
	if l := For(ctx); l != nil {
		return collect(l.ReviewLoader.LoadMany(ctx, ids))
	}
	return repo.GetByIDs(ctx, ids)
}

func collect[V any](thunk dataloader.ThunkMany[V]) ([]V, error) {
	data, errs := thunk()
	out := make([]V, 0, len(data))
	for i, item := range data {
		if i < len(errs) && errs[i] != nil {
			if errors.Is(errs[i], ErrMissing) {
				continue
			}
			return nil, errs[i]
		}
		out = append(out, item)
	}
	return out, nil
}
