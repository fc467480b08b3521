package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	tsclient "github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements park search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.ParkSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// Index upserts the searchable fields of a park
func (a *TypesenseAdapter) Index(ctx context.Context, park *entities.Park) error {
	_, err := a.client.Client().Collection(tsclient.ParksCollection).Documents().Upsert(ctx, parkDocument(park))
	if err != nil {
		return fmt.Errorf("failed to index park: %w", err)
	}
	return nil
}

// Delete removes a park from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.ParksCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete park from index: %w", err)
	}
	return nil
}

// Search returns the ids of parks whose name or author matches query, newest first
func (a *TypesenseAdapter) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	params := &api.SearchCollectionParams{
		Q:       pointer.String(query),
		QueryBy: pointer.String("name,author_username"),
		SortBy:  pointer.String("created_at:desc"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.ParksCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search parks: %w", err)
	}
	if result.Hits == nil {
		return []string{}, nil
	}

	docs := make([]map[string]interface{}, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		if hit.Document != nil {
			docs = append(docs, *hit.Document)
		}
	}
	return hitIDs(docs), nil
}

func parkDocument(park *entities.Park) map[string]interface{} {
	return map[string]interface{}{
		"id":              park.ID,
		"name":            park.Name,
		"author_username": park.Author.Username,
		"address":         park.Location.Address,
		"rating":          park.Rating,
		"created_at":      park.CreatedAt.Unix(),
	}
}

func hitIDs(docs []map[string]interface{}) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if id, ok := doc["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
