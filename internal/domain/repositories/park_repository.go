package repositories

import (
	"context"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

// ParkRepository defines the interface for park data operations.
// Each call is atomic on its own; callers must not assume multi-call transactions.
type ParkRepository interface {
	// Create creates a new park
	Create(ctx context.Context, park *entities.Park) error

	// GetByID retrieves a park by ID
	GetByID(ctx context.Context, id string) (*entities.Park, error)

	// GetByIDs retrieves multiple parks by their IDs, skipping missing ones
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error)

	// List retrieves parks newest first
	List(ctx context.Context, filter ParkFilter) ([]*entities.Park, error)

	// Update updates the owner-editable fields of a park
	Update(ctx context.Context, park *entities.Park) error

	// RefreshRating recomputes the park rating from the reviews it lists at
	// the time of the call, stores it and returns the updated park.
	// Concurrent refreshes of one park are serialized.
	RefreshRating(ctx context.Context, id string) (*entities.Park, error)

	// AppendComment adds a comment id to the park's list and returns the updated park
	AppendComment(ctx context.Context, parkID, commentID string) (*entities.Park, error)

	// RemoveComment drops a comment id from the park's list and returns the updated park
	RemoveComment(ctx context.Context, parkID, commentID string) (*entities.Park, error)

	// AppendReview adds a review id to the park's list and returns the updated park
	AppendReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error)

	// RemoveReview drops a review id from the park's list and returns the updated park
	RemoveReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error)

	// Delete deletes a park and returns the record as it was before deletion
	Delete(ctx context.Context, id string) (*entities.Park, error)
}

// ParkSearchRepository defines the interface for park full-text search (e.g. Typesense)
type ParkSearchRepository interface {
	// Search returns the ids of parks whose name or author matches the query
	Search(ctx context.Context, query string, limit int) ([]string, error)

	// Index indexes a park
	Index(ctx context.Context, park *entities.Park) error

	// Delete removes a park from the index
	Delete(ctx context.Context, id string) error
}

// ParkFilter defines filters for listing parks
type ParkFilter struct {
	// Search matches park name or author username, case-insensitively
	Search string
	Limit  int
	Offset int
}
