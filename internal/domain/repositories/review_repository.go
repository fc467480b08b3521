package repositories

import (
	"context"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	// Create creates a new review. A second review by the same author on the
	// same park fails with a validation error.
	Create(ctx context.Context, review *entities.Review) error

	// GetByID retrieves a review by ID
	GetByID(ctx context.Context, id string) (*entities.Review, error)

	// GetByIDs retrieves reviews by ID, skipping ids that no longer exist
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Review, error)

	// ExistsForAuthor reports whether the author already reviewed the park
	ExistsForAuthor(ctx context.Context, parkID, authorID string) (bool, error)

	// Update updates the rating and text of a review
	Update(ctx context.Context, review *entities.Review) error

	// Delete deletes a review and returns it
	Delete(ctx context.Context, id string) (*entities.Review, error)

	// DeleteMany deletes the given reviews and returns how many existed
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
