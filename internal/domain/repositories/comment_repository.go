package repositories

import (
	"context"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

// CommentRepository defines the interface for comment operations
type CommentRepository interface {
	// Create creates a new comment
	Create(ctx context.Context, comment *entities.Comment) error

	// GetByID retrieves a comment by ID
	GetByID(ctx context.Context, id string) (*entities.Comment, error)

	// GetByIDs retrieves comments by ID, skipping ids that no longer exist
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Comment, error)

	// Update updates the text of a comment
	Update(ctx context.Context, comment *entities.Comment) error

	// Delete deletes a comment and returns it
	Delete(ctx context.Context, id string) (*entities.Comment, error)

	// DeleteMany deletes the given comments and returns how many existed
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}
