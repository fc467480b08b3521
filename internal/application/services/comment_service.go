package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/parkdiscovery/internal/application/loaders"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/policy"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const maxCommentLength = 2000

// CommentService manages comments left on parks
type CommentService struct {
	parks    repositories.ParkRepository
	comments repositories.CommentRepository
	events   providers.EventBus
}

// NewCommentService creates a new comment service
func NewCommentService(parks repositories.ParkRepository, comments repositories.CommentRepository, events providers.EventBus) *CommentService {
	return &CommentService{parks: parks, comments: comments, events: events}
}

// List returns the comments of a park, newest first
func (s *CommentService) List(ctx context.Context, parkID string) ([]*entities.Comment, error) {
	park, err := s.parks.GetByID(ctx, parkID)
	if err != nil {
		return nil, err
	}
	comments, err := loaders.Comments(ctx, s.comments, park.CommentIDs)
	if err != nil {
		return nil, err
	}
	return newestFirst(comments, func(c *entities.Comment) time.Time { return c.CreatedAt }), nil
}

// Create adds a comment to a park
func (s *CommentService) Create(ctx context.Context, actor *entities.Actor, parkID, text string) (comment *entities.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.Create", attribute.String("park.id", parkID))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if text, err = validateCommentText(text); err != nil {
		return nil, err
	}
	if _, err := s.parks.GetByID(ctx, parkID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment = &entities.Comment{
		ID:        uuid.New().String(),
		Text:      text,
		Author:    actor.AsAuthor(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if _, err := s.parks.AppendComment(ctx, parkID, comment.ID); err != nil {
		observability.LoggerFromContext(ctx).Error().
			Err(err).
			Str("park_id", parkID).
			Str("comment_id", comment.ID).
			Msg("comment stored but not linked to park")
		return nil, apperrors.NewInternalError("failed to add comment", err)
	}

	publishParkEvent(ctx, s.events, entities.NewParkEvent(parkID, entities.ParkEventTypeUpdated))
	return comment, nil
}

// Update replaces the text of a comment owned by actor
func (s *CommentService) Update(ctx context.Context, actor *entities.Actor, parkID, commentID, text string) (comment *entities.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.Update", attribute.String("comment.id", commentID))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	comment, err = s.lookup(ctx, parkID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, comment, "comment"); err != nil {
		return nil, err
	}
	if comment.Text, err = validateCommentText(text); err != nil {
		return nil, err
	}
	comment.UpdatedAt = time.Now().UTC()

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment owned by actor and unlinks it from its park
func (s *CommentService) Delete(ctx context.Context, actor *entities.Actor, parkID, commentID string) (deleted *entities.Comment, err error) {
	ctx, span := observability.StartSpan(ctx, "CommentService.Delete", attribute.String("comment.id", commentID))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	comment, err := s.lookup(ctx, parkID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, comment, "comment"); err != nil {
		return nil, err
	}

	deleted, err = s.comments.Delete(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.parks.RemoveComment(context.WithoutCancel(ctx), parkID, commentID); err != nil {
		observability.LoggerFromContext(ctx).Error().
			Err(err).
			Str("park_id", parkID).
			Str("comment_id", commentID).
			Msg("comment deleted but still linked to park")
	}

	publishParkEvent(ctx, s.events, entities.NewParkEvent(parkID, entities.ParkEventTypeUpdated))
	return deleted, nil
}

// lookup loads a comment and checks that it belongs to the park
func (s *CommentService) lookup(ctx context.Context, parkID, commentID string) (*entities.Comment, error) {
	park, err := s.parks.GetByID(ctx, parkID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(park.CommentIDs, commentID) {
		return nil, apperrors.NewNotFoundError("comment not found")
	}
	return s.comments.GetByID(ctx, commentID)
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewValidationError("Please write a comment.")
	}
	if len([]rune(text)) > maxCommentLength {
		return "", apperrors.NewValidationError("Comment must be at most 2000 characters.")
	}
	return text, nil
}
