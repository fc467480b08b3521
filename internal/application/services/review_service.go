package services

import (
	"context"
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

const maxReviewLength = 2000

// ReviewInput is a star rating with optional text
type ReviewInput struct {
	Rating int
	Text   string
}

// ReviewService manages park reviews and keeps each park's rating equal to
// the mean of its reviews
type ReviewService struct {
	parks   repositories.ParkRepository
	reviews repositories.ReviewRepository
	search  repositories.ParkSearchRepository
	events  providers.EventBus
}

// NewReviewService creates a new review service. search and events may be nil.
func NewReviewService(
	parks repositories.ParkRepository,
	reviews repositories.ReviewRepository,
	search repositories.ParkSearchRepository,
	events providers.EventBus,
) *ReviewService {
	return &ReviewService{parks: parks, reviews: reviews, search: search, events: events}
}

// List returns the reviews of a park, newest first
func (s *ReviewService) List(ctx context.Context, parkID string) ([]*entities.Review, error) {
	park, err := s.parks.GetByID(ctx, parkID)
	if err != nil {
		return nil, err
	}
	reviews, err := loaders.Reviews(ctx, s.reviews, park.ReviewIDs)
	if err != nil {
		return nil, err
	}
	return newestFirst(reviews, func(r *entities.Review) time.Time { return r.CreatedAt }), nil
}

// Create adds the actor's review of a park. A user reviews a park at most
// once; a second attempt fails before anything is written.
func (s *ReviewService) Create(ctx context.Context, actor *entities.Actor, parkID string, input ReviewInput) (review *entities.Review, err error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Create", attribute.String("park.id", parkID))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := policy.ValidateRating(input.Rating); err != nil {
		return nil, err
	}
	text, err := validateReviewText(input.Text)
	if err != nil {
		return nil, err
	}
	if _, err := s.parks.GetByID(ctx, parkID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForAuthor(ctx, parkID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewValidationError(policy.MsgDuplicateReview)
	}

	now := time.Now().UTC()
	review = &entities.Review{
		ID:        uuid.New().String(),
		ParkID:    parkID,
		Rating:    input.Rating,
		Text:      text,
		Author:    actor.AsAuthor(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if _, err := s.parks.AppendReview(ctx, parkID, review.ID); err != nil {
		observability.LoggerFromContext(ctx).Error().
			Err(err).
			Str("park_id", parkID).
			Str("review_id", review.ID).
			Msg("review stored but not linked to park")
		return nil, apperrors.NewInternalError("failed to add review", err)
	}

	if err := s.refreshRating(ctx, parkID); err != nil {
		return nil, err
	}
	return review, nil
}

// Update changes a review owned by actor and recomputes the park rating
func (s *ReviewService) Update(ctx context.Context, actor *entities.Actor, parkID, reviewID string, input ReviewInput) (review *entities.Review, err error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Update", attribute.String("review.id", reviewID))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	review, err = s.lookup(ctx, parkID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, review, "review"); err != nil {
		return nil, err
	}
	if err := policy.ValidateRating(input.Rating); err != nil {
		return nil, err
	}
	if review.Text, err = validateReviewText(input.Text); err != nil {
		return nil, err
	}
	review.Rating = input.Rating
	review.UpdatedAt = time.Now().UTC()

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	if err := s.refreshRating(ctx, parkID); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review owned by actor, unlinks it from its park and
// recomputes the park rating
func (s *ReviewService) Delete(ctx context.Context, actor *entities.Actor, parkID, reviewID string) (deleted *entities.Review, err error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.Delete", attribute.String("review.id", reviewID))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	review, err := s.lookup(ctx, parkID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, review, "review"); err != nil {
		return nil, err
	}

	deleted, err = s.reviews.Delete(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if _, err := s.parks.RemoveReview(context.WithoutCancel(ctx), parkID, reviewID); err != nil {
		// the review is gone even though the park still lists it
		if refreshErr := s.refreshRating(ctx, parkID); refreshErr != nil {
			observability.LoggerFromContext(ctx).Error().
				Err(refreshErr).
				Str("park_id", parkID).
				Msg("failed to refresh rating after unlink failure")
		}
		return nil, apperrors.NewInternalError("failed to unlink review", err)
	}
	if err := s.refreshRating(ctx, parkID); err != nil {
		return nil, err
	}
	return deleted, nil
}

// lookup loads a review and checks that it was left on the park
func (s *ReviewService) lookup(ctx context.Context, parkID, reviewID string) (*entities.Review, error) {
	if _, err := s.parks.GetByID(ctx, parkID); err != nil {
		return nil, err
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ParkID != parkID {
		return nil, apperrors.NewNotFoundError("review not found")
	}
	return review, nil
}

// refreshRating stores the mean of the park's current reviews as its rating.
// It is the last write of every review mutation.
func (s *ReviewService) refreshRating(ctx context.Context, parkID string) error {
	ctx = context.WithoutCancel(ctx)

	park, err := s.parks.RefreshRating(ctx, parkID)
	if err != nil {
		return apperrors.NewInternalError("failed to update park rating", err)
	}

	if s.search != nil {
		if err := s.search.Index(ctx, park); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("park_id", park.ID).Msg("failed to reindex park rating")
		}
	}

	event := entities.NewParkEvent(park.ID, entities.ParkEventTypeRatingUpdated)
	event.Rating = park.Rating
	publishParkEvent(ctx, s.events, event)

	observability.LoggerFromContext(ctx).Debug().
		Str("park_id", park.ID).
		Int("reviews", len(park.ReviewIDs)).
		Float64("rating", park.Rating).
		Msg("park rating refreshed")
	return nil
}

func validateReviewText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) > maxReviewLength {
		return "", apperrors.NewValidationError("Review must be at most 2000 characters.")
	}
	return text, nil
}
