package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/policy"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

var carol = &entities.Actor{UserID: "u-carol", Username: "carol"}

func (f *fixture) rating(t *testing.T, parkID string) float64 {
	t.Helper()
	park, err := f.parks.GetByID(context.Background(), parkID)
	require.NoError(t, err)
	return park.Rating
}

func TestReviewService_RatingIsMeanOfReviews(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	_, err := f.reviewSvc.Create(ctx, alice, park.ID, services.ReviewInput{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.rating(t, park.ID))

	five, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 5, Text: "Great"})
	require.NoError(t, err)
	_, err = f.reviewSvc.Create(ctx, carol, park.ID, services.ReviewInput{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.rating(t, park.ID))

	_, err = f.reviewSvc.Delete(ctx, bob, park.ID, five.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f.rating(t, park.ID))

	stored, err := f.parks.GetByID(ctx, park.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ReviewIDs, 2)
	assert.NotContains(t, stored.ReviewIDs, five.ID)
}

func TestReviewService_RatingCountsReviewLinkedDuringRefresh(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	// bob's review lands between alice's link and her rating refresh
	f.parks.afterAppendReview = func() {
		_, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 1})
		require.NoError(t, err)
	}

	_, err := f.reviewSvc.Create(ctx, alice, park.ID, services.ReviewInput{Rating: 5})
	require.NoError(t, err)

	assert.Equal(t, 3.0, f.rating(t, park.ID))
	assert.Equal(t, 3.0, f.search.indexed[park.ID].Rating)
	last := f.bus.events[len(f.bus.events)-1]
	assert.Equal(t, 3.0, last.Rating)
}

func TestReviewService_Delete_UnlinkFailureStillRefreshesRating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	_, err := f.reviewSvc.Create(ctx, alice, park.ID, services.ReviewInput{Rating: 4})
	require.NoError(t, err)
	five, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 5})
	require.NoError(t, err)
	_, err = f.reviewSvc.Create(ctx, carol, park.ID, services.ReviewInput{Rating: 3})
	require.NoError(t, err)
	f.parks.removeReviewErr = errors.New("connection reset")

	_, err = f.reviewSvc.Delete(ctx, bob, park.ID, five.ID)

	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	_, err = f.reviews.GetByID(ctx, five.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 3.5, f.rating(t, park.ID))
	assert.Equal(t, 3.5, f.search.indexed[park.ID].Rating)

	detail, err := f.parkSvc.Get(ctx, park.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Reviews, 2)
}

func TestReviewService_DeletingLastReviewResetsRating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	review, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.rating(t, park.ID))

	_, err = f.reviewSvc.Delete(ctx, bob, park.ID, review.ID)
	require.NoError(t, err)
	assert.Zero(t, f.rating(t, park.ID))
}

func TestReviewService_DuplicateRejectedBeforeMutation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	_, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 4})
	require.NoError(t, err)
	eventsBefore := len(f.bus.types())

	_, err = f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 1})

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, policy.MsgDuplicateReview, appErr.Message)
	assert.Equal(t, 1, f.reviews.creates)
	assert.Equal(t, 4.0, f.rating(t, park.ID))
	assert.Len(t, f.bus.types(), eventsBefore)

	stored, err := f.parks.GetByID(ctx, park.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ReviewIDs, 1)
}

func TestReviewService_Create_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	_, err := f.reviewSvc.Create(ctx, nil, park.ID, services.ReviewInput{Rating: 3})
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, apperrors.TypeOf(err))

	for _, rating := range []int{0, 6, -1} {
		_, err = f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: rating})
		assert.Equal(t, apperrors.ErrorTypeValidation, apperrors.TypeOf(err), "rating %d", rating)
	}

	_, err = f.reviewSvc.Create(ctx, bob, "missing", services.ReviewInput{Rating: 3})
	assert.True(t, apperrors.IsNotFound(err))

	assert.Zero(t, f.reviews.creates)
}

func TestReviewService_Update(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	review, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 2})
	require.NoError(t, err)

	updated, err := f.reviewSvc.Update(ctx, bob, park.ID, review.ID, services.ReviewInput{Rating: 5, Text: " changed my mind "})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "changed my mind", updated.Text)
	assert.Equal(t, 5.0, f.rating(t, park.ID))

	last := f.bus.events[len(f.bus.events)-1]
	assert.Equal(t, entities.ParkEventTypeRatingUpdated, last.EventType)
	assert.Equal(t, 5.0, last.Rating)
	assert.Equal(t, 5.0, f.search.indexed[park.ID].Rating)
}

func TestReviewService_NonOwnerForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	review, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 2})
	require.NoError(t, err)

	_, err = f.reviewSvc.Update(ctx, alice, park.ID, review.ID, services.ReviewInput{Rating: 5})
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))

	_, err = f.reviewSvc.Delete(ctx, carol, park.ID, review.ID)
	assert.Equal(t, apperrors.ErrorTypeForbidden, apperrors.TypeOf(err))

	stored, err := f.reviews.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Rating)
	assert.Equal(t, 2.0, f.rating(t, park.ID))
}

func TestReviewService_ReviewOfAnotherPark(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.createPark(t, alice, "Stanley Park")
	second := f.createPark(t, alice, "Queen Elizabeth Park")

	review, err := f.reviewSvc.Create(ctx, bob, first.ID, services.ReviewInput{Rating: 4})
	require.NoError(t, err)

	_, err = f.reviewSvc.Delete(ctx, bob, second.ID, review.ID)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.reviewSvc.Delete(ctx, bob, first.ID, review.ID)
	require.NoError(t, err)
	_, err = f.reviewSvc.Delete(ctx, bob, first.ID, review.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReviewService_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	park := f.createPark(t, alice, "Stanley Park")

	_, err := f.reviewSvc.Create(ctx, bob, park.ID, services.ReviewInput{Rating: 4})
	require.NoError(t, err)

	reviews, err := f.reviewSvc.List(ctx, park.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "bob", reviews[0].Author.Username)
}
