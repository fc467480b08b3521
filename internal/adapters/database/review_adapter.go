package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/policy"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

const reviewsTable = "reviews"

var reviewColumns = []interface{}{
	"id", "park_id", "rating", "text", "author_id", "author_username", "created_at", "updated_at",
}

// ReviewAdapter implements the ReviewRepository interface.
// reviews(author_id, park_id) carries a unique index, so a second review
// racing past ExistsForAuthor is still rejected on insert.
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":              review.ID,
		"park_id":         review.ParkID,
		"rating":          review.Rating,
		"text":            review.Text,
		"author_id":       review.Author.UserID,
		"author_username": review.Author.Username,
		"created_at":      review.CreatedAt,
		"updated_at":      review.UpdatedAt,
	}

	query, args, err := a.db.Insert(reviewsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewValidationError(policy.MsgDuplicateReview)
		}
		return apperrors.NewInternalError("failed to create review", err)
	}
	return nil
}

// GetByID retrieves a review by ID
func (a *ReviewAdapter) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	query, args, err := a.db.Select(reviewColumns...).
		From(reviewsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get review", err)
	}
	return review, nil
}

// GetByIDs retrieves reviews in the order of ids, skipping missing ones
func (a *ReviewAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Review, error) {
	return reviewsIn(ctx, a.client.DB(), a.db, ids)
}

// reviewsIn loads reviews in the order of ids through q, which is either the
// pool or an open transaction
func reviewsIn(ctx context.Context, q queryer, db *goqu.Database, ids []string) ([]*entities.Review, error) {
	if len(ids) == 0 {
		return []*entities.Review{}, nil
	}

	query, args, err := db.Select(reviewColumns...).
		From(reviewsTable).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan review", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate reviews", err)
	}

	return orderByIDs(ids, reviews, func(r *entities.Review) string { return r.ID }), nil
}

// ExistsForAuthor reports whether the author already reviewed the park
func (a *ReviewAdapter) ExistsForAuthor(ctx context.Context, parkID, authorID string) (bool, error) {
	query, args, err := a.db.Select(goqu.L("1")).
		From(reviewsTable).
		Where(goqu.Ex{"park_id": parkID, "author_id": authorID}).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var one int
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewInternalError("failed to check existing review", err)
	}
	return true, nil
}

// Update updates the rating and text of a review
func (a *ReviewAdapter) Update(ctx context.Context, review *entities.Review) error {
	query, args, err := a.db.Update(reviewsTable).
		Set(goqu.Record{
			"rating":     review.Rating,
			"text":       review.Text,
			"updated_at": review.UpdatedAt,
		}).
		Where(goqu.Ex{"id": review.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update review", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", review.ID))
	}
	return nil
}

// Delete deletes a review and returns it
func (a *ReviewAdapter) Delete(ctx context.Context, id string) (*entities.Review, error) {
	query, args, err := a.db.Delete(reviewsTable).
		Where(goqu.Ex{"id": id}).
		Returning(reviewColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build delete query", err)
	}

	review, err := scanReview(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("review with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to delete review", err)
	}
	return review, nil
}

// DeleteMany deletes the given reviews and returns how many existed
func (a *ReviewAdapter) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := a.db.Delete(reviewsTable).Where(goqu.Ex{"id": ids}).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete reviews", err)
	}
	return result.RowsAffected()
}

func scanReview(row rowScanner) (*entities.Review, error) {
	review := &entities.Review{}
	err := row.Scan(
		&review.ID,
		&review.ParkID,
		&review.Rating,
		&review.Text,
		&review.Author.UserID,
		&review.Author.Username,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}
