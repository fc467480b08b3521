package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/policy"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

const parksTable = "parks"

var parkColumns = []interface{}{
	"id", "name", "description", "address", "latitude", "longitude",
	"image_url", "image_id", "author_id", "author_username",
	"comment_ids", "review_ids", "rating", "created_at", "updated_at",
}

// ParkAdapter implements the ParkRepository interface
type ParkAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewParkAdapter creates a new park adapter
func NewParkAdapter(client *postgres.Client) repositories.ParkRepository {
	return &ParkAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new park. Comment and review lists start empty.
func (a *ParkAdapter) Create(ctx context.Context, park *entities.Park) error {
	record := goqu.Record{
		"id":              park.ID,
		"name":            park.Name,
		"description":     park.Description,
		"address":         park.Location.Address,
		"latitude":        park.Location.Latitude,
		"longitude":       park.Location.Longitude,
		"image_url":       park.Image.URL,
		"image_id":        park.Image.ExternalID,
		"author_id":       park.Author.UserID,
		"author_username": park.Author.Username,
		"rating":          park.Rating,
		"created_at":      park.CreatedAt,
		"updated_at":      park.UpdatedAt,
	}

	query, args, err := a.db.Insert(parksTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create park", err)
	}
	return nil
}

// GetByID retrieves a park by ID
func (a *ParkAdapter) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	query, args, err := a.db.Select(parkColumns...).
		From(parksTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.queryOne(ctx, id, query, args, "failed to get park")
}

// GetByIDs retrieves parks in the order of ids, skipping missing ones
func (a *ParkAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	if len(ids) == 0 {
		return []*entities.Park{}, nil
	}

	query, args, err := a.db.Select(parkColumns...).
		From(parksTable).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	parks, err := a.queryMany(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return orderByIDs(ids, parks, func(p *entities.Park) string { return p.ID }), nil
}

// List retrieves parks newest first, optionally filtered by name or author
func (a *ParkAdapter) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	ds := a.db.Select(parkColumns...).From(parksTable)

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		ds = ds.Where(goqu.Or(
			goqu.I("name").ILike(pattern),
			goqu.I("author_username").ILike(pattern),
		))
	}

	ds = ds.Order(goqu.I("created_at").Desc(), goqu.I("id").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.queryMany(ctx, query, args)
}

// Update updates the owner-editable fields of a park
func (a *ParkAdapter) Update(ctx context.Context, park *entities.Park) error {
	record := goqu.Record{
		"name":        park.Name,
		"description": park.Description,
		"address":     park.Location.Address,
		"latitude":    park.Location.Latitude,
		"longitude":   park.Location.Longitude,
		"image_url":   park.Image.URL,
		"image_id":    park.Image.ExternalID,
		"updated_at":  park.UpdatedAt,
	}

	query, args, err := a.db.Update(parksTable).
		Set(record).
		Where(goqu.Ex{"id": park.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, park.ID, query, args, "failed to update park")
}

// RefreshRating recomputes and stores the park rating in one transaction.
// The park row stays locked from the read of its review ids until the rating
// is written, so refreshes of one park apply in turn and the last one sees
// every committed review.
func (a *ParkAdapter) RefreshRating(ctx context.Context, id string) (park *entities.Park, err error) {
	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin rating refresh", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := a.db.Select(parkColumns...).
		From(parksTable).
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	park, err = scanPark(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to lock park", err)
	}

	reviews, err := reviewsIn(ctx, tx, a.db, park.ReviewIDs)
	if err != nil {
		return nil, err
	}
	park.Rating = policy.AverageRating(reviews)

	query, args, err = a.db.Update(parksTable).
		Set(goqu.Record{"rating": park.Rating}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to update park rating", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit park rating", err)
	}
	return park, nil
}

// AppendComment adds a comment id to the park unless already present
func (a *ParkAdapter) AppendComment(ctx context.Context, parkID, commentID string) (*entities.Park, error) {
	return a.appendID(ctx, "comment_ids", parkID, commentID)
}

// RemoveComment drops a comment id from the park
func (a *ParkAdapter) RemoveComment(ctx context.Context, parkID, commentID string) (*entities.Park, error) {
	return a.removeID(ctx, "comment_ids", parkID, commentID)
}

// AppendReview adds a review id to the park unless already present
func (a *ParkAdapter) AppendReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error) {
	return a.appendID(ctx, "review_ids", parkID, reviewID)
}

// RemoveReview drops a review id from the park
func (a *ParkAdapter) RemoveReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error) {
	return a.removeID(ctx, "review_ids", parkID, reviewID)
}

// Delete deletes a park and returns it as stored before deletion
func (a *ParkAdapter) Delete(ctx context.Context, id string) (*entities.Park, error) {
	query, args, err := a.db.Delete(parksTable).
		Where(goqu.Ex{"id": id}).
		Returning(parkColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build delete query", err)
	}

	return a.queryOne(ctx, id, query, args, "failed to delete park")
}

// appendID adds childID to the array column in one statement. When no row
// is updated the park is either missing or already lists the child, and a
// plain read tells the two apart.
func (a *ParkAdapter) appendID(ctx context.Context, column, parkID, childID string) (*entities.Park, error) {
	query, args, err := a.db.Update(parksTable).
		Set(goqu.Record{
			column:       goqu.L(fmt.Sprintf("array_append(%s, ?)", column), childID),
			"updated_at": time.Now().UTC(),
		}).
		Where(
			goqu.Ex{"id": parkID},
			goqu.L(fmt.Sprintf("NOT (? = ANY(%s))", column), childID),
		).
		Returning(parkColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	park, err := a.queryOne(ctx, parkID, query, args, "failed to update park "+column)
	if apperrors.IsNotFound(err) {
		return a.GetByID(ctx, parkID)
	}
	return park, err
}

func (a *ParkAdapter) removeID(ctx context.Context, column, parkID, childID string) (*entities.Park, error) {
	query, args, err := a.db.Update(parksTable).
		Set(goqu.Record{
			column:       goqu.L(fmt.Sprintf("array_remove(%s, ?)", column), childID),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": parkID}).
		Returning(parkColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}

	return a.queryOne(ctx, parkID, query, args, "failed to update park "+column)
}

func (a *ParkAdapter) queryOne(ctx context.Context, id, query string, args []interface{}, failure string) (*entities.Park, error) {
	park, err := scanPark(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError(failure, err)
	}
	return park, nil
}

func (a *ParkAdapter) queryMany(ctx context.Context, query string, args []interface{}) ([]*entities.Park, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list parks", err)
	}
	defer rows.Close()

	parks := []*entities.Park{}
	for rows.Next() {
		park, err := scanPark(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan park", err)
		}
		parks = append(parks, park)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate parks", err)
	}
	return parks, nil
}

func (a *ParkAdapter) execOne(ctx context.Context, id, query string, args []interface{}, failure string) error {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(failure, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError(failure, err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("park with id %s not found", id))
	}
	return nil
}

func scanPark(row rowScanner) (*entities.Park, error) {
	park := &entities.Park{}
	var commentIDs, reviewIDs pq.StringArray
	err := row.Scan(
		&park.ID,
		&park.Name,
		&park.Description,
		&park.Location.Address,
		&park.Location.Latitude,
		&park.Location.Longitude,
		&park.Image.URL,
		&park.Image.ExternalID,
		&park.Author.UserID,
		&park.Author.Username,
		&commentIDs,
		&reviewIDs,
		&park.Rating,
		&park.CreatedAt,
		&park.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	park.CommentIDs = nonNil(commentIDs)
	park.ReviewIDs = nonNil(reviewIDs)
	return park, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
