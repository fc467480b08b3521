package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

const commentsTable = "comments"

var commentColumns = []interface{}{
	"id", "text", "author_id", "author_username", "created_at", "updated_at",
}

// CommentAdapter implements the CommentRepository interface
type CommentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCommentAdapter creates a new comment adapter
func NewCommentAdapter(client *postgres.Client) repositories.CommentRepository {
	return &CommentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new comment
func (a *CommentAdapter) Create(ctx context.Context, comment *entities.Comment) error {
	record := goqu.Record{
		"id":              comment.ID,
		"text":            comment.Text,
		"author_id":       comment.Author.UserID,
		"author_username": comment.Author.Username,
		"created_at":      comment.CreatedAt,
		"updated_at":      comment.UpdatedAt,
	}

	query, args, err := a.db.Insert(commentsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create comment", err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (a *CommentAdapter) GetByID(ctx context.Context, id string) (*entities.Comment, error) {
	query, args, err := a.db.Select(commentColumns...).
		From(commentsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	comment, err := scanComment(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("comment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get comment", err)
	}
	return comment, nil
}

// GetByIDs retrieves comments in the order of ids, skipping missing ones
func (a *CommentAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Comment, error) {
	if len(ids) == 0 {
		return []*entities.Comment{}, nil
	}

	query, args, err := a.db.Select(commentColumns...).
		From(commentsTable).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get comments", err)
	}
	defer rows.Close()

	comments := []*entities.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan comment", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate comments", err)
	}

	return orderByIDs(ids, comments, func(c *entities.Comment) string { return c.ID }), nil
}

// Update updates the text of a comment
func (a *CommentAdapter) Update(ctx context.Context, comment *entities.Comment) error {
	query, args, err := a.db.Update(commentsTable).
		Set(goqu.Record{
			"text":       comment.Text,
			"updated_at": comment.UpdatedAt,
		}).
		Where(goqu.Ex{"id": comment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update comment", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("comment with id %s not found", comment.ID))
	}
	return nil
}

// Delete deletes a comment and returns it
func (a *CommentAdapter) Delete(ctx context.Context, id string) (*entities.Comment, error) {
	query, args, err := a.db.Delete(commentsTable).
		Where(goqu.Ex{"id": id}).
		Returning(commentColumns...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build delete query", err)
	}

	comment, err := scanComment(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("comment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to delete comment", err)
	}
	return comment, nil
}

// DeleteMany deletes the given comments and returns how many existed
func (a *CommentAdapter) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := a.db.Delete(commentsTable).Where(goqu.Ex{"id": ids}).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete comments", err)
	}
	return result.RowsAffected()
}

func scanComment(row rowScanner) (*entities.Comment, error) {
	comment := &entities.Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.Text,
		&comment.Author.UserID,
		&comment.Author.Username,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return comment, nil
}
