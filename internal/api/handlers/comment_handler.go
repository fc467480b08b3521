package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/parkdiscovery/internal/api/middleware"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

// CommentService is the comment surface used by CommentHandler
type CommentService interface {
	List(ctx context.Context, parkID string) ([]*entities.Comment, error)
	Create(ctx context.Context, actor *entities.Actor, parkID, text string) (*entities.Comment, error)
	Update(ctx context.Context, actor *entities.Actor, parkID, commentID, text string) (*entities.Comment, error)
	Delete(ctx context.Context, actor *entities.Actor, parkID, commentID string) (*entities.Comment, error)
}

// CommentHandler handles comments on a park
type CommentHandler struct {
	service CommentService
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(service CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

type commentBody struct {
	Text string `json:"text"`
}

// ListComments handles GET /api/parks/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "", comments)
}

// CreateComment handles POST /api/parks/{id}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := decodeJSON(r, &body); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	comment, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("id"), body.Text)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusCreated, "Created new comment!", comment)
}

// UpdateComment handles PUT /api/parks/{id}/comments/{commentId}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var body commentBody
	if err := decodeJSON(r, &body); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	comment, err := h.service.Update(r.Context(), middleware.ActorFromContext(r.Context()),
		r.PathValue("id"), r.PathValue("commentId"), body.Text)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "Successfully updated comment!", comment)
}

// DeleteComment handles DELETE /api/parks/{id}/comments/{commentId}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.service.Delete(r.Context(), middleware.ActorFromContext(r.Context()),
		r.PathValue("id"), r.PathValue("commentId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "Successfully deleted comment!", comment)
}
