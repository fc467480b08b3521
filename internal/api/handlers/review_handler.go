package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/parkdiscovery/internal/api/middleware"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/policy"
)

// ReviewService is the review surface used by ReviewHandler
type ReviewService interface {
	List(ctx context.Context, parkID string) ([]*entities.Review, error)
	Create(ctx context.Context, actor *entities.Actor, parkID string, input services.ReviewInput) (*entities.Review, error)
	Update(ctx context.Context, actor *entities.Actor, parkID, reviewID string, input services.ReviewInput) (*entities.Review, error)
	Delete(ctx context.Context, actor *entities.Actor, parkID, reviewID string) (*entities.Review, error)
}

// ReviewHandler handles reviews of a park
type ReviewHandler struct {
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// reviewBody accepts the rating as a JSON number or a string
type reviewBody struct {
	Rating json.RawMessage `json:"rating"`
	Text   string          `json:"text"`
}

func (b reviewBody) input() (services.ReviewInput, error) {
	raw := strings.TrimSpace(string(b.Rating))
	if raw == "null" {
		raw = ""
	}
	if unquoted, err := unquote(raw); err == nil {
		raw = unquoted
	}

	rating, err := policy.ParseRating(raw)
	if err != nil {
		return services.ReviewInput{}, err
	}
	return services.ReviewInput{Rating: rating, Text: b.Text}, nil
}

func unquote(raw string) (string, error) {
	var s string
	err := json.Unmarshal([]byte(raw), &s)
	return s, err
}

// ListReviews handles GET /api/parks/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "", reviews)
}

// CreateReview handles POST /api/parks/{id}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	input, err := h.parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("id"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusCreated, "Review has been successfully created.", review)
}

// UpdateReview handles PUT /api/parks/{id}/reviews/{reviewId}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	input, err := h.parse(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	review, err := h.service.Update(r.Context(), middleware.ActorFromContext(r.Context()),
		r.PathValue("id"), r.PathValue("reviewId"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "Review has been successfully updated.", review)
}

// DeleteReview handles DELETE /api/parks/{id}/reviews/{reviewId}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.Delete(r.Context(), middleware.ActorFromContext(r.Context()),
		r.PathValue("id"), r.PathValue("reviewId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "Review has been successfully deleted.", review)
}

func (h *ReviewHandler) parse(r *http.Request) (services.ReviewInput, error) {
	var body reviewBody
	if err := decodeJSON(r, &body); err != nil {
		return services.ReviewInput{}, err
	}
	return body.input()
}
