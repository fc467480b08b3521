package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/zatekoja/parkdiscovery/internal/api/middleware"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

const (
	msgNoSearchResults = "Your search did not match any park."

	// form fields beyond the image
	multipartOverhead = 1 << 20
)

// ParkService is the park surface used by ParkHandler
type ParkService interface {
	Create(ctx context.Context, actor *entities.Actor, input services.ParkInput) (*entities.Park, error)
	Update(ctx context.Context, actor *entities.Actor, id string, input services.ParkInput) (*entities.Park, error)
	Delete(ctx context.Context, actor *entities.Actor, id string) (*entities.Park, error)
	Get(ctx context.Context, id string) (*services.ParkDetail, error)
	List(ctx context.Context, query string) ([]*entities.Park, error)
}

// ParkHandler handles park-related HTTP requests
type ParkHandler struct {
	service       ParkService
	maxImageBytes int64
}

// NewParkHandler creates a new park handler
func NewParkHandler(service ParkService, maxImageBytes int64) *ParkHandler {
	return &ParkHandler{service: service, maxImageBytes: maxImageBytes}
}

// ListParks handles GET /api/parks?search=
func (h *ParkHandler) ListParks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")

	parks, err := h.service.List(r.Context(), query)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	message := ""
	if query != "" && len(parks) == 0 {
		message = msgNoSearchResults
	}
	respondWithSuccess(w, http.StatusOK, message, parks)
}

// GetPark handles GET /api/parks/{id}
func (h *ParkHandler) GetPark(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "", detail)
}

// CreatePark handles POST /api/parks (multipart form)
func (h *ParkHandler) CreatePark(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := h.parseForm(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	defer cleanup()

	park, err := h.service.Create(r.Context(), middleware.ActorFromContext(r.Context()), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusCreated, "Successfully made a new park!", park)
}

// UpdatePark handles PUT /api/parks/{id} (multipart form, image optional)
func (h *ParkHandler) UpdatePark(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := h.parseForm(w, r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	defer cleanup()

	park, err := h.service.Update(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("id"), input)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "Successfully updated park!", park)
}

// DeletePark handles DELETE /api/parks/{id}
func (h *ParkHandler) DeletePark(w http.ResponseWriter, r *http.Request) {
	park, err := h.service.Delete(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "Successfully deleted park!", park)
}

// parseForm reads the park fields and the optional image part
func (h *ParkHandler) parseForm(w http.ResponseWriter, r *http.Request) (services.ParkInput, func(), error) {
	noop := func() {}
	if h.maxImageBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.ParkInput{}, noop, apperrors.NewValidationError("Image is too large.")
		}
		return services.ParkInput{}, noop, apperrors.NewValidationError("invalid form data")
	}

	input := services.ParkInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, noop, nil
	case err != nil:
		return input, noop, apperrors.NewValidationError("invalid image upload")
	}

	input.Image = imageUpload(file, header)
	return input, func() { _ = file.Close() }, nil
}

func imageUpload(file multipart.File, header *multipart.FileHeader) *providers.ImageUpload {
	return &providers.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}
}
