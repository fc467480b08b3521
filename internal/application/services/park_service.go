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

const (
	maxParkNameLength = 100
	defaultListLimit  = 100

	msgInvalidLocation = "Please enter a valid location."
	msgImageRequired   = "Please upload an image of the park."
	msgImageUpload     = "The image could not be uploaded, please try again."
)

// ParkInput carries the owner-editable fields of a park.
// Image is required on create and optional on update.
type ParkInput struct {
	Name        string
	Description string
	Location    string
	Image       *providers.ImageUpload
}

// ParkDetail is a park with its comments and reviews, newest first
type ParkDetail struct {
	*entities.Park
	Comments []*entities.Comment `json:"comments"`
	Reviews  []*entities.Review  `json:"reviews"`
}

// ParkService coordinates the park lifecycle across the store, the
// geocoder, the image host and the search index
type ParkService struct {
	parks         repositories.ParkRepository
	comments      repositories.CommentRepository
	reviews       repositories.ReviewRepository
	search        repositories.ParkSearchRepository
	geocoder      providers.GeolocationProvider
	images        providers.ImageProvider
	events        providers.EventBus
	maxImageBytes int64
}

// NewParkService creates a new park service. search and events may be nil.
func NewParkService(
	parks repositories.ParkRepository,
	comments repositories.CommentRepository,
	reviews repositories.ReviewRepository,
	search repositories.ParkSearchRepository,
	geocoder providers.GeolocationProvider,
	images providers.ImageProvider,
	events providers.EventBus,
	maxImageBytes int64,
) *ParkService {
	return &ParkService{
		parks:         parks,
		comments:      comments,
		reviews:       reviews,
		search:        search,
		geocoder:      geocoder,
		images:        images,
		events:        events,
		maxImageBytes: maxImageBytes,
	}
}

// Create geocodes the location, uploads the image and stores a new park
// owned by actor. Nothing is stored when geocoding or the upload fails.
func (s *ParkService) Create(ctx context.Context, actor *entities.Actor, input ParkInput) (park *entities.Park, err error) {
	ctx, span := observability.StartSpan(ctx, "ParkService.Create")
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	if err := policy.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	if input.Image == nil {
		return nil, apperrors.NewValidationError(msgImageRequired)
	}

	location, err := s.geocode(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	image, err := s.upload(ctx, input.Image)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	park = &entities.Park{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Location:    *location,
		Image:       *image,
		Author:      actor.AsAuthor(),
		CommentIDs:  []string{},
		ReviewIDs:   []string{},
		Rating:      0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.parks.Create(ctx, park); err != nil {
		s.destroyImage(ctx, image.ExternalID)
		return nil, err
	}

	s.index(ctx, park)
	publishParkEvent(ctx, s.events, entities.NewParkEvent(park.ID, entities.ParkEventTypeCreated))

	observability.LoggerFromContext(ctx).Info().
		Str("park_id", park.ID).
		Str("author_id", actor.UserID).
		Msg("park created")
	return park, nil
}

// Update replaces the editable fields of a park owned by actor. A new image
// replaces the old one, which is destroyed only after the park is stored.
func (s *ParkService) Update(ctx context.Context, actor *entities.Actor, id string, input ParkInput) (park *entities.Park, err error) {
	ctx, span := observability.StartSpan(ctx, "ParkService.Update", attribute.String("park.id", id))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	park, err = s.parks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, park, "park"); err != nil {
		return nil, err
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	location, err := s.geocode(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	previousImage := park.Image
	var uploaded *entities.Image
	if input.Image != nil {
		if uploaded, err = s.upload(ctx, input.Image); err != nil {
			return nil, err
		}
		park.Image = *uploaded
	}

	park.Name = input.Name
	park.Description = input.Description
	park.Location = *location
	park.UpdatedAt = time.Now().UTC()

	if err := s.parks.Update(ctx, park); err != nil {
		if uploaded != nil {
			s.destroyImage(ctx, uploaded.ExternalID)
		}
		return nil, err
	}

	if uploaded != nil && previousImage.ExternalID != uploaded.ExternalID {
		s.destroyImage(ctx, previousImage.ExternalID)
	}

	s.index(ctx, park)
	publishParkEvent(ctx, s.events, entities.NewParkEvent(park.ID, entities.ParkEventTypeUpdated))
	return park, nil
}

// Delete removes a park owned by actor, then its comments, its reviews and
// its image. Cleanup failures are logged; the park stays deleted.
func (s *ParkService) Delete(ctx context.Context, actor *entities.Actor, id string) (deleted *entities.Park, err error) {
	ctx, span := observability.StartSpan(ctx, "ParkService.Delete", attribute.String("park.id", id))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	park, err := s.parks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Require(actor, park, "park"); err != nil {
		return nil, err
	}

	deleted, err = s.parks.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	cleanupCtx := context.WithoutCancel(ctx)
	logger := observability.LoggerFromContext(ctx)

	if n, err := s.comments.DeleteMany(cleanupCtx, deleted.CommentIDs); err != nil {
		logger.Error().Err(err).Str("park_id", id).Strs("comment_ids", deleted.CommentIDs).Msg("failed to delete comments of deleted park")
	} else {
		logger.Debug().Str("park_id", id).Int64("count", n).Msg("deleted comments of park")
	}

	if n, err := s.reviews.DeleteMany(cleanupCtx, deleted.ReviewIDs); err != nil {
		logger.Error().Err(err).Str("park_id", id).Strs("review_ids", deleted.ReviewIDs).Msg("failed to delete reviews of deleted park")
	} else {
		logger.Debug().Str("park_id", id).Int64("count", n).Msg("deleted reviews of park")
	}

	s.destroyImage(cleanupCtx, deleted.Image.ExternalID)

	if s.search != nil {
		if err := s.search.Delete(cleanupCtx, id); err != nil {
			logger.Warn().Err(err).Str("park_id", id).Msg("failed to remove park from search index")
		}
	}
	publishParkEvent(ctx, s.events, entities.NewParkEvent(id, entities.ParkEventTypeDeleted))

	logger.Info().Str("park_id", id).Msg("park deleted")
	return deleted, nil
}

// Get returns a park with its comments and reviews, newest first.
// Ids whose records are gone are skipped.
func (s *ParkService) Get(ctx context.Context, id string) (detail *ParkDetail, err error) {
	ctx, span := observability.StartSpan(ctx, "ParkService.Get", attribute.String("park.id", id))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	park, err := s.parks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	comments, err := loaders.Comments(ctx, s.comments, park.CommentIDs)
	if err != nil {
		return nil, err
	}
	reviews, err := loaders.Reviews(ctx, s.reviews, park.ReviewIDs)
	if err != nil {
		return nil, err
	}

	return &ParkDetail{
		Park:     park,
		Comments: newestFirst(comments, func(c *entities.Comment) time.Time { return c.CreatedAt }),
		Reviews:  newestFirst(reviews, func(r *entities.Review) time.Time { return r.CreatedAt }),
	}, nil
}

// List returns parks newest first. A non-empty query matches the park name
// or the author's username; the search index is used when configured and
// the store is queried when it is absent or failing.
func (s *ParkService) List(ctx context.Context, query string) (parks []*entities.Park, err error) {
	ctx, span := observability.StartSpan(ctx, "ParkService.List", attribute.String("park.query", query))
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	query = strings.TrimSpace(query)
	if query != "" && s.search != nil {
		ids, err := s.search.Search(ctx, query, defaultListLimit)
		if err == nil {
			return s.parks.GetByIDs(ctx, ids)
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("park search index unavailable, querying store")
	}

	return s.parks.List(ctx, repositories.ParkFilter{Search: query, Limit: defaultListLimit})
}

func (s *ParkService) validateInput(input *ParkInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)

	if input.Name == "" {
		return apperrors.NewValidationError("Please provide a name for the park.")
	}
	if len([]rune(input.Name)) > maxParkNameLength {
		return apperrors.NewValidationError("Park name must be at most 100 characters.")
	}
	if input.Location == "" {
		return apperrors.NewValidationError("Please provide a location for the park.")
	}
	if input.Image != nil {
		if err := policy.ValidateImage(input.Image.Filename, input.Image.Size, s.maxImageBytes); err != nil {
			return err
		}
	}
	return nil
}

func (s *ParkService) geocode(ctx context.Context, address string) (*entities.Location, error) {
	geo, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, apperrors.NewDependencyError(msgInvalidLocation, err)
	}
	formatted := geo.FormattedAddress
	if formatted == "" {
		formatted = address
	}
	return &entities.Location{
		Address:   formatted,
		Latitude:  geo.Coordinates.Latitude,
		Longitude: geo.Coordinates.Longitude,
	}, nil
}

func (s *ParkService) upload(ctx context.Context, upload *providers.ImageUpload) (*entities.Image, error) {
	img, err := s.images.Upload(ctx, *upload)
	if err != nil {
		return nil, apperrors.NewDependencyError(msgImageUpload, err)
	}
	return &entities.Image{URL: img.URL, ExternalID: img.ExternalID}, nil
}

// destroyImage releases an image best-effort
func (s *ParkService) destroyImage(ctx context.Context, externalID string) {
	if externalID == "" {
		return
	}
	if err := s.images.Destroy(context.WithoutCancel(ctx), externalID); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("image_id", externalID).Msg("failed to destroy image")
	}
}

func (s *ParkService) index(ctx context.Context, park *entities.Park) {
	if s.search == nil {
		return
	}
	if err := s.search.Index(context.WithoutCancel(ctx), park); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("park_id", park.ID).Msg("failed to index park")
	}
}
