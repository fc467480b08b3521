package services_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/policy"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

// memParks is an in-memory ParkRepository. RefreshRating reads reviews from
// the linked memReviews while holding the park lock, like the row lock the
// postgres adapter takes.
type memParks struct {
	mu      sync.Mutex
	parks   map[string]*entities.Park
	reviews *memReviews

	createErr       error
	updateErr       error
	removeReviewErr error

	// afterAppendReview runs once a review id is linked, before the caller
	// moves on to its rating refresh
	afterAppendReview func()
}

func newMemParks() *memParks {
	return &memParks{parks: make(map[string]*entities.Park)}
}

func copyPark(p *entities.Park) *entities.Park {
	c := *p
	c.CommentIDs = slices.Clone(p.CommentIDs)
	c.ReviewIDs = slices.Clone(p.ReviewIDs)
	return &c
}

func (m *memParks) Create(ctx context.Context, park *entities.Park) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.parks[park.ID] = copyPark(park)
	return nil
}

func (m *memParks) GetByID(ctx context.Context, id string) (*entities.Park, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parks[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("park not found")
	}
	return copyPark(p), nil
}

func (m *memParks) GetByIDs(ctx context.Context, ids []string) ([]*entities.Park, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entities.Park{}
	for _, id := range ids {
		if p, ok := m.parks[id]; ok {
			out = append(out, copyPark(p))
		}
	}
	return out, nil
}

func (m *memParks) List(ctx context.Context, filter repositories.ParkFilter) ([]*entities.Park, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(filter.Search)
	out := []*entities.Park{}
	for _, p := range m.parks {
		if term == "" || strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Author.Username), term) {
			out = append(out, copyPark(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memParks) Update(ctx context.Context, park *entities.Park) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.parks[park.ID]; !ok {
		return apperrors.NewNotFoundError("park not found")
	}
	m.parks[park.ID] = copyPark(park)
	return nil
}

func (m *memParks) RefreshRating(ctx context.Context, id string) (*entities.Park, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parks[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("park not found")
	}
	reviews := []*entities.Review{}
	if m.reviews != nil {
		reviews, _ = m.reviews.GetByIDs(ctx, p.ReviewIDs)
	}
	p.Rating = policy.AverageRating(reviews)
	return copyPark(p), nil
}

func (m *memParks) mutate(id string, fn func(p *entities.Park)) (*entities.Park, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parks[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("park not found")
	}
	fn(p)
	return copyPark(p), nil
}

func (m *memParks) AppendComment(ctx context.Context, parkID, commentID string) (*entities.Park, error) {
	return m.mutate(parkID, func(p *entities.Park) {
		if !slices.Contains(p.CommentIDs, commentID) {
			p.CommentIDs = append(p.CommentIDs, commentID)
		}
	})
}

func (m *memParks) RemoveComment(ctx context.Context, parkID, commentID string) (*entities.Park, error) {
	return m.mutate(parkID, func(p *entities.Park) {
		p.CommentIDs = slices.DeleteFunc(p.CommentIDs, func(id string) bool { return id == commentID })
	})
}

func (m *memParks) AppendReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error) {
	park, err := m.mutate(parkID, func(p *entities.Park) {
		if !slices.Contains(p.ReviewIDs, reviewID) {
			p.ReviewIDs = append(p.ReviewIDs, reviewID)
		}
	})
	if err == nil && m.afterAppendReview != nil {
		hook := m.afterAppendReview
		m.afterAppendReview = nil
		hook()
	}
	return park, err
}

func (m *memParks) RemoveReview(ctx context.Context, parkID, reviewID string) (*entities.Park, error) {
	if m.removeReviewErr != nil {
		return nil, m.removeReviewErr
	}
	return m.mutate(parkID, func(p *entities.Park) {
		p.ReviewIDs = slices.DeleteFunc(p.ReviewIDs, func(id string) bool { return id == reviewID })
	})
}

func (m *memParks) Delete(ctx context.Context, id string) (*entities.Park, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parks[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("park not found")
	}
	delete(m.parks, id)
	return p, nil
}

// memComments is an in-memory CommentRepository
type memComments struct {
	mu       sync.Mutex
	comments map[string]*entities.Comment

	deleteManyErr error
}

func newMemComments() *memComments {
	return &memComments{comments: make(map[string]*entities.Comment)}
}

func (m *memComments) Create(ctx context.Context, comment *entities.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *comment
	m.comments[c.ID] = &c
	return nil
}

func (m *memComments) GetByID(ctx context.Context, id string) (*entities.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("comment not found")
	}
	cp := *c
	return &cp, nil
}

func (m *memComments) GetByIDs(ctx context.Context, ids []string) ([]*entities.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entities.Comment{}
	for _, id := range ids {
		if c, ok := m.comments[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memComments) Update(ctx context.Context, comment *entities.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[comment.ID]; !ok {
		return apperrors.NewNotFoundError("comment not found")
	}
	c := *comment
	m.comments[c.ID] = &c
	return nil
}

func (m *memComments) Delete(ctx context.Context, id string) (*entities.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("comment not found")
	}
	delete(m.comments, id)
	return c, nil
}

func (m *memComments) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteManyErr != nil {
		return 0, m.deleteManyErr
	}
	var n int64
	for _, id := range ids {
		if _, ok := m.comments[id]; ok {
			delete(m.comments, id)
			n++
		}
	}
	return n, nil
}

// memReviews is an in-memory ReviewRepository that enforces one review per
// author and park the way the unique index does
type memReviews struct {
	mu      sync.Mutex
	reviews map[string]*entities.Review
	creates int
}

func newMemReviews() *memReviews {
	return &memReviews{reviews: make(map[string]*entities.Review)}
}

func (m *memReviews) Create(ctx context.Context, review *entities.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ParkID == review.ParkID && r.Author.UserID == review.Author.UserID {
			return apperrors.NewValidationError(policy.MsgDuplicateReview)
		}
	}
	r := *review
	m.reviews[r.ID] = &r
	m.creates++
	return nil
}

func (m *memReviews) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("review not found")
	}
	cp := *r
	return &cp, nil
}

func (m *memReviews) GetByIDs(ctx context.Context, ids []string) ([]*entities.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entities.Review{}
	for _, id := range ids {
		if r, ok := m.reviews[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memReviews) ExistsForAuthor(ctx context.Context, parkID, authorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ParkID == parkID && r.Author.UserID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReviews) Update(ctx context.Context, review *entities.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[review.ID]; !ok {
		return apperrors.NewNotFoundError("review not found")
	}
	r := *review
	m.reviews[r.ID] = &r
	return nil
}

func (m *memReviews) Delete(ctx context.Context, id string) (*entities.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("review not found")
	}
	delete(m.reviews, id)
	return r, nil
}

func (m *memReviews) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := m.reviews[id]; ok {
			delete(m.reviews, id)
			n++
		}
	}
	return n, nil
}

// memUsers is an in-memory UserRepository
type memUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*entities.User)}
}

func (m *memUsers) Create(ctx context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperrors.NewConflictError(policy.MsgUsernameTaken)
		}
	}
	u := *user
	m.users[u.ID] = &u
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NewNotFoundError("user not found")
}

// stubGeocoder resolves every address except those listed as unknown
type stubGeocoder struct {
	unknown map[string]bool
}

func (g *stubGeocoder) Geocode(ctx context.Context, address string) (*providers.GeocodedAddress, error) {
	if g.unknown[address] {
		return nil, errors.New("ZERO_RESULTS")
	}
	return &providers.GeocodedAddress{
		FormattedAddress: address + ", Earth",
		Coordinates:      providers.Coordinates{Latitude: 1.5, Longitude: -2.5},
	}, nil
}

// recordingImages records uploads and destroys
type recordingImages struct {
	mu         sync.Mutex
	uploads    int
	destroyed  []string
	uploadErr  error
	destroyErr error
}

func (r *recordingImages) Upload(ctx context.Context, image providers.ImageUpload) (*providers.UploadedImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uploadErr != nil {
		return nil, r.uploadErr
	}
	if image.Content != nil {
		_, _ = io.Copy(io.Discard, image.Content)
	}
	r.uploads++
	id := "img-" + image.Filename
	return &providers.UploadedImage{URL: "https://images.test/" + id, ExternalID: id}, nil
}

func (r *recordingImages) Destroy(ctx context.Context, externalID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed = append(r.destroyed, externalID)
	return r.destroyErr
}

// recordingSearch is an in-memory ParkSearchRepository
type recordingSearch struct {
	mu        sync.Mutex
	indexed   map[string]*entities.Park
	searchErr error
}

func newRecordingSearch() *recordingSearch {
	return &recordingSearch{indexed: make(map[string]*entities.Park)}
}

func (s *recordingSearch) Search(ctx context.Context, query string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	ids := []string{}
	for id, p := range s.indexed {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *recordingSearch) Index(ctx context.Context, park *entities.Park) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexed[park.ID] = copyPark(park)
	return nil
}

func (s *recordingSearch) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexed, id)
	return nil
}

// recordingBus captures published events
type recordingBus struct {
	mu     sync.Mutex
	events []*entities.ParkEvent
}

func (b *recordingBus) Publish(ctx context.Context, channel string, event *entities.ParkEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *recordingBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ParkEvent, error) {
	return make(chan *entities.ParkEvent), nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types() []entities.ParkEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]entities.ParkEventType, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventType
	}
	return out
}
