package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
)

type MockParkService struct {
	mock.Mock
}

func (m *MockParkService) Create(ctx context.Context, actor *entities.Actor, input services.ParkInput) (*entities.Park, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Park), args.Error(1)
}

func (m *MockParkService) Update(ctx context.Context, actor *entities.Actor, id string, input services.ParkInput) (*entities.Park, error) {
	args := m.Called(ctx, actor, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Park), args.Error(1)
}

func (m *MockParkService) Delete(ctx context.Context, actor *entities.Actor, id string) (*entities.Park, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Park), args.Error(1)
}

func (m *MockParkService) Get(ctx context.Context, id string) (*services.ParkDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ParkDetail), args.Error(1)
}

func (m *MockParkService) List(ctx context.Context, query string) ([]*entities.Park, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Park), args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) List(ctx context.Context, parkID string) ([]*entities.Comment, error) {
	args := m.Called(ctx, parkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Comment), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, actor *entities.Actor, parkID, text string) (*entities.Comment, error) {
	args := m.Called(ctx, actor, parkID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Comment), args.Error(1)
}

func (m *MockCommentService) Update(ctx context.Context, actor *entities.Actor, parkID, commentID, text string) (*entities.Comment, error) {
	args := m.Called(ctx, actor, parkID, commentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, actor *entities.Actor, parkID, commentID string) (*entities.Comment, error) {
	args := m.Called(ctx, actor, parkID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Comment), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) List(ctx context.Context, parkID string) ([]*entities.Review, error) {
	args := m.Called(ctx, parkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Review), args.Error(1)
}

func (m *MockReviewService) Create(ctx context.Context, actor *entities.Actor, parkID string, input services.ReviewInput) (*entities.Review, error) {
	args := m.Called(ctx, actor, parkID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, actor *entities.Actor, parkID, reviewID string, input services.ReviewInput) (*entities.Review, error) {
	args := m.Called(ctx, actor, parkID, reviewID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, actor *entities.Actor, parkID, reviewID string) (*entities.Review, error) {
	args := m.Called(ctx, actor, parkID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Review), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, password string) (*services.Session, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*services.Session, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) Current(ctx context.Context, actor *entities.Actor) (*entities.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}
