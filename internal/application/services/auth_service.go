package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/auth"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

const (
	maxUsernameLength = 50

	msgBadCredentials = "Password or username is incorrect"
)

// Session is an issued login token and the user it was issued to
type Session struct {
	User      *entities.User
	Token     string
	ExpiresAt time.Time
}

// AuthService registers users and issues session tokens
type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
}

// NewAuthService creates a new auth service
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Signup registers a user and logs them in
func (s *AuthService) Signup(ctx context.Context, username, password string) (session *Session, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Signup")
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("Please choose a username.")
	}
	if len([]rune(username)) > maxUsernameLength {
		return nil, apperrors.NewValidationError("Username must be at most 50 characters.")
	}
	if len(password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError("Password must be at least 8 characters.")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to register user", err)
	}

	user := &entities.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().Str("user_id", user.ID).Msg("user registered")
	return s.issue(user)
}

// Login checks a username and password and issues a session
func (s *AuthService) Login(ctx context.Context, username, password string) (session *Session, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Login")
	defer span.End()
	defer func() { observability.RecordError(span, err) }()

	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorizedError(msgBadCredentials)
		}
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.NewUnauthorizedError(msgBadCredentials)
		}
		return nil, apperrors.NewInternalError("failed to verify password", err)
	}

	return s.issue(user)
}

// Authenticate resolves a session token to the actor it was issued to
func (s *AuthService) Authenticate(token string) (*entities.Actor, error) {
	actor, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Please login to proceed.")
	}
	return actor, nil
}

// Current returns the user behind an actor
func (s *AuthService) Current(ctx context.Context, actor *entities.Actor) (*entities.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorizedError("Please login to proceed.")
	}
	return s.users.GetByID(ctx, actor.UserID)
}

// TokenTTL is the lifetime of issued sessions
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) issue(user *entities.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue session", err)
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
