package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/parkdiscovery/internal/api/middleware"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

// AuthService is the account surface used by AuthHandler
type AuthService interface {
	Signup(ctx context.Context, username, password string) (*services.Session, error)
	Login(ctx context.Context, username, password string) (*services.Session, error)
	Current(ctx context.Context, actor *entities.Actor) (*entities.User, error)
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	service AuthService
	cookie  CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeJSON(r, &body); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	session, err := h.service.Signup(r.Context(), body.Username, body.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.setCookie(w, session.Token, session.ExpiresAt)
	respondWithSuccess(w, http.StatusCreated, fmt.Sprintf("Welcome, %s!", session.User.Username), session.User)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if err := decodeJSON(r, &body); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.setCookie(w, session.Token, session.ExpiresAt)
	respondWithSuccess(w, http.StatusOK, fmt.Sprintf("Welcome back, %s!", session.User.Username), session.User)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())
	if actor == nil {
		respondWithAppError(w, r, apperrors.NewUnauthorizedError("Please login to proceed."))
		return
	}

	h.setCookie(w, "", time.Unix(0, 0))
	respondWithSuccess(w, http.StatusOK, fmt.Sprintf("Goodbye, %s!", actor.Username), nil)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Current(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithSuccess(w, http.StatusOK, "", user)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}
