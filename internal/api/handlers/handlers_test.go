package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/parkdiscovery/internal/api/handlers"
	"github.com/zatekoja/parkdiscovery/internal/api/middleware"
	"github.com/zatekoja/parkdiscovery/internal/application/services"
	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

var owner = &entities.Actor{UserID: "u1", Username: "alice"}

type envelope struct {
	Outcome string          `json:"outcome"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}

func asActor(req *http.Request, actor *entities.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

func TestParkHandler_ListParks_EmptySearch(t *testing.T) {
	svc := new(MockParkService)
	svc.On("List", mock.Anything, "yellowstone").Return([]*entities.Park{}, nil)
	h := handlers.NewParkHandler(svc, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/parks?search=yellowstone", nil)
	rr := httptest.NewRecorder()
	h.ListParks(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decode(t, rr)
	assert.Equal(t, "success", env.Outcome)
	assert.Equal(t, "Your search did not match any park.", env.Message)
	svc.AssertExpectations(t)
}

func TestParkHandler_ListParks(t *testing.T) {
	svc := new(MockParkService)
	svc.On("List", mock.Anything, "").Return([]*entities.Park{{ID: "p1", Name: "Stanley Park"}}, nil)
	h := handlers.NewParkHandler(svc, 0)

	rr := httptest.NewRecorder()
	h.ListParks(rr, httptest.NewRequest(http.MethodGet, "/api/parks", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	env := decode(t, rr)
	assert.Empty(t, env.Message)

	var parks []entities.Park
	require.NoError(t, json.Unmarshal(env.Data, &parks))
	require.Len(t, parks, 1)
	assert.Equal(t, "Stanley Park", parks[0].Name)
}

func TestParkHandler_GetPark_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		outcome string
		message string
	}{
		{"not found", apperrors.NewNotFoundError("park not found"), http.StatusNotFound, "not-found", "park not found"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal-error", "Something went wrong, please try again."},
		{"dependency", apperrors.NewDependencyError("Please enter a valid location.", errors.New("x")), http.StatusBadGateway, "dependency-error", "Please enter a valid location."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockParkService)
			svc.On("Get", mock.Anything, "p1").Return(nil, tt.err)
			h := handlers.NewParkHandler(svc, 0)

			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/parks/{id}", h.GetPark)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/parks/p1", nil))

			assert.Equal(t, tt.status, rr.Code)
			env := decode(t, rr)
			assert.Equal(t, tt.outcome, env.Outcome)
			assert.Equal(t, tt.message, env.Error)
		})
	}
}

func multipartPark(t *testing.T, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("name", "Stanley Park"))
	require.NoError(t, w.WriteField("description", "Trees"))
	require.NoError(t, w.WriteField("location", "Vancouver"))
	if withImage {
		part, err := w.CreateFormFile("image", "park.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestParkHandler_CreatePark(t *testing.T) {
	svc := new(MockParkService)
	svc.On("Create", mock.Anything, owner, mock.MatchedBy(func(in services.ParkInput) bool {
		if in.Name != "Stanley Park" || in.Location != "Vancouver" || in.Image == nil {
			return false
		}
		content, err := io.ReadAll(in.Image.Content)
		return err == nil && string(content) == "fake-jpeg" && in.Image.Filename == "park.jpg" && in.Image.Size == 9
	})).Return(&entities.Park{ID: "p1", Name: "Stanley Park"}, nil)
	h := handlers.NewParkHandler(svc, 5*1024*1024)

	body, contentType := multipartPark(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/parks", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.CreatePark(rr, asActor(req, owner))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Successfully made a new park!", decode(t, rr).Message)
	svc.AssertExpectations(t)
}

func TestParkHandler_UpdatePark_WithoutImage(t *testing.T) {
	svc := new(MockParkService)
	svc.On("Update", mock.Anything, owner, "p1", mock.MatchedBy(func(in services.ParkInput) bool {
		return in.Image == nil && in.Name == "Stanley Park"
	})).Return(&entities.Park{ID: "p1"}, nil)
	h := handlers.NewParkHandler(svc, 0)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/parks/{id}", h.UpdatePark)

	body, contentType := multipartPark(t, false)
	req := httptest.NewRequest(http.MethodPut, "/api/parks/p1", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, asActor(req, owner))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestParkHandler_CreatePark_NotMultipart(t *testing.T) {
	svc := new(MockParkService)
	h := handlers.NewParkHandler(svc, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/parks", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.CreatePark(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation-error", decode(t, rr).Outcome)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestParkHandler_DeletePark_Forbidden(t *testing.T) {
	svc := new(MockParkService)
	svc.On("Delete", mock.Anything, owner, "p1").
		Return(nil, apperrors.NewForbiddenError("you do not have permission to modify this park"))
	h := handlers.NewParkHandler(svc, 0)

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/parks/{id}", h.DeletePark)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, asActor(httptest.NewRequest(http.MethodDelete, "/api/parks/p1", nil), owner))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "forbidden", decode(t, rr).Outcome)
}

func TestCommentHandler_CreateComment(t *testing.T) {
	svc := new(MockCommentService)
	svc.On("Create", mock.Anything, owner, "p1", "Lovely").Return(&entities.Comment{ID: "c1", Text: "Lovely"}, nil)
	h := handlers.NewCommentHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/parks/{id}/comments", h.CreateComment)
	req := httptest.NewRequest(http.MethodPost, "/api/parks/p1/comments", strings.NewReader(`{"text":"Lovely"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, asActor(req, owner))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Created new comment!", decode(t, rr).Message)
	svc.AssertExpectations(t)
}

func TestCommentHandler_DeleteComment_PassesIDs(t *testing.T) {
	svc := new(MockCommentService)
	svc.On("Delete", mock.Anything, (*entities.Actor)(nil), "p1", "c9").Return(nil, apperrors.NewNotFoundError("comment not found"))
	h := handlers.NewCommentHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/parks/{id}/comments/{commentId}", h.DeleteComment)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/parks/p1/comments/c9", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}

func TestCommentHandler_BadJSON(t *testing.T) {
	h := handlers.NewCommentHandler(new(MockCommentService))

	rr := httptest.NewRecorder()
	h.CreateComment(rr, httptest.NewRequest(http.MethodPost, "/api/parks/p1/comments", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReviewHandler_RatingParsing(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		rating  int
		message string
	}{
		{"number", `{"rating":4,"text":"ok"}`, 4, ""},
		{"string", `{"rating":"5"}`, 5, ""},
		{"fraction", `{"rating":4.5}`, 0, "4.5 is not an integer value."},
		{"missing", `{"text":"no stars"}`, 0, "Please provide a rating (1-5 stars)."},
		{"out of range", `{"rating":9}`, 0, "rating must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockReviewService)
			if tt.message == "" {
				svc.On("Create", mock.Anything, owner, "p1", mock.MatchedBy(func(in services.ReviewInput) bool {
					return in.Rating == tt.rating
				})).Return(&entities.Review{ID: "r1", Rating: tt.rating}, nil)
			}
			h := handlers.NewReviewHandler(svc)

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/parks/{id}/reviews", h.CreateReview)
			req := httptest.NewRequest(http.MethodPost, "/api/parks/p1/reviews", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, asActor(req, owner))

			if tt.message == "" {
				assert.Equal(t, http.StatusCreated, rr.Code)
				svc.AssertExpectations(t)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, decode(t, rr).Error)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReviewHandler_DuplicateReview(t *testing.T) {
	svc := new(MockReviewService)
	svc.On("Create", mock.Anything, owner, "p1", services.ReviewInput{Rating: 3}).
		Return(nil, apperrors.NewValidationError("You have already reviewed this park."))
	h := handlers.NewReviewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/parks/{id}/reviews", h.CreateReview)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, asActor(httptest.NewRequest(http.MethodPost, "/api/parks/p1/reviews", strings.NewReader(`{"rating":3}`)), owner))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	env := decode(t, rr)
	assert.Equal(t, "validation-error", env.Outcome)
	assert.Equal(t, "You have already reviewed this park.", env.Error)
}

func TestAuthHandler_LoginSetsCookie(t *testing.T) {
	svc := new(MockAuthService)
	expires := time.Now().Add(time.Hour)
	svc.On("Login", mock.Anything, "alice", "correct horse").Return(&services.Session{
		User:      &entities.User{ID: "u1", Username: "alice", PasswordHash: "secret-hash"},
		Token:     "signed-token",
		ExpiresAt: expires,
	}, nil)
	h := handlers.NewAuthHandler(svc, handlers.CookieConfig{Name: "park_session"})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"correct horse"}`))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Welcome back, alice!", decode(t, rr).Message)
	assert.NotContains(t, rr.Body.String(), "secret-hash")

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "park_session", cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_SignupConflict(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Signup", mock.Anything, "alice", "correct horse").
		Return(nil, apperrors.NewConflictError("A user with the given username is already registered"))
	h := handlers.NewAuthHandler(svc, handlers.CookieConfig{Name: "park_session"})

	rr := httptest.NewRecorder()
	h.Signup(rr, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{"username":"alice","password":"correct horse"}`)))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestAuthHandler_Logout(t *testing.T) {
	h := handlers.NewAuthHandler(new(MockAuthService), handlers.CookieConfig{Name: "park_session"})

	rr := httptest.NewRecorder()
	h.Logout(rr, asActor(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), owner))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Goodbye, alice!", decode(t, rr).Message)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)

	rr = httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
