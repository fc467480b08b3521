package routes

import (
	"net/http"

	"github.com/zatekoja/parkdiscovery/internal/api/handlers"
	"github.com/zatekoja/parkdiscovery/internal/api/middleware"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler    *handlers.AuthHandler
	parkHandler    *handlers.ParkHandler
	commentHandler *handlers.CommentHandler
	reviewHandler  *handlers.ReviewHandler

	authenticator  middleware.Authenticator
	cookieName     string
	comments       repositories.CommentRepository
	reviews        repositories.ReviewRepository
	allowedOrigins []string
	metrics        *observability.Metrics
}

// Options carries what the middleware chain needs besides the handlers
type Options struct {
	Authenticator  middleware.Authenticator
	CookieName     string
	Comments       repositories.CommentRepository
	Reviews        repositories.ReviewRepository
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	parkHandler *handlers.ParkHandler,
	commentHandler *handlers.CommentHandler,
	reviewHandler *handlers.ReviewHandler,
	opts Options,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		authHandler:    authHandler,
		parkHandler:    parkHandler,
		commentHandler: commentHandler,
		reviewHandler:  reviewHandler,
		authenticator:  opts.Authenticator,
		cookieName:     opts.CookieName,
		comments:       opts.Comments,
		reviews:        opts.Reviews,
		allowedOrigins: opts.AllowedOrigins,
		metrics:        opts.Metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/signup", r.authHandler.Signup)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/me", r.authHandler.Me)

	// Park endpoints
	r.mux.HandleFunc("GET /api/parks", r.parkHandler.ListParks)
	r.mux.HandleFunc("POST /api/parks", r.parkHandler.CreatePark)
	r.mux.HandleFunc("GET /api/parks/{id}", r.parkHandler.GetPark)
	r.mux.HandleFunc("PUT /api/parks/{id}", r.parkHandler.UpdatePark)
	r.mux.HandleFunc("DELETE /api/parks/{id}", r.parkHandler.DeletePark)

	// Comment endpoints
	r.mux.HandleFunc("GET /api/parks/{id}/comments", r.commentHandler.ListComments)
	r.mux.HandleFunc("POST /api/parks/{id}/comments", r.commentHandler.CreateComment)
	r.mux.HandleFunc("PUT /api/parks/{id}/comments/{commentId}", r.commentHandler.UpdateComment)
	r.mux.HandleFunc("DELETE /api/parks/{id}/comments/{commentId}", r.commentHandler.DeleteComment)

	// Review endpoints
	r.mux.HandleFunc("GET /api/parks/{id}/reviews", r.reviewHandler.ListReviews)
	r.mux.HandleFunc("POST /api/parks/{id}/reviews", r.reviewHandler.CreateReview)
	r.mux.HandleFunc("PUT /api/parks/{id}/reviews/{reviewId}", r.reviewHandler.UpdateReview)
	r.mux.HandleFunc("DELETE /api/parks/{id}/reviews/{reviewId}", r.reviewHandler.DeleteReview)

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits next to the mux so it sees the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	if r.comments != nil && r.reviews != nil {
		handler = middleware.LoadersMiddleware(r.comments, r.reviews)(handler)
	}
	if r.authenticator != nil {
		handler = middleware.AuthMiddleware(r.authenticator, r.cookieName)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
