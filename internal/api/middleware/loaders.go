package middleware

import (
	"net/http"

	"github.com/zatekoja/parkdiscovery/internal/application/loaders"
	"github.com/zatekoja/parkdiscovery/internal/domain/repositories"
)

// LoadersMiddleware gives every request its own comment and review batch loaders
func LoadersMiddleware(comments repositories.CommentRepository, reviews repositories.ReviewRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(comments, reviews))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
