package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tablemaster/tablemaster/pkg/constants"
)

func withValue(ctx context.Context, key constants.ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}

// Provide stores value under key in every request context. A nil value is skipped.
func Provide(key constants.ContextKey, value any) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if value == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withValue(r.Context(), key, value)))
		})
	}
}
