package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/tablemaster/tablemaster/pkg/composables"
)

// ActorOptions name the headers an upstream auth proxy uses to forward the signed-in user.
type ActorOptions struct {
	UserIDHeader string
	EmailHeader  string
	NameHeader   string
	RoleHeader   string
	AdminRole    string
	AdminEmails  []string
}

// WithActor resolves the caller identity from trusted headers. Requests without
// a user id carry an anonymous Actor.
func WithActor(opts ActorOptions) mux.MiddlewareFunc {
	adminEmails := make([]string, 0, len(opts.AdminEmails))
	for _, e := range opts.AdminEmails {
		adminEmails = append(adminEmails, strings.ToLower(strings.TrimSpace(e)))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := composables.Actor{
				ID:       strings.TrimSpace(r.Header.Get(opts.UserIDHeader)),
				Email:    strings.TrimSpace(r.Header.Get(opts.EmailHeader)),
				FullName: strings.TrimSpace(r.Header.Get(opts.NameHeader)),
				Role:     strings.TrimSpace(r.Header.Get(opts.RoleHeader)),
			}
			if actor.ID != "" {
				actor.Admin = (opts.AdminRole != "" && strings.EqualFold(actor.Role, opts.AdminRole)) ||
					(actor.Email != "" && slices.Contains(adminEmails, strings.ToLower(actor.Email)))
			}
			ctx := composables.WithActor(r.Context(), actor)
			if actor.ID != "" {
				ctx = composables.WithLogger(ctx, composables.UseLogger(ctx).WithField("user-id", actor.ID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
