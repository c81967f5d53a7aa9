package composables

import (
	"context"
	"errors"
	"strings"

	"github.com/tablemaster/tablemaster/pkg/constants"
)

var ErrNoActor = errors.New("no actor found in context")

// Actor is the identity of whoever triggered the current operation.
type Actor struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Admin    bool   `json:"is_admin"`
}

func (a Actor) IsAuthenticated() bool {
	return strings.TrimSpace(a.ID) != ""
}

func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && a.Admin
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, constants.ActorKey, actor)
}

// UseActor returns the actor attached to ctx, or ErrNoActor.
func UseActor(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(constants.ActorKey).(Actor)
	if !ok {
		return Actor{}, ErrNoActor
	}
	return actor, nil
}
