package api

import (
	"context"

	"github.com/shelterconnect/platform/pkg/directory"
)

type actorKey struct{}

func withActor(ctx context.Context, user directory.User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFromContext returns the authenticated user set by the auth
// middleware.
func ActorFromContext(ctx context.Context) (directory.User, bool) {
	user, ok := ctx.Value(actorKey{}).(directory.User)
	return user, ok
}
