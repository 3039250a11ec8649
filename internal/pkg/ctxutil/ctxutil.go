package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

var actorKey = struct{}{}

// Actor is the authenticated principal of one request. It is attached
// by the auth middleware and read by services for ownership checks. It
// is immutable for the lifetime of the request and never outlives it.
type Actor struct {
	UserID uuid.UUID
	Token  string
}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

func GetActor(ctx context.Context) *Actor {
	if a, ok := ctx.Value(actorKey).(*Actor); ok {
		return a
	}
	return nil
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
