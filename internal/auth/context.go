package auth

import (
	"context"

	"github.com/cardvault/cardvault/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// actorContextKey is the context key for storing the caller Actor.
	actorContextKey contextKey = "actor"
)

// ContextWithActor adds the caller identity to the context.
func ContextWithActor(ctx context.Context, actor *model.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext retrieves the caller identity from the context.
// Returns nil if not present.
func ActorFromContext(ctx context.Context) *model.Actor {
	actor, ok := ctx.Value(actorContextKey).(*model.Actor)
	if !ok {
		return nil
	}
	return actor
}

// MustActorFromContext retrieves the caller identity from the context.
// Panics if not present (use only when auth middleware has run).
func MustActorFromContext(ctx context.Context) *model.Actor {
	actor := ActorFromContext(ctx)
	if actor == nil {
		panic("actor not found in context - ensure auth middleware is applied")
	}
	return actor
}
