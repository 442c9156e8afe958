package model

import "context"

type ctxActorKey struct{}

// ContextWithActor attaches the person performing a request to ctx
func ContextWithActor(ctx context.Context, actor *Stub) context.Context {
	return context.WithValue(ctx, ctxActorKey{}, actor)
}

// ActorFromContext returns the person performing the request, or nil
func ActorFromContext(ctx context.Context) *Stub {
	actor, _ := ctx.Value(ctxActorKey{}).(*Stub)
	return actor
}
