package auth

import (
	"context"
	"errors"
)

// Actor is the authenticated identity stamped into audit records.
// Area is optional (empty when the account has no organizational unit).
type Actor struct {
	ID     string
	Nombre string
	Area   string
	Rol    string
}

type ctxKey int

const ctxActor ctxKey = iota

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxActor, a)
}

func ActorFrom(ctx context.Context) (Actor, error) {
	v := ctx.Value(ctxActor)
	if a, ok := v.(Actor); ok && a.ID != "" {
		return a, nil
	}
	return Actor{}, errors.New("actor not in context")
}

func Role(ctx context.Context) (string, error) {
	a, err := ActorFrom(ctx)
	if err != nil || a.Rol == "" {
		return "", errors.New("role not in context")
	}
	return a.Rol, nil
}
