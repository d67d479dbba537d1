package api

import (
	"context"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
)

// Actor is the authenticated caller attached to the request context.
type Actor struct {
	ID    string
	Email string
	Name  string
	Role  user.Role
}

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == user.RoleAdmin }

type ctxKey string

const ctxKeyActor ctxKey = "actor"

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

func ActorFromContext(ctx context.Context) *Actor {
	v := ctx.Value(ctxKeyActor)
	if v == nil {
		return nil
	}
	a, _ := v.(*Actor)
	return a
}
