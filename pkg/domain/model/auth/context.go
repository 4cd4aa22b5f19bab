package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/domain/model"
)

// ErrNoUser is returned when the context carries no authenticated user
var ErrNoUser = goerr.New("no authenticated user in context")

type ctxUserKey struct{}

// ContextWithUser returns a copy of ctx carrying the authenticated user
func ContextWithUser(ctx context.Context, user *model.UserContext) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, user)
}

// UserFromContext returns the authenticated user stored in ctx
func UserFromContext(ctx context.Context) (*model.UserContext, error) {
	user, ok := ctx.Value(ctxUserKey{}).(*model.UserContext)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}
