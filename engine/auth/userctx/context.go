// Package userctx carries the authenticated principal through a request
// context. The auth middleware stores it; handlers and the audit trail read it.
package userctx

import (
	"context"

	"github.com/compozy/defaultdesk/engine/auth/model"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*model.Principal)
	return p, ok && p != nil && p.User != nil
}
