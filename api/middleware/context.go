package middleware

import (
	"context"

	"github.com/voltline/voltline-backend/internal/orders"
	"github.com/voltline/voltline-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxRole    contextKey = "actor_role"
	ctxStoreID contextKey = "store_id"
)

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func RoleFromContext(ctx context.Context) enums.Role {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.Role); ok {
		return v
	}
	return ""
}

func StoreIDFromContext(ctx context.Context) *int64 {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxStoreID).(int64); ok {
		return &v
	}
	return nil
}

// ActorFromContext assembles the acting party every order transition
// requires from the authenticated claims.
func ActorFromContext(ctx context.Context) orders.Actor {
	return orders.Actor{
		UserID:  UserIDFromContext(ctx),
		Role:    RoleFromContext(ctx),
		StoreID: StoreIDFromContext(ctx),
	}
}

// WithActor seeds the context with authenticated identity. Exposed for
// handler tests.
func WithActor(ctx context.Context, userID int64, role enums.Role, storeID *int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	if storeID != nil {
		ctx = context.WithValue(ctx, ctxStoreID, *storeID)
	}
	return ctx
}
