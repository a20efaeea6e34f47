package auth

import "context"

type contextKey struct{}

// Identity is the minimal verified identity of a request or connection.
// It is produced once at the boundary (login or session verification) and
// passed explicitly through context; a user belongs to exactly one
// household for the lifetime of a session.
type Identity struct {
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	HouseholdID   int64  `json:"household_id"`
	HouseholdName string `json:"household_name"`
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
