package domain

import (
	"context"
	"slices"
)

type actorKey struct{}

// Actor is the authenticated identity an operation runs on behalf of.
// It is resolved once per request and passed explicitly through context.
type Actor struct {
	ID          string
	Name        string
	Role        GlobalRole
	Permissions []Permission
	IsActive    bool
}

// IsElevated reports whether the actor holds a manager or administrator
// global role.
func (a Actor) IsElevated() bool {
	return a.Role.IsElevated()
}

// IsAdmin reports whether the actor holds the administrator global role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasPermission reports whether p was explicitly granted to the actor.
func (a Actor) HasPermission(p Permission) bool {
	return slices.Contains(a.Permissions, p)
}

// ActorFromUser builds the context identity for a stored user.
func ActorFromUser(u *User) Actor {
	return Actor{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Permissions: slices.Clone(u.Permissions),
		IsActive:    u.Active,
	}
}

// WithActor stores an Actor in the context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext extracts the Actor from the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
