// Package security implements identity, authorization rules and explicit
// permission grants.
package security

import (
	"context"

	"taskflow/internal/domain"
)

// CurrentActor returns the active actor carried by ctx.
func CurrentActor(ctx context.Context) (domain.Actor, error) {
	a, ok := domain.ActorFromContext(ctx)
	if !ok || a.ID == "" {
		return domain.Actor{}, domain.ErrUnauthorized("authentication required")
	}
	if !a.IsActive {
		return domain.Actor{}, domain.ErrUnauthorized("user %s is deactivated", a.ID)
	}
	return a, nil
}

// Can reports whether the actor may perform an action guarded by p: an
// elevated global role or an explicit grant of p both suffice.
func Can(a domain.Actor, p domain.Permission) bool {
	return a.IsElevated() || a.HasPermission(p)
}

// Require returns the current actor if they may perform an action guarded
// by p.
func Require(ctx context.Context, p domain.Permission) (domain.Actor, error) {
	a, err := CurrentActor(ctx)
	if err != nil {
		return a, err
	}
	if !Can(a, p) {
		return a, domain.ErrAccessDenied("%s requires a manager role or the %s permission", a.ID, p)
	}
	return a, nil
}

// RequireElevated gates actions on the global role alone. No explicit
// permission substitutes for it.
func RequireElevated(ctx context.Context) (domain.Actor, error) {
	a, err := CurrentActor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsElevated() {
		return a, domain.ErrAccessDenied("manager or administrator role required")
	}
	return a, nil
}

// RequireAdmin gates actions reserved to administrators.
func RequireAdmin(ctx context.Context) (domain.Actor, error) {
	a, err := CurrentActor(ctx)
	if err != nil {
		return a, err
	}
	if !a.IsAdmin() {
		return a, domain.ErrAccessDenied("administrator role required")
	}
	return a, nil
}
