package security

import (
	"context"
	"log/slog"

	"taskflow/internal/domain"
)

// PermissionService grants and revokes fine-grained permissions.
type PermissionService struct {
	repo   domain.PermissionRepository
	users  domain.UserRepository
	logger *slog.Logger
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(repo domain.PermissionRepository, users domain.UserRepository, logger *slog.Logger) *PermissionService {
	return &PermissionService{repo: repo, users: users, logger: logger}
}

// Grant gives userID the named permission. Granting a permission the user
// already holds is a ConflictError.
func (s *PermissionService) Grant(ctx context.Context, userID, name string) error {
	caller, err := RequireElevated(ctx)
	if err != nil {
		return err
	}
	perm, err := domain.ParsePermission(name)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Grant(ctx, userID, perm, caller.ID); err != nil {
		return err
	}
	s.logger.Info("permission granted", "user", userID, "permission", perm, "by", caller.ID)
	return nil
}

// Revoke removes the named permission from userID. Revoking a permission
// the user does not hold succeeds.
func (s *PermissionService) Revoke(ctx context.Context, userID, name string) error {
	caller, err := RequireElevated(ctx)
	if err != nil {
		return err
	}
	perm, err := domain.ParsePermission(name)
	if err != nil {
		return err
	}
	if err := s.repo.Revoke(ctx, userID, perm); err != nil {
		return err
	}
	s.logger.Info("permission revoked", "user", userID, "permission", perm, "by", caller.ID)
	return nil
}

// ListForUser returns a user's explicit permissions. Users may list their
// own; listing anyone else's requires an elevated role.
func (s *PermissionService) ListForUser(ctx context.Context, userID string) ([]domain.Permission, error) {
	caller, err := CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if caller.ID != userID && !caller.IsElevated() {
		return nil, domain.ErrAccessDenied("cannot list permissions of another user")
	}
	return s.repo.ListForUser(ctx, userID)
}
