package security

import (
	"context"

	"taskflow/internal/domain"
)

// UserService manages accounts and their global role.
type UserService struct {
	repo domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo domain.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates an active user. Only administrators may register users
// with a role other than USER.
func (s *UserService) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Role != domain.RoleUser {
		if _, err := RequireAdmin(ctx); err != nil {
			return nil, err
		}
	}
	return s.repo.Create(ctx, &domain.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   req.Role,
		Active: true,
	})
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if _, err := CurrentActor(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	if _, err := RequireElevated(ctx); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, page)
}

// SetRole changes a user's global role.
func (s *UserService) SetRole(ctx context.Context, id, role string) (*domain.User, error) {
	caller, err := RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	r, err := domain.ParseGlobalRole(role)
	if err != nil {
		return nil, err
	}
	if caller.ID == id && r != domain.RoleAdmin {
		return nil, domain.ErrConflict("administrators cannot demote themselves")
	}
	if err := s.repo.SetRole(ctx, id, r); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// SetActive enables or disables a user.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	caller, err := RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if caller.ID == id && !active {
		return nil, domain.ErrConflict("administrators cannot deactivate themselves")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
