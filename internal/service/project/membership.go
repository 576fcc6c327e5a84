package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskflow/internal/domain"
	"taskflow/internal/service/notification"
	"taskflow/internal/service/security"
)

// MembershipService manages the membership ledger explicitly. Workflow
// paths that add members implicitly go through the repositories instead.
type MembershipService struct {
	projects    domain.ProjectRepository
	users       domain.UserRepository
	memberships domain.MembershipRepository
	notifier    domain.Notifier
	logger      *slog.Logger
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(projects domain.ProjectRepository, users domain.UserRepository, memberships domain.MembershipRepository, notifier domain.Notifier, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		projects:    projects,
		users:       users,
		memberships: memberships,
		notifier:    notifier,
		logger:      logger.With("component", "membership"),
	}
}

// AddMember adds userID to the project. Adding an existing member is a
// ConflictError; an empty role means DEVELOPER.
func (s *MembershipService) AddMember(ctx context.Context, projectID, userID, role string) (*domain.ProjectMembership, error) {
	actor, err := security.Require(ctx, domain.PermManageMembers)
	if err != nil {
		return nil, err
	}
	r := domain.DefaultMemberRole
	if role != "" {
		if r, err = domain.ParseProjectRole(role); err != nil {
			return nil, err
		}
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := requireOpen(p); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	m, err := s.memberships.Add(ctx, &domain.ProjectMembership{ProjectID: projectID, UserID: userID, Role: r})
	if err != nil {
		return nil, err
	}
	s.logger.Info("member added", "project", projectID, "user", userID, "role", r, "by", actor.ID)

	notification.Dispatch(ctx, s.notifier, s.logger, &domain.Notification{
		RecipientID: userID,
		Title:       "Added to project",
		Body:        fmt.Sprintf("You were added to %q as %s.", p.Name, r),
		Severity:    domain.SeverityInfo,
		LinkPath:    notification.Link("/projects/" + projectID),
	})
	return m, nil
}

// ChangeRole updates a member's project role. The owner always remains
// PROJECT_MANAGER.
func (s *MembershipService) ChangeRole(ctx context.Context, projectID, userID, role string) (*domain.ProjectMembership, error) {
	actor, err := security.Require(ctx, domain.PermManageMembers)
	if err != nil {
		return nil, err
	}
	r, err := domain.ParseProjectRole(role)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID == userID && r != domain.ProjectRoleManager {
		return nil, domain.ErrConflict("the owner of project %s must remain %s", projectID, domain.ProjectRoleManager)
	}

	m, err := s.memberships.UpdateRole(ctx, projectID, userID, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info("member role changed", "project", projectID, "user", userID, "role", r, "by", actor.ID)
	return m, nil
}

// RemoveMember removes userID from the project. The owner and users still
// assigned to tasks in the project cannot be removed.
func (s *MembershipService) RemoveMember(ctx context.Context, projectID, userID string) error {
	actor, err := security.Require(ctx, domain.PermManageMembers)
	if err != nil {
		return err
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == userID {
		return domain.ErrConflict("cannot remove the owner of project %s", projectID)
	}
	if err := s.memberships.Remove(ctx, projectID, userID); err != nil {
		return err
	}
	s.logger.Info("member removed", "project", projectID, "user", userID, "by", actor.ID)
	return nil
}

// ListMembers returns a page of the project's members.
func (s *MembershipService) ListMembers(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.ProjectMembership, int64, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, 0, err
	}
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	if err := checkProjectAccess(ctx, s.memberships, actor, p); err != nil {
		return nil, 0, err
	}
	return s.memberships.List(ctx, projectID, page)
}

// IsMember reports whether userID belongs to the project.
func (s *MembershipService) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	return isMember(ctx, s.memberships, projectID, userID)
}

func isMember(ctx context.Context, memberships domain.MembershipRepository, projectID, userID string) (bool, error) {
	_, err := memberships.Get(ctx, projectID, userID)
	if err == nil {
		return true, nil
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}
