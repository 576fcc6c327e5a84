// Package project implements the project lifecycle, the membership ledger
// and the invitation workflow.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"taskflow/internal/domain"
	"taskflow/internal/service/notification"
	"taskflow/internal/service/security"
)

// ProjectService creates, reviews and archives projects.
type ProjectService struct {
	projects    domain.ProjectRepository
	memberships domain.MembershipRepository
	notifier    domain.Notifier
	logger      *slog.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projects domain.ProjectRepository, memberships domain.MembershipRepository, notifier domain.Notifier, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		projects:    projects,
		memberships: memberships,
		notifier:    notifier,
		logger:      logger.With("component", "project"),
	}
}

// Create stores a project owned by the actor, who also becomes its
// PROJECT_MANAGER member. Projects created through the CREATE_PROJECT
// permission alone start in PENDING_REVIEW.
func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	actor, err := security.Require(ctx, domain.PermCreateProject)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := domain.ProjectStatusPendingReview
	if actor.IsElevated() {
		status = domain.ProjectStatusActive
	}
	p, err := s.projects.Create(ctx, &domain.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     actor.ID,
		Status:      status,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project", p.ID, "owner", actor.ID, "status", p.Status)
	return p, nil
}

// Get returns a project visible to the actor: members and elevated users
// can see it.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkProjectAccess(ctx, s.memberships, actor, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Review approves or rejects a project awaiting review. Only the global
// role grants this; no explicit permission does.
func (s *ProjectService) Review(ctx context.Context, id, decision string) (*domain.Project, error) {
	actor, err := security.RequireElevated(ctx)
	if err != nil {
		return nil, err
	}
	target, err := domain.ProjectReviewDecision(strings.ToUpper(strings.TrimSpace(decision))).TargetStatus()
	if err != nil {
		return nil, err
	}

	p, err := s.projects.TransitionStatus(ctx, id, domain.ProjectStatusPendingReview, target)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project reviewed", "project", p.ID, "status", p.Status, "reviewer", actor.ID)

	n := &domain.Notification{
		RecipientID: p.OwnerID,
		Title:       "Project approved",
		Body:        fmt.Sprintf("Your project %q was approved.", p.Name),
		Severity:    domain.SeveritySuccess,
		LinkPath:    notification.Link("/projects/" + p.ID),
	}
	if target == domain.ProjectStatusRejected {
		n.Title = "Project rejected"
		n.Body = fmt.Sprintf("Your project %q was rejected.", p.Name)
		n.Severity = domain.SeverityWarning
	}
	notification.Dispatch(ctx, s.notifier, s.logger, n)
	return p, nil
}

// Archive closes an active project. The owner or an elevated user may
// archive it.
func (s *ProjectService) Archive(ctx context.Context, id string) (*domain.Project, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actor.ID && !actor.IsElevated() {
		return nil, domain.ErrAccessDenied("only the owner or a manager may archive project %s", id)
	}
	p, err = s.projects.TransitionStatus(ctx, id, domain.ProjectStatusActive, domain.ProjectStatusArchived)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project archived", "project", p.ID, "by", actor.ID)
	return p, nil
}

// checkProjectAccess allows elevated actors and members of p.
func checkProjectAccess(ctx context.Context, memberships domain.MembershipRepository, actor domain.Actor, p *domain.Project) error {
	if actor.IsElevated() || p.OwnerID == actor.ID {
		return nil
	}
	_, err := memberships.Get(ctx, p.ID, actor.ID)
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return domain.ErrAccessDenied("%s is not a member of project %s", actor.ID, p.ID)
	}
	return err
}

// requireOpen rejects work on archived or rejected projects.
func requireOpen(p *domain.Project) error {
	if !p.Status.AcceptsWork() {
		return domain.ErrConflict("project %s is %s", p.ID, p.Status)
	}
	return nil
}
