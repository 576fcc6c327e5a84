package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/service/notification"
	"taskflow/internal/service/security"
)

// InvitationService runs the invitation workflow:
// PENDING -> ACCEPTED | DECLINED.
type InvitationService struct {
	projects    domain.ProjectRepository
	users       domain.UserRepository
	memberships domain.MembershipRepository
	invitations domain.InvitationRepository
	notifier    domain.Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	projects domain.ProjectRepository,
	users domain.UserRepository,
	memberships domain.MembershipRepository,
	invitations domain.InvitationRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
) *InvitationService {
	return &InvitationService{
		projects:    projects,
		users:       users,
		memberships: memberships,
		invitations: invitations,
		notifier:    notifier,
		logger:      logger.With("component", "invitation"),
		now:         time.Now,
	}
}

// Create invites a user to join a project with the given role.
func (s *InvitationService) Create(ctx context.Context, req domain.CreateInvitationRequest) (*domain.Invitation, error) {
	actor, err := security.Require(ctx, domain.PermInviteMember)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := requireOpen(p); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, req.InviteeID); err != nil {
		return nil, err
	}

	member, err := isMember(ctx, s.memberships, req.ProjectID, req.InviteeID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, domain.ErrConflict("user %s is already a member of project %s", req.InviteeID, req.ProjectID)
	}

	pending := domain.InvitationPending
	_, open, err := s.invitations.List(ctx, domain.InvitationFilter{
		InviteeID: &req.InviteeID,
		ProjectID: &req.ProjectID,
		Status:    &pending,
		Page:      domain.PageRequest{MaxResults: 1},
	})
	if err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, domain.ErrConflict("user %s already has a pending invitation to project %s", req.InviteeID, req.ProjectID)
	}

	// The store's one-pending-per-pair index still rejects a concurrent
	// duplicate that slips past the check above.
	inv, err := s.invitations.Create(ctx, &domain.Invitation{
		ProjectID: req.ProjectID,
		InviterID: actor.ID,
		InviteeID: req.InviteeID,
		Role:      req.Role,
		Status:    domain.InvitationPending,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("invitation created", "invitation", inv.ID, "project", p.ID, "invitee", inv.InviteeID, "inviter", actor.ID)

	notification.Dispatch(ctx, s.notifier, s.logger, &domain.Notification{
		RecipientID: inv.InviteeID,
		Title:       "Project invitation",
		Body:        fmt.Sprintf("%s invited you to join %q as %s.", actorName(actor), p.Name, inv.Role),
		Severity:    domain.SeverityInfo,
		LinkPath:    notification.Link("/invitations/" + inv.ID),
	})
	return inv, nil
}

// Respond records the invitee's decision. Accepting creates the membership
// in the same transaction that marks the invitation ACCEPTED.
func (s *InvitationService) Respond(ctx context.Context, id, decision string) (*domain.Invitation, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	d, err := domain.ParseInvitationDecision(decision)
	if err != nil {
		return nil, err
	}
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != actor.ID {
		return nil, domain.ErrAccessDenied("only the invitee may respond to invitation %s", id)
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrConflict("invitation %s is already %s", id, inv.Status)
	}

	p, err := s.projects.GetByID(ctx, inv.ProjectID)
	if err != nil {
		return nil, err
	}

	n := &domain.Notification{
		RecipientID: inv.InviterID,
		LinkPath:    notification.Link("/projects/" + p.ID),
	}
	switch d {
	case domain.DecisionAccept:
		if err := requireOpen(p); err != nil {
			return nil, err
		}
		if inv, _, err = s.invitations.Accept(ctx, id, s.now()); err != nil {
			return nil, err
		}
		n.Title = "Invitation accepted"
		n.Body = fmt.Sprintf("%s joined %q as %s.", actorName(actor), p.Name, inv.Role)
		n.Severity = domain.SeveritySuccess
	default:
		if inv, err = s.invitations.Decline(ctx, id, s.now()); err != nil {
			return nil, err
		}
		n.Title = "Invitation declined"
		n.Body = fmt.Sprintf("%s declined your invitation to %q.", actorName(actor), p.Name)
		n.Severity = domain.SeverityInfo
	}
	s.logger.Info("invitation answered", "invitation", inv.ID, "status", inv.Status, "invitee", actor.ID)

	notification.Dispatch(ctx, s.notifier, s.logger, n)
	return inv, nil
}

// Get returns an invitation to its invitee, its inviter or an elevated user.
func (s *InvitationService) Get(ctx context.Context, id string) (*domain.Invitation, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != actor.ID && inv.InviterID != actor.ID && !actor.IsElevated() {
		return nil, domain.ErrAccessDenied("invitation %s is not visible to %s", id, actor.ID)
	}
	return inv, nil
}

// ListMine returns the actor's invitations, optionally filtered by status.
func (s *InvitationService) ListMine(ctx context.Context, status string, page domain.PageRequest) ([]domain.Invitation, int64, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, 0, err
	}
	filter := domain.InvitationFilter{InviteeID: &actor.ID, Page: page}
	if status != "" {
		st, err := domain.ParseInvitationStatus(status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = &st
	}
	return s.invitations.List(ctx, filter)
}

// ListForProject returns a page of the project's invitations.
func (s *InvitationService) ListForProject(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.Invitation, int64, error) {
	if _, err := security.Require(ctx, domain.PermInviteMember); err != nil {
		return nil, 0, err
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, 0, err
	}
	return s.invitations.List(ctx, domain.InvitationFilter{ProjectID: &projectID, Page: page})
}

func actorName(a domain.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
