package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskflow/internal/domain"
	"taskflow/internal/service/notification"
	"taskflow/internal/service/security"
)

// ReassignService changes task ownership. Privileged actors reassign
// directly; everyone else files a request that a reviewer approves or
// rejects.
type ReassignService struct {
	projects    domain.ProjectRepository
	users       domain.UserRepository
	memberships domain.MembershipRepository
	tasks       domain.TaskRepository
	requests    domain.ReassignRepository
	notifier    domain.Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewReassignService creates a new ReassignService.
func NewReassignService(
	projects domain.ProjectRepository,
	users domain.UserRepository,
	memberships domain.MembershipRepository,
	tasks domain.TaskRepository,
	requests domain.ReassignRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
) *ReassignService {
	return &ReassignService{
		projects:    projects,
		users:       users,
		memberships: memberships,
		tasks:       tasks,
		requests:    requests,
		notifier:    notifier,
		logger:      logger.With("component", "reassign"),
		now:         time.Now,
	}
}

// Reassign moves a task to a new assignee. Actors holding REASSIGN_TASK
// (or an elevated role) take the direct path; the outcome carries only the
// updated task. Anyone else gets a PENDING request in the outcome and the
// task is left untouched.
func (s *ReassignService) Reassign(ctx context.Context, req domain.CreateReassignRequest) (*domain.ReassignOutcome, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if !security.Can(actor, domain.PermReassignTask) {
		r, err := s.RequestReassign(ctx, req)
		if err != nil {
			return nil, err
		}
		return &domain.ReassignOutcome{Request: r}, nil
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	p, err := openProject(ctx, s.projects, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, req.NewAssigneeID); err != nil {
		return nil, err
	}

	t, err = s.tasks.Reassign(ctx, t.ID, req.NewAssigneeID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task reassigned", "task", t.ID, "assignee", req.NewAssigneeID, "by", actor.ID)

	notification.Dispatch(ctx, s.notifier, s.logger, &domain.Notification{
		RecipientID: req.NewAssigneeID,
		Title:       "Task assigned",
		Body:        fmt.Sprintf("%q in %q is now assigned to you.", t.Title, p.Name),
		Severity:    domain.SeverityInfo,
		LinkPath:    notification.Link("/tasks/" + t.ID),
	})
	return &domain.ReassignOutcome{Task: t}, nil
}

// RequestReassign files a PENDING request to move a task. The requester
// must be a project member or the task's current assignee.
func (s *ReassignService) RequestReassign(ctx context.Context, req domain.CreateReassignRequest) (*domain.ReassignRequest, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}
	p, err := openProject(ctx, s.projects, t.ProjectID)
	if err != nil {
		return nil, err
	}
	if t.AssigneeID == nil || *t.AssigneeID != actor.ID {
		member, err := isMember(ctx, s.memberships, p.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, domain.ErrAccessDenied("%s may not request reassignment of task %s", actor.ID, t.ID)
		}
	}
	if _, err := s.users.GetByID(ctx, req.NewAssigneeID); err != nil {
		return nil, err
	}

	r := &domain.ReassignRequest{
		TaskID:        t.ID,
		RequesterID:   actor.ID,
		NewAssigneeID: req.NewAssigneeID,
		Status:        domain.ReassignPending,
	}
	if req.Comment != "" {
		r.Comment = &req.Comment
	}
	r, err = s.requests.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reassignment requested", "request", r.ID, "task", t.ID, "assignee", r.NewAssigneeID, "by", actor.ID)

	notification.Dispatch(ctx, s.notifier, s.logger, &domain.Notification{
		RecipientID: p.OwnerID,
		Title:       "Reassignment requested",
		Body:        fmt.Sprintf("%s asked to reassign %q.", actorName(actor), t.Title),
		Severity:    domain.SeverityInfo,
		LinkPath:    notification.Link("/reassign-requests/" + r.ID),
	})
	return r, nil
}

// Review approves or rejects a PENDING request. Approval moves the task
// and back-fills the new assignee's membership in one transaction.
func (s *ReassignService) Review(ctx context.Context, id, decision string) (*domain.ReassignRequest, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseReviewDecision(decision)
	if err != nil {
		return nil, err
	}
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !security.Can(actor, domain.PermReviewReassign) {
		return nil, domain.ErrAccessDenied("%s may not review reassignment requests", actor.ID)
	}
	if r.Status != domain.ReassignPending {
		return nil, domain.ErrConflict("reassign request %s is already %s", id, r.Status)
	}

	n := &domain.Notification{
		RecipientID: r.RequesterID,
		LinkPath:    notification.Link("/reassign-requests/" + r.ID),
	}
	switch status {
	case domain.ReassignApproved:
		t, err := s.tasks.GetByID(ctx, r.TaskID)
		if err != nil {
			return nil, err
		}
		if _, err := openProject(ctx, s.projects, t.ProjectID); err != nil {
			return nil, err
		}
		if r, _, err = s.requests.Approve(ctx, id, actor.ID, s.now()); err != nil {
			return nil, err
		}
		n.Title = "Reassignment approved"
		n.Body = fmt.Sprintf("Your request to reassign %q was approved.", t.Title)
		n.Severity = domain.SeveritySuccess
	default:
		if r, err = s.requests.Reject(ctx, id, actor.ID, s.now()); err != nil {
			return nil, err
		}
		n.Title = "Reassignment rejected"
		n.Body = "Your reassignment request was rejected."
		n.Severity = domain.SeverityWarning
	}
	s.logger.Info("reassignment reviewed", "request", r.ID, "status", r.Status, "reviewer", actor.ID)

	notification.Dispatch(ctx, s.notifier, s.logger, n)
	return r, nil
}

// Get returns a request to its requester, its proposed assignee or a
// reviewer.
func (s *ReassignService) Get(ctx context.Context, id string) (*domain.ReassignRequest, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != actor.ID && r.NewAssigneeID != actor.ID && !security.Can(actor, domain.PermReviewReassign) {
		return nil, domain.ErrAccessDenied("reassign request %s is not visible to %s", id, actor.ID)
	}
	return r, nil
}

// ListPending returns a project's requests awaiting review.
func (s *ReassignService) ListPending(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.ReassignRequest, int64, error) {
	if _, err := security.Require(ctx, domain.PermReviewReassign); err != nil {
		return nil, 0, err
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, 0, err
	}
	return s.requests.ListPending(ctx, projectID, page)
}

func actorName(a domain.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
