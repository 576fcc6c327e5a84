// Package task implements task creation and the reassignment workflow.
package task

import (
	"context"
	"errors"
	"log/slog"

	"taskflow/internal/domain"
	"taskflow/internal/service/security"
)

// TaskService creates and reads tasks.
type TaskService struct {
	projects    domain.ProjectRepository
	memberships domain.MembershipRepository
	tasks       domain.TaskRepository
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(projects domain.ProjectRepository, memberships domain.MembershipRepository, tasks domain.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		projects:    projects,
		memberships: memberships,
		tasks:       tasks,
		logger:      logger.With("component", "task"),
	}
}

// Create adds a task to a project. Project members and elevated users may
// create tasks; an assignee who is not yet a member joins the project as
// DEVELOPER in the same transaction.
func (s *TaskService) Create(ctx context.Context, req domain.CreateTaskRequest) (*domain.Task, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := openProject(ctx, s.projects, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := requireMemberOrElevated(ctx, s.memberships, actor, p.ID); err != nil {
		return nil, err
	}

	t, err := s.tasks.Create(ctx, &domain.Task{
		ProjectID:   p.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskTodo,
		AssigneeID:  req.AssigneeID,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task", t.ID, "project", p.ID, "by", actor.ID)
	return t, nil
}

// Get returns a task to project members and elevated users.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	actor, err := security.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireMemberOrElevated(ctx, s.memberships, actor, t.ProjectID); err != nil {
		return nil, err
	}
	return t, nil
}

func openProject(ctx context.Context, projects domain.ProjectRepository, id string) (*domain.Project, error) {
	p, err := projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.AcceptsWork() {
		return nil, domain.ErrConflict("project %s is %s", p.ID, p.Status)
	}
	return p, nil
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

func requireMemberOrElevated(ctx context.Context, memberships domain.MembershipRepository, actor domain.Actor, projectID string) error {
	if actor.IsElevated() {
		return nil
	}
	ok, err := isMember(ctx, memberships, projectID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrAccessDenied("%s is not a member of project %s", actor.ID, projectID)
	}
	return nil
}
