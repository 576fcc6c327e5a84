package domain

import (
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project lifecycle statuses.
const (
	ProjectStatusPendingReview ProjectStatus = "PENDING_REVIEW"
	ProjectStatusActive        ProjectStatus = "ACTIVE"
	ProjectStatusArchived      ProjectStatus = "ARCHIVED"
	ProjectStatusRejected      ProjectStatus = "REJECTED"
)

// AcceptsWork reports whether members, invitations and reassignments may
// still be added to a project in this state.
func (s ProjectStatus) AcceptsWork() bool {
	return s == ProjectStatusActive || s == ProjectStatusPendingReview
}

// CanTransition reports whether a project may move from s to next.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	switch s {
	case ProjectStatusPendingReview:
		return next == ProjectStatusActive || next == ProjectStatusRejected
	case ProjectStatusActive:
		return next == ProjectStatusArchived
	default:
		return false
	}
}

// ProjectRole is a user's role within a single project.
type ProjectRole string

// Project roles.
const (
	ProjectRoleManager   ProjectRole = "PROJECT_MANAGER"
	ProjectRoleDeveloper ProjectRole = "DEVELOPER"
	ProjectRoleTester    ProjectRole = "TESTER"
	ProjectRoleViewer    ProjectRole = "VIEWER"
)

// DefaultMemberRole is used when a user is added to a project implicitly,
// e.g. as the target of a reassignment.
const DefaultMemberRole = ProjectRoleDeveloper

// ParseProjectRole validates s against the closed set of project roles.
func ParseProjectRole(s string) (ProjectRole, error) {
	switch r := ProjectRole(strings.ToUpper(strings.TrimSpace(s))); r {
	case ProjectRoleManager, ProjectRoleDeveloper, ProjectRoleTester, ProjectRoleViewer:
		return r, nil
	default:
		return "", ErrValidation("unknown project role %q", s)
	}
}

// Project groups tasks and members under a single owner.
type Project struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMembership records that a user belongs to a project. At most one
// membership exists per (ProjectID, UserID).
type ProjectMembership struct {
	ID        string
	ProjectID string
	UserID    string
	Role      ProjectRole
	CreatedAt time.Time
}

// CreateProjectRequest holds parameters for creating a project.
type CreateProjectRequest struct {
	Name        string
	Description string
}

// Validate checks that the request is well-formed.
func (r *CreateProjectRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrValidation("project name is required")
	}
	if len(r.Name) > 200 {
		return ErrValidation("project name must be at most 200 characters")
	}
	return nil
}

// ProjectReviewDecision is the outcome of a project review.
type ProjectReviewDecision string

// Project review outcomes.
const (
	ProjectApprove ProjectReviewDecision = "APPROVE"
	ProjectReject  ProjectReviewDecision = "REJECT"
)

// TargetStatus maps the decision to the project status it produces.
func (d ProjectReviewDecision) TargetStatus() (ProjectStatus, error) {
	switch d {
	case ProjectApprove:
		return ProjectStatusActive, nil
	case ProjectReject:
		return ProjectStatusRejected, nil
	default:
		return "", ErrValidation("review decision must be APPROVE or REJECT, got %q", string(d))
	}
}
