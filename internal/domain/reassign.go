package domain

import (
	"strings"
	"time"
)

// ReassignStatus is the state of a reassignment request.
type ReassignStatus string

// Reassignment request statuses.
const (
	ReassignPending  ReassignStatus = "PENDING"
	ReassignApproved ReassignStatus = "APPROVED"
	ReassignRejected ReassignStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed.
func (s ReassignStatus) IsTerminal() bool {
	return s == ReassignApproved || s == ReassignRejected
}

// CanTransition reports whether a request may move from s to next.
func (s ReassignStatus) CanTransition(next ReassignStatus) bool {
	return s == ReassignPending && next.IsTerminal()
}

// ParseReviewDecision validates a reviewer's decision. Only terminal
// statuses are valid decisions.
func ParseReviewDecision(s string) (ReassignStatus, error) {
	switch st := ReassignStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case ReassignApproved, ReassignRejected:
		return st, nil
	default:
		return "", ErrValidation("decision must be APPROVED or REJECTED, got %q", s)
	}
}

// ReassignRequest asks a reviewer to move a task to a new assignee.
// ReviewerID and ReviewedAt are set only on resolution.
type ReassignRequest struct {
	ID            string
	TaskID        string
	RequesterID   string
	NewAssigneeID string
	Comment       *string
	Status        ReassignStatus
	ReviewerID    *string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
}

// CreateReassignRequest holds parameters for changing a task's assignee.
type CreateReassignRequest struct {
	TaskID        string
	NewAssigneeID string
	Comment       string
}

// Validate checks that the request is well-formed.
func (r *CreateReassignRequest) Validate() error {
	if r.TaskID == "" {
		return ErrValidation("task_id is required")
	}
	if r.NewAssigneeID == "" {
		return ErrValidation("new_assignee_id is required")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if len(r.Comment) > 2000 {
		return ErrValidation("comment must be at most 2000 characters")
	}
	return nil
}

// ReassignOutcome reports which path a reassignment took: Task is set when
// the assignee changed immediately, Request when approval is pending.
type ReassignOutcome struct {
	Task    *Task
	Request *ReassignRequest
}

// Direct reports whether the reassignment was applied without approval.
func (o ReassignOutcome) Direct() bool {
	return o.Request == nil
}
