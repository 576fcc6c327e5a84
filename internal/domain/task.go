package domain

import (
	"strings"
	"time"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

// Task statuses.
const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// Task is a unit of work inside a project. AssigneeID is nil or refers to
// a current member of ProjectID.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      TaskStatus
	AssigneeID  *string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTaskRequest holds parameters for creating a task.
type CreateTaskRequest struct {
	ProjectID   string
	Title       string
	Description string
	AssigneeID  *string
}

// Validate checks that the request is well-formed.
func (r *CreateTaskRequest) Validate() error {
	if r.ProjectID == "" {
		return ErrValidation("project_id is required")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return ErrValidation("title is required")
	}
	if r.AssigneeID != nil && *r.AssigneeID == "" {
		r.AssigneeID = nil
	}
	return nil
}
