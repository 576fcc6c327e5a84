package api

import (
	"time"

	"taskflow/internal/domain"
)

// User is the JSON form of domain.User.
type User struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Role        domain.GlobalRole   `json:"role"`
	Active      bool                `json:"active"`
	Permissions []domain.Permission `json:"permissions"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Project is the JSON form of domain.Project.
type Project struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	OwnerID     string               `json:"owner_id"`
	Status      domain.ProjectStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Member is the JSON form of domain.ProjectMembership.
type Member struct {
	ProjectID string             `json:"project_id"`
	UserID    string             `json:"user_id"`
	Role      domain.ProjectRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
}

// Invitation is the JSON form of domain.Invitation.
type Invitation struct {
	ID          string                  `json:"id"`
	ProjectID   string                  `json:"project_id"`
	InviterID   string                  `json:"inviter_id"`
	InviteeID   string                  `json:"invitee_id"`
	Role        domain.ProjectRole      `json:"role"`
	Status      domain.InvitationStatus `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	RespondedAt *time.Time              `json:"responded_at,omitempty"`
}

// Task is the JSON form of domain.Task.
type Task struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      domain.TaskStatus `json:"status"`
	AssigneeID  *string           `json:"assignee_id"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ReassignRequest is the JSON form of domain.ReassignRequest.
type ReassignRequest struct {
	ID            string                `json:"id"`
	TaskID        string                `json:"task_id"`
	RequesterID   string                `json:"requester_id"`
	NewAssigneeID string                `json:"new_assignee_id"`
	Comment       *string               `json:"comment,omitempty"`
	Status        domain.ReassignStatus `json:"status"`
	ReviewerID    *string               `json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time            `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ReassignResult reports which reassignment path ran: Task is set for a
// direct reassignment, Request for a pending request.
type ReassignResult struct {
	Direct  bool             `json:"direct"`
	Task    *Task            `json:"task,omitempty"`
	Request *ReassignRequest `json:"request,omitempty"`
}

// Notification is the JSON form of domain.Notification.
type Notification struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Severity  domain.Severity `json:"severity"`
	LinkPath  *string         `json:"link_path,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// === Mapping helpers ===

func userToAPI(u domain.User) User {
	perms := u.Permissions
	if perms == nil {
		perms = []domain.Permission{}
	}
	return User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Active: u.Active, Permissions: perms, CreatedAt: u.CreatedAt}
}

func projectToAPI(p domain.Project) Project {
	return Project{
		ID: p.ID, Name: p.Name, Description: p.Description, OwnerID: p.OwnerID,
		Status: p.Status, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func memberToAPI(m domain.ProjectMembership) Member {
	return Member{ProjectID: m.ProjectID, UserID: m.UserID, Role: m.Role, CreatedAt: m.CreatedAt}
}

func invitationToAPI(i domain.Invitation) Invitation {
	return Invitation{
		ID: i.ID, ProjectID: i.ProjectID, InviterID: i.InviterID, InviteeID: i.InviteeID,
		Role: i.Role, Status: i.Status, CreatedAt: i.CreatedAt, RespondedAt: i.RespondedAt,
	}
}

func taskToAPI(t domain.Task) Task {
	return Task{
		ID: t.ID, ProjectID: t.ProjectID, Title: t.Title, Description: t.Description,
		Status: t.Status, AssigneeID: t.AssigneeID, CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func reassignToAPI(r domain.ReassignRequest) ReassignRequest {
	return ReassignRequest{
		ID: r.ID, TaskID: r.TaskID, RequesterID: r.RequesterID, NewAssigneeID: r.NewAssigneeID,
		Comment: r.Comment, Status: r.Status, ReviewerID: r.ReviewerID, ReviewedAt: r.ReviewedAt,
		CreatedAt: r.CreatedAt,
	}
}

func notificationToAPI(n domain.Notification) Notification {
	return Notification{
		ID: n.ID, Title: n.Title, Body: n.Body, Severity: n.Severity,
		LinkPath: n.LinkPath, Read: n.Read, CreatedAt: n.CreatedAt,
	}
}
