package domain

import (
	"context"
	"time"
)

// UserRepository provides storage for users and their granted permissions.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, page PageRequest) ([]User, int64, error)
	SetRole(ctx context.Context, id string, role GlobalRole) error
	SetActive(ctx context.Context, id string, active bool) error
}

// PermissionRepository stores explicit permission grants.
type PermissionRepository interface {
	// Grant returns a ConflictError when the permission is already held.
	Grant(ctx context.Context, userID string, p Permission, grantedBy string) error
	// Revoke succeeds when the permission is absent.
	Revoke(ctx context.Context, userID string, p Permission) error
	ListForUser(ctx context.Context, userID string) ([]Permission, error)
}

// ProjectRepository stores projects.
type ProjectRepository interface {
	// Create inserts the project and the owner's PROJECT_MANAGER membership
	// in one transaction.
	Create(ctx context.Context, p *Project) (*Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	// TransitionStatus moves the project from one status to another only if
	// it is currently in from; otherwise it returns a ConflictError.
	TransitionStatus(ctx context.Context, id string, from, to ProjectStatus) (*Project, error)
}

// MembershipRepository is the membership ledger.
type MembershipRepository interface {
	// Add returns a ConflictError when the membership already exists.
	Add(ctx context.Context, m *ProjectMembership) (*ProjectMembership, error)
	// Ensure inserts the membership unless one already exists, in which
	// case the existing membership is returned unchanged.
	Ensure(ctx context.Context, projectID, userID string, role ProjectRole) (*ProjectMembership, error)
	Get(ctx context.Context, projectID, userID string) (*ProjectMembership, error)
	List(ctx context.Context, projectID string, page PageRequest) ([]ProjectMembership, int64, error)
	UpdateRole(ctx context.Context, projectID, userID string, role ProjectRole) (*ProjectMembership, error)
	// Remove deletes the membership. It fails with a ConflictError while
	// the user is still assigned tasks in the project.
	Remove(ctx context.Context, projectID, userID string) error
}

// InvitationFilter narrows invitation listings.
type InvitationFilter struct {
	InviteeID *string
	ProjectID *string
	Status    *InvitationStatus
	Page      PageRequest
}

// InvitationRepository stores invitations and applies their transitions.
type InvitationRepository interface {
	// Create returns a ConflictError when a PENDING invitation already
	// exists for the same project and invitee.
	Create(ctx context.Context, inv *Invitation) (*Invitation, error)
	GetByID(ctx context.Context, id string) (*Invitation, error)
	// Accept atomically moves a PENDING invitation to ACCEPTED and inserts
	// the membership with the invitation's role.
	Accept(ctx context.Context, id string, at time.Time) (*Invitation, *ProjectMembership, error)
	// Decline moves a PENDING invitation to DECLINED.
	Decline(ctx context.Context, id string, at time.Time) (*Invitation, error)
	List(ctx context.Context, filter InvitationFilter) ([]Invitation, int64, error)
}

// TaskRepository stores tasks. Every write that sets an assignee also
// ensures the assignee's membership in the task's project.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	// Reassign sets the assignee and back-fills a DEVELOPER membership in
	// one transaction.
	Reassign(ctx context.Context, taskID, assigneeID string) (*Task, error)
}

// ReassignRepository stores reassignment requests and applies reviews.
type ReassignRepository interface {
	Create(ctx context.Context, r *ReassignRequest) (*ReassignRequest, error)
	GetByID(ctx context.Context, id string) (*ReassignRequest, error)
	// Approve atomically resolves a PENDING request, reassigns the task and
	// back-fills the new assignee's membership.
	Approve(ctx context.Context, id, reviewerID string, at time.Time) (*ReassignRequest, *Task, error)
	// Reject resolves a PENDING request without touching the task.
	Reject(ctx context.Context, id, reviewerID string, at time.Time) (*ReassignRequest, error)
	ListPending(ctx context.Context, projectID string, page PageRequest) ([]ReassignRequest, int64, error)
}

// NotificationRepository stores delivered notifications.
type NotificationRepository interface {
	Insert(ctx context.Context, n *Notification) (*Notification, error)
	ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool, page PageRequest) ([]Notification, int64, error)
	MarkRead(ctx context.Context, recipientID, id string) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	PurgeReadBefore(ctx context.Context, before time.Time) (int64, error)
}
