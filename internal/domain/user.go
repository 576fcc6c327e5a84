package domain

import (
	"net/mail"
	"strings"
	"time"
)

// GlobalRole is a user's application-wide role.
type GlobalRole string

// Global roles. PROJECT_MANAGER and ADMIN are "elevated".
const (
	RoleUser           GlobalRole = "USER"
	RoleProjectManager GlobalRole = "PROJECT_MANAGER"
	RoleAdmin          GlobalRole = "ADMIN"
)

// IsElevated reports whether the role carries manager capability.
func (r GlobalRole) IsElevated() bool {
	return r == RoleProjectManager || r == RoleAdmin
}

// ParseGlobalRole validates s against the closed set of global roles.
func ParseGlobalRole(s string) (GlobalRole, error) {
	switch r := GlobalRole(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleUser, RoleProjectManager, RoleAdmin:
		return r, nil
	default:
		return "", ErrValidation("unknown global role %q", s)
	}
}

// Permission is a fine-grained capability that can be granted to a user
// in place of an elevated global role.
type Permission string

// Grantable permissions.
const (
	PermCreateProject  Permission = "CREATE_PROJECT"
	PermInviteMember   Permission = "INVITE_MEMBER"
	PermManageMembers  Permission = "MANAGE_MEMBERS"
	PermReassignTask   Permission = "REASSIGN_TASK"
	PermReviewReassign Permission = "REVIEW_REASSIGN"
)

// AllPermissions lists every grantable permission.
var AllPermissions = []Permission{
	PermCreateProject,
	PermInviteMember,
	PermManageMembers,
	PermReassignTask,
	PermReviewReassign,
}

// ParsePermission validates s against AllPermissions.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllPermissions {
		if p == known {
			return p, nil
		}
	}
	return "", ErrValidation("unknown permission %q", s)
}

// User is a registered account.
type User struct {
	ID          string
	Name        string
	Email       string
	Role        GlobalRole
	Active      bool
	Permissions []Permission
	CreatedAt   time.Time
}

// CreateUserRequest holds parameters for registering a user.
type CreateUserRequest struct {
	Name  string
	Email string
	Role  GlobalRole // defaults to USER
}

// Validate checks that the request is well-formed.
func (r *CreateUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrValidation("name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrValidation("invalid email %q", r.Email)
	}
	if r.Role == "" {
		r.Role = RoleUser
	}
	role, err := ParseGlobalRole(string(r.Role))
	if err != nil {
		return err
	}
	r.Role = role
	return nil
}
