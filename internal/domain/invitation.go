package domain

import (
	"strings"
	"time"
)

// InvitationStatus is the state of an invitation. PENDING is the only
// non-terminal state.
type InvitationStatus string

// Invitation statuses.
const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
)

// IsTerminal reports whether no further transition is allowed.
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationAccepted || s == InvitationDeclined
}

// CanTransition reports whether an invitation may move from s to next.
func (s InvitationStatus) CanTransition(next InvitationStatus) bool {
	return s == InvitationPending && next.IsTerminal()
}

// ParseInvitationStatus validates s against the invitation statuses.
func ParseInvitationStatus(s string) (InvitationStatus, error) {
	switch st := InvitationStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case InvitationPending, InvitationAccepted, InvitationDeclined:
		return st, nil
	default:
		return "", ErrValidation("unknown invitation status %q", s)
	}
}

// Invitation proposes a user for membership of a project. Creation fields
// are immutable; Status and RespondedAt change exactly once.
type Invitation struct {
	ID          string
	ProjectID   string
	InviterID   string
	InviteeID   string
	Role        ProjectRole
	Status      InvitationStatus
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// InvitationDecision is the invitee's answer.
type InvitationDecision string

// Invitation decisions.
const (
	DecisionAccept  InvitationDecision = "accept"
	DecisionDecline InvitationDecision = "decline"
)

// ParseInvitationDecision validates s.
func ParseInvitationDecision(s string) (InvitationDecision, error) {
	switch d := InvitationDecision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionAccept, DecisionDecline:
		return d, nil
	default:
		return "", ErrValidation("decision must be accept or decline, got %q", s)
	}
}

// TargetStatus maps the decision to the terminal status it produces.
func (d InvitationDecision) TargetStatus() InvitationStatus {
	if d == DecisionAccept {
		return InvitationAccepted
	}
	return InvitationDeclined
}

// CreateInvitationRequest holds parameters for inviting a user.
type CreateInvitationRequest struct {
	ProjectID string
	InviteeID string
	Role      ProjectRole
}

// Validate checks that the request is well-formed.
func (r *CreateInvitationRequest) Validate() error {
	if r.ProjectID == "" {
		return ErrValidation("project_id is required")
	}
	if r.InviteeID == "" {
		return ErrValidation("invitee_id is required")
	}
	role, err := ParseProjectRole(string(r.Role))
	if err != nil {
		return err
	}
	r.Role = role
	return nil
}
