package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to ProjectStatus
		want     bool
	}{
		{ProjectStatusPendingReview, ProjectStatusActive, true},
		{ProjectStatusPendingReview, ProjectStatusRejected, true},
		{ProjectStatusPendingReview, ProjectStatusArchived, false},
		{ProjectStatusActive, ProjectStatusArchived, true},
		{ProjectStatusActive, ProjectStatusRejected, false},
		{ProjectStatusArchived, ProjectStatusActive, false},
		{ProjectStatusRejected, ProjectStatusActive, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}

	assert.True(t, ProjectStatusActive.AcceptsWork())
	assert.True(t, ProjectStatusPendingReview.AcceptsWork())
	assert.False(t, ProjectStatusArchived.AcceptsWork())
	assert.False(t, ProjectStatusRejected.AcceptsWork())
}

func TestInvitationStatus_Transitions(t *testing.T) {
	assert.True(t, InvitationPending.CanTransition(InvitationAccepted))
	assert.True(t, InvitationPending.CanTransition(InvitationDeclined))
	assert.False(t, InvitationPending.CanTransition(InvitationPending))
	assert.False(t, InvitationAccepted.CanTransition(InvitationDeclined))
	assert.False(t, InvitationDeclined.CanTransition(InvitationAccepted))
	assert.False(t, InvitationPending.IsTerminal())
}

func TestReassignStatus_Transitions(t *testing.T) {
	assert.True(t, ReassignPending.CanTransition(ReassignApproved))
	assert.True(t, ReassignPending.CanTransition(ReassignRejected))
	assert.False(t, ReassignApproved.CanTransition(ReassignRejected))
	assert.False(t, ReassignRejected.CanTransition(ReassignApproved))
	assert.False(t, ReassignPending.IsTerminal())
}

func TestParseInvitationDecision(t *testing.T) {
	d, err := ParseInvitationDecision(" Accept ")
	require.NoError(t, err)
	assert.Equal(t, InvitationAccepted, d.TargetStatus())

	d, err = ParseInvitationDecision("DECLINE")
	require.NoError(t, err)
	assert.Equal(t, InvitationDeclined, d.TargetStatus())

	_, err = ParseInvitationDecision("maybe")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestParseReviewDecision(t *testing.T) {
	st, err := ParseReviewDecision("approved")
	require.NoError(t, err)
	assert.Equal(t, ReassignApproved, st)

	_, err = ParseReviewDecision("PENDING")
	require.Error(t, err, "pending is not a decision")
}

func TestProjectReviewDecision_TargetStatus(t *testing.T) {
	st, err := ProjectApprove.TargetStatus()
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusActive, st)

	st, err = ProjectReject.TargetStatus()
	require.NoError(t, err)
	assert.Equal(t, ProjectStatusRejected, st)

	_, err = ProjectReviewDecision("ARCHIVE").TargetStatus()
	require.Error(t, err)
}

func TestParseRolesAndPermissions(t *testing.T) {
	r, err := ParseGlobalRole("project_manager")
	require.NoError(t, err)
	assert.True(t, r.IsElevated())
	assert.False(t, RoleUser.IsElevated())

	pr, err := ParseProjectRole(" tester ")
	require.NoError(t, err)
	assert.Equal(t, ProjectRoleTester, pr)

	_, err = ParseProjectRole("OWNER")
	require.Error(t, err)

	for _, p := range AllPermissions {
		got, err := ParsePermission(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err = ParsePermission("DELETE_EVERYTHING")
	require.Error(t, err)
}

func TestActor_Capabilities(t *testing.T) {
	a := ActorFromUser(&User{ID: "u1", Role: RoleUser, Active: true, Permissions: []Permission{PermInviteMember}})
	assert.True(t, a.HasPermission(PermInviteMember))
	assert.False(t, a.HasPermission(PermReassignTask))
	assert.False(t, a.IsElevated())
	assert.False(t, a.IsAdmin())

	admin := Actor{Role: RoleAdmin}
	assert.True(t, admin.IsElevated())
	assert.True(t, admin.IsAdmin())
}

func TestRequestValidation(t *testing.T) {
	t.Run("user", func(t *testing.T) {
		req := CreateUserRequest{Name: "  Ada ", Email: "ada@example.com", Role: "admin"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Ada", req.Name)
		assert.Equal(t, RoleAdmin, req.Role)

		req = CreateUserRequest{Name: "Ada", Email: "ada@example.com"}
		require.NoError(t, req.Validate())
		assert.Equal(t, RoleUser, req.Role)

		require.Error(t, (&CreateUserRequest{Name: "", Email: "ada@example.com"}).Validate())
		require.Error(t, (&CreateUserRequest{Name: "Ada", Email: "nope"}).Validate())
	})

	t.Run("invitation", func(t *testing.T) {
		req := CreateInvitationRequest{ProjectID: "p", InviteeID: "u", Role: "viewer"}
		require.NoError(t, req.Validate())
		assert.Equal(t, ProjectRoleViewer, req.Role)
		require.Error(t, (&CreateInvitationRequest{InviteeID: "u", Role: "VIEWER"}).Validate())
		require.Error(t, (&CreateInvitationRequest{ProjectID: "p", Role: "VIEWER"}).Validate())
		require.Error(t, (&CreateInvitationRequest{ProjectID: "p", InviteeID: "u"}).Validate())
	})

	t.Run("task", func(t *testing.T) {
		empty := ""
		req := CreateTaskRequest{ProjectID: "p", Title: " Ship ", AssigneeID: &empty}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Ship", req.Title)
		assert.Nil(t, req.AssigneeID)
		require.Error(t, (&CreateTaskRequest{ProjectID: "p", Title: "  "}).Validate())
	})

	t.Run("reassign", func(t *testing.T) {
		req := CreateReassignRequest{TaskID: "t", NewAssigneeID: "u", Comment: "  please  "}
		require.NoError(t, req.Validate())
		assert.Equal(t, "please", req.Comment)
		require.Error(t, (&CreateReassignRequest{TaskID: "t"}).Validate())
		require.Error(t, (&CreateReassignRequest{NewAssigneeID: "u"}).Validate())
	})
}

func TestReassignOutcome_Direct(t *testing.T) {
	assert.True(t, ReassignOutcome{Task: &Task{}}.Direct())
	assert.False(t, ReassignOutcome{Request: &ReassignRequest{}}.Direct())
}

func TestPageRequest(t *testing.T) {
	p := PageRequest{}
	assert.Equal(t, 0, p.Offset())
	assert.Equal(t, DefaultPageSize, p.Limit())
	assert.Empty(t, p.NextPageToken(int64(DefaultPageSize)))

	p = PageRequest{MaxResults: 2}
	tok := p.NextPageToken(5)
	require.NotEmpty(t, tok)

	next := PageRequest{MaxResults: 2, PageToken: tok}
	assert.Equal(t, 2, next.Offset())
	third := PageRequest{MaxResults: 2, PageToken: next.NextPageToken(5)}
	assert.Equal(t, 4, third.Offset())
	assert.Empty(t, third.NextPageToken(5))

	assert.Equal(t, MaxPageSize, PageRequest{MaxResults: MaxPageSize + 1}.Limit())
	assert.Equal(t, 0, PageRequest{PageToken: "!!garbage"}.Offset())
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
