package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/domain"
	"taskflow/internal/testutil"
)

func TestMembership_AddMember(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u")

	m, err := f.members.AddMember(f.ctx(t, f.manager), f.project.ID, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMemberRole, m.Role)
	assert.Len(t, f.notifier.SentTo(u.ID), 1)

	_, err = f.members.AddMember(f.ctx(t, f.manager), f.project.ID, u.ID, "TESTER")
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestMembership_AddMemberGuards(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u")

	_, err := f.members.AddMember(f.ctx(t, f.plain), f.project.ID, u.ID, "")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	testutil.Grant(t, f.db, f.plain, domain.PermManageMembers)
	_, err = f.members.AddMember(f.ctx(t, f.plain), f.project.ID, u.ID, "ARCHITECT")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = f.members.AddMember(f.ctx(t, f.plain), f.project.ID, "ghost", "")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.members.AddMember(f.ctx(t, f.plain), f.project.ID, u.ID, "viewer")
	require.NoError(t, err)
}

func TestMembership_ChangeRole(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u")
	ctx := f.ctx(t, f.manager)

	_, err := f.members.ChangeRole(ctx, f.project.ID, u.ID, "TESTER")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.members.AddMember(ctx, f.project.ID, u.ID, "")
	require.NoError(t, err)
	m, err := f.members.ChangeRole(ctx, f.project.ID, u.ID, "TESTER")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectRoleTester, m.Role)

	_, err = f.members.ChangeRole(ctx, f.project.ID, f.manager.ID, "VIEWER")
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestMembership_RemoveMember(t *testing.T) {
	f := setup(t)
	u := f.user(t, "u")
	ctx := f.ctx(t, f.manager)

	var conflict *domain.ConflictError
	require.ErrorAs(t, f.members.RemoveMember(ctx, f.project.ID, f.manager.ID), &conflict)

	testutil.CreateTask(t, f.db, f.project, f.manager, u)
	require.ErrorAs(t, f.members.RemoveMember(ctx, f.project.ID, u.ID), &conflict,
		"assignees stay members while they hold tasks")

	other := f.user(t, "other")
	_, err := f.members.AddMember(ctx, f.project.ID, other.ID, "")
	require.NoError(t, err)
	require.NoError(t, f.members.RemoveMember(ctx, f.project.ID, other.ID))

	member, err := f.members.IsMember(context.Background(), f.project.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestMembership_ListMembers(t *testing.T) {
	f := setup(t)

	_, _, err := f.members.ListMembers(f.ctx(t, f.plain), f.project.ID, domain.PageRequest{})
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	members, total, err := f.members.ListMembers(f.ctx(t, f.manager), f.project.ID, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, f.manager.ID, members[0].UserID)
}
