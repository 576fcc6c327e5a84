package project

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	internaldb "taskflow/internal/db"
	"taskflow/internal/db/repository"
	"taskflow/internal/domain"
	"taskflow/internal/testutil"
)

type fixture struct {
	db          *sql.DB
	notifier    *testutil.RecordingNotifier
	projects    *ProjectService
	members     *MembershipService
	invitations *InvitationService
	memberRepo  *repository.MembershipRepo
	invRepo     *repository.InvitationRepo

	admin   *domain.User
	manager *domain.User
	plain   *domain.User
	project *domain.Project
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, _ := internaldb.OpenTestSQLite(t)
	logger := testutil.DiscardLogger()
	rec := &testutil.RecordingNotifier{}

	projectRepo := repository.NewProjectRepo(db)
	userRepo := repository.NewUserRepo(db)
	memberRepo := repository.NewMembershipRepo(db)
	invRepo := repository.NewInvitationRepo(db)

	f := &fixture{
		db:          db,
		notifier:    rec,
		projects:    NewProjectService(projectRepo, memberRepo, rec, logger),
		members:     NewMembershipService(projectRepo, userRepo, memberRepo, rec, logger),
		invitations: NewInvitationService(projectRepo, userRepo, memberRepo, invRepo, rec, logger),
		memberRepo:  memberRepo,
		invRepo:     invRepo,
		admin:       testutil.CreateUser(t, db, "admin", domain.RoleAdmin),
		manager:     testutil.CreateUser(t, db, "manager", domain.RoleProjectManager),
		plain:       testutil.CreateUser(t, db, "plain", domain.RoleUser),
	}
	f.project = testutil.CreateProject(t, db, f.manager, "Apollo")
	return f
}

func (f *fixture) ctx(t *testing.T, u *domain.User) context.Context {
	t.Helper()
	return testutil.ActorCtx(t, f.db, u)
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	return testutil.CreateUser(t, f.db, name, domain.RoleUser)
}

func (f *fixture) invite(t *testing.T, invitee *domain.User) *domain.Invitation {
	t.Helper()
	inv, err := f.invitations.Create(f.ctx(t, f.manager), domain.CreateInvitationRequest{
		ProjectID: f.project.ID,
		InviteeID: invitee.ID,
		Role:      domain.ProjectRoleDeveloper,
	})
	if err != nil {
		t.Fatalf("invite %s: %v", invitee.Name, err)
	}
	return inv
}
