package task

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
	db         *sql.DB
	notifier   *testutil.RecordingNotifier
	tasks      *TaskService
	reassign   *ReassignService
	memberRepo *repository.MembershipRepo
	taskRepo   *repository.TaskRepo

	manager *domain.User
	member  *domain.User // ordinary project member
	u3      *domain.User // current assignee
	u4      *domain.User // outsider
	project *domain.Project
	task    *domain.Task
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, _ := internaldb.OpenTestSQLite(t)
	logger := testutil.DiscardLogger()
	rec := &testutil.RecordingNotifier{}

	projectRepo := repository.NewProjectRepo(db)
	userRepo := repository.NewUserRepo(db)
	memberRepo := repository.NewMembershipRepo(db)
	taskRepo := repository.NewTaskRepo(db)

	f := &fixture{
		db:         db,
		notifier:   rec,
		tasks:      NewTaskService(projectRepo, memberRepo, taskRepo, logger),
		reassign:   NewReassignService(projectRepo, userRepo, memberRepo, taskRepo, repository.NewReassignRepo(db), rec, logger),
		memberRepo: memberRepo,
		taskRepo:   taskRepo,
		manager:    testutil.CreateUser(t, db, "manager", domain.RoleProjectManager),
		member:     testutil.CreateUser(t, db, "member", domain.RoleUser),
		u3:         testutil.CreateUser(t, db, "u3", domain.RoleUser),
		u4:         testutil.CreateUser(t, db, "u4", domain.RoleUser),
	}
	f.project = testutil.CreateProject(t, db, f.manager, "Apollo")
	_, err := memberRepo.Add(context.Background(), &domain.ProjectMembership{
		ProjectID: f.project.ID, UserID: f.member.ID, Role: domain.ProjectRoleDeveloper,
	})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	f.task = testutil.CreateTask(t, db, f.project, f.manager, f.u3)
	return f
}

func (f *fixture) ctx(t *testing.T, u *domain.User) context.Context {
	t.Helper()
	return testutil.ActorCtx(t, f.db, u)
}

func (f *fixture) request(t *testing.T, requester, to *domain.User) *domain.ReassignRequest {
	t.Helper()
	r, err := f.reassign.RequestReassign(f.ctx(t, requester), domain.CreateReassignRequest{
		TaskID:        f.task.ID,
		NewAssigneeID: to.ID,
	})
	if err != nil {
		t.Fatalf("request reassign: %v", err)
	}
	return r
}

func (f *fixture) isMember(t *testing.T, u *domain.User) bool {
	t.Helper()
	ok, err := isMember(context.Background(), f.memberRepo, f.project.ID, u.ID)
	if err != nil {
		t.Fatalf("membership lookup: %v", err)
	}
	return ok
}
