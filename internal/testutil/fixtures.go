package testutil

import (
	"context"
	"database/sql"
	"testing"

	"taskflow/internal/db/repository"
	"taskflow/internal/domain"
)

// CreateUser stores an active user with the given global role.
func CreateUser(t *testing.T, db *sql.DB, name string, role domain.GlobalRole) *domain.User {
	t.Helper()
	u, err := repository.NewUserRepo(db).Create(context.Background(), &domain.User{
		Name:   name,
		Email:  name + "@example.com",
		Role:   role,
		Active: true,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// CreateProject stores an ACTIVE project owned by owner.
func CreateProject(t *testing.T, db *sql.DB, owner *domain.User, name string) *domain.Project {
	t.Helper()
	p, err := repository.NewProjectRepo(db).Create(context.Background(), &domain.Project{
		Name:    name,
		OwnerID: owner.ID,
		Status:  domain.ProjectStatusActive,
	})
	if err != nil {
		t.Fatalf("create project %s: %v", name, err)
	}
	return p
}

// CreateTask stores a task in p, optionally assigned.
func CreateTask(t *testing.T, db *sql.DB, p *domain.Project, creator, assignee *domain.User) *domain.Task {
	t.Helper()
	task := &domain.Task{ProjectID: p.ID, Title: "Draft release notes", CreatedBy: creator.ID}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	out, err := repository.NewTaskRepo(db).Create(context.Background(), task)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return out
}

// Grant gives u an explicit permission directly in the store.
func Grant(t *testing.T, db *sql.DB, u *domain.User, p domain.Permission) {
	t.Helper()
	if err := repository.NewPermissionRepo(db).Grant(context.Background(), u.ID, p, "fixture"); err != nil {
		t.Fatalf("grant %s: %v", p, err)
	}
}

// ActorCtx returns a context carrying u as the actor, reloaded from the
// store so granted permissions are included.
func ActorCtx(t *testing.T, db *sql.DB, u *domain.User) context.Context {
	t.Helper()
	fresh, err := repository.NewUserRepo(db).GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("reload user %s: %v", u.ID, err)
	}
	return domain.WithActor(context.Background(), domain.ActorFromUser(fresh))
}
