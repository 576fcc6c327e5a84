package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	internaldb "taskflow/internal/db"
	"taskflow/internal/domain"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return writeDB
}

func seedUser(t *testing.T, db *sql.DB, name string, role domain.GlobalRole) *domain.User {
	t.Helper()
	u, err := NewUserRepo(db).Create(context.Background(), &domain.User{
		Name:   name,
		Email:  name + "@example.com",
		Role:   role,
		Active: true,
	})
	require.NoError(t, err)
	return u
}

func seedProject(t *testing.T, db *sql.DB, owner *domain.User) *domain.Project {
	t.Helper()
	p, err := NewProjectRepo(db).Create(context.Background(), &domain.Project{
		Name:    "Apollo",
		OwnerID: owner.ID,
		Status:  domain.ProjectStatusActive,
	})
	require.NoError(t, err)
	return p
}

func seedTask(t *testing.T, db *sql.DB, p *domain.Project, creator *domain.User, assignee *domain.User) *domain.Task {
	t.Helper()
	task := &domain.Task{ProjectID: p.ID, Title: "Write launch checklist", CreatedBy: creator.ID}
	if assignee != nil {
		task.AssigneeID = &assignee.ID
	}
	out, err := NewTaskRepo(db).Create(context.Background(), task)
	require.NoError(t, err)
	return out
}
