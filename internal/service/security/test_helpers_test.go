package security

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
	users       *UserService
	permissions *PermissionService
	admin       *domain.User
	manager     *domain.User
	member      *domain.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, _ := internaldb.OpenTestSQLite(t)
	userRepo := repository.NewUserRepo(db)
	return fixture{
		db:          db,
		users:       NewUserService(userRepo),
		permissions: NewPermissionService(repository.NewPermissionRepo(db), userRepo, testutil.DiscardLogger()),
		admin:       testutil.CreateUser(t, db, "admin", domain.RoleAdmin),
		manager:     testutil.CreateUser(t, db, "manager", domain.RoleProjectManager),
		member:      testutil.CreateUser(t, db, "member", domain.RoleUser),
	}
}

func (f fixture) ctx(t *testing.T, u *domain.User) context.Context {
	t.Helper()
	return testutil.ActorCtx(t, f.db, u)
}
