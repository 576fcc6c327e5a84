package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/domain"
)

func TestMigrate(t *testing.T) {
	db := isolate(t)

	var res map[string]any
	mustRunJSON(t, &res, "--db", db, "migrate")
	assert.Equal(t, "ok", res["status"])
	assert.EqualValues(t, 1, res["version"])

	out, err := run(t, "--db", db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
}

func TestUserLifecycle(t *testing.T) {
	db := isolate(t)

	var admin userView
	mustRunJSON(t, &admin, "--db", db, "user", "create", "--name", "Ada", "--email", "ada@example.com", "--role", "admin")
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.Active)

	var bob userView
	mustRunJSON(t, &bob, "--db", db, "user", "create", "--name", "Bob", "--email", "bob@example.com")
	assert.Equal(t, domain.RoleUser, bob.Role)

	var pm userView
	mustRunJSON(t, &pm, "--db", db, "user", "set-role", bob.ID, "PROJECT_MANAGER")
	assert.Equal(t, domain.RoleProjectManager, pm.Role)

	var off userView
	mustRunJSON(t, &off, "--db", db, "user", "deactivate", bob.ID)
	assert.False(t, off.Active)

	var users []userView
	mustRunJSON(t, &users, "--db", db, "user", "list")
	assert.Len(t, users, 2)

	out, err := run(t, "--db", db, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "EMAIL")
	assert.Contains(t, out, "bob@example.com")
}

func TestUserCreate_Invalid(t *testing.T) {
	db := isolate(t)

	_, err := run(t, "--db", db, "user", "create", "--name", "Eve", "--email", "not-an-email")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = run(t, "--db", db, "user", "create", "--name", "Eve")
	require.Error(t, err, "email flag is required")
}

func TestPermissionGrantRevoke(t *testing.T) {
	db := isolate(t)

	var u userView
	mustRunJSON(t, &u, "--db", db, "user", "create", "--name", "Cy", "--email", "cy@example.com")

	_, err := run(t, "--db", db, "permission", "grant", u.ID, "REASSIGN_TASK")
	require.NoError(t, err)

	_, err = run(t, "--db", db, "permission", "grant", u.ID, "REASSIGN_TASK")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict, "granting twice is a conflict")

	var listed struct {
		Permissions []domain.Permission `json:"permissions"`
	}
	mustRunJSON(t, &listed, "--db", db, "perm", "list", u.ID)
	assert.Equal(t, []domain.Permission{domain.PermReassignTask}, listed.Permissions)

	_, err = run(t, "--db", db, "permission", "revoke", u.ID, "REASSIGN_TASK")
	require.NoError(t, err)
	_, err = run(t, "--db", db, "permission", "revoke", u.ID, "REASSIGN_TASK")
	require.NoError(t, err, "revoking an absent permission is a no-op")

	_, err = run(t, "--db", db, "permission", "grant", u.ID, "FLY")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestActorIsEnforced(t *testing.T) {
	db := isolate(t)

	var u userView
	mustRunJSON(t, &u, "--db", db, "user", "create", "--name", "Dee", "--email", "dee@example.com")

	_, err := run(t, "--db", db, "--actor", u.ID, "permission", "grant", u.ID, "CREATE_PROJECT")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	_, err = run(t, "--db", db, "--actor", "nobody", "user", "list")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestConfigProfileDrivesDefaults(t *testing.T) {
	db := isolate(t)

	_, err := run(t, "config", "set-db", db)
	require.NoError(t, err)
	_, err = run(t, "config", "set-db", "/nonexistent/dir/x.sqlite", "--name", "broken")
	require.NoError(t, err)

	var u userView
	mustRunJSON(t, &u, "user", "create", "--name", "Flo", "--email", "flo@example.com")

	_, err = run(t, "config", "set-actor", u.ID)
	require.NoError(t, err)
	_, err = run(t, "permission", "grant", u.ID, "CREATE_PROJECT")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied, "profile actor is a plain user")

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, db, cfg.Profiles["default"].DBPath)
	assert.Equal(t, u.ID, cfg.Profiles["default"].Actor)

	_, err = run(t, "config", "use-profile", "missing")
	require.Error(t, err)
	_, err = run(t, "config", "use-profile", "broken")
	require.NoError(t, err)
	_, err = run(t, "user", "list")
	require.Error(t, err, "broken profile points at an unusable path")

	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "current-profile: broken")
}

func TestOutputFormatValidation(t *testing.T) {
	isolate(t)
	_, err := run(t, "-o", "xml", "version")
	require.ErrorContains(t, err, "unsupported output format")

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taskflow-admin version dev")
}
