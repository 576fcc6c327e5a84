package repository

import (
	"context"
	"database/sql"

	"taskflow/internal/domain"
)

var _ domain.PermissionRepository = (*PermissionRepo)(nil)

// PermissionRepo implements domain.PermissionRepository using SQLite.
type PermissionRepo struct {
	db *sql.DB
}

// NewPermissionRepo creates a new PermissionRepo.
func NewPermissionRepo(db *sql.DB) *PermissionRepo {
	return &PermissionRepo{db: db}
}

// Grant records an explicit permission for a user.
func (r *PermissionRepo) Grant(ctx context.Context, userID string, p domain.Permission, grantedBy string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_permissions (user_id, permission, granted_by) VALUES (?, ?, ?)
	`, userID, string(p), grantedBy)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return domain.ErrConflict("user %s already holds %s", userID, p)
	}
	if isForeignKeyViolation(err) {
		return domain.ErrNotFound("user %s not found", userID)
	}
	return mapDBError(err)
}

// Revoke removes a permission. Removing an absent permission is a no-op.
func (r *PermissionRepo) Revoke(ctx context.Context, userID string, p domain.Permission) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_permissions WHERE user_id = ? AND permission = ?`, userID, string(p))
	return mapDBError(err)
}

// ListForUser returns the permissions granted to a user, sorted by name.
func (r *PermissionRepo) ListForUser(ctx context.Context, userID string) ([]domain.Permission, error) {
	return listPermissions(ctx, r.db, userID)
}

func listPermissions(ctx context.Context, db *sql.DB, userID string) ([]domain.Permission, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT permission FROM user_permissions WHERE user_id = ? ORDER BY permission`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		perms = append(perms, domain.Permission(p))
	}
	return perms, rows.Err()
}
