package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskflow/internal/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo implements domain.UserRepository using SQLite.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, role, active, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u      domain.User
		role   string
		active int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.GlobalRole(role)
	u.Active = active != 0
	return &u, nil
}

// Create inserts a user.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.ID == "" {
		u.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, active) VALUES (?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, string(u.Role), boolToInt(u.Active))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict("user with email %q already exists", u.Email)
		}
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, u.ID)
}

// GetByID returns a user together with their granted permissions.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound("user %s not found", id)
		}
		return nil, err
	}
	perms, err := listPermissions(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	u.Permissions = perms
	return u, nil
}

// List returns a page of users ordered by creation. Permissions are not
// loaded.
func (r *UserRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT ? OFFSET ?`,
		page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// SetRole changes a user's global role.
func (r *UserRepo) SetRole(ctx context.Context, id string, role domain.GlobalRole) error {
	return r.updateOne(ctx, id, `UPDATE users SET role = ? WHERE id = ?`, string(role), id)
}

// SetActive enables or disables a user.
func (r *UserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateOne(ctx, id, `UPDATE users SET active = ? WHERE id = ?`, boolToInt(active), id)
}

func (r *UserRepo) updateOne(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound("user %s not found", id)
	}
	return nil
}
