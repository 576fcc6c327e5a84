package repository

import (
	"context"
	"database/sql"
	"errors"

	"taskflow/internal/domain"
)

var _ domain.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo is the SQLite membership ledger.
type MembershipRepo struct {
	db *sql.DB
}

// NewMembershipRepo creates a new MembershipRepo.
func NewMembershipRepo(db *sql.DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

const membershipColumns = `id, project_id, user_id, role, created_at`

func scanMembership(row rowScanner) (*domain.ProjectMembership, error) {
	var (
		m    domain.ProjectMembership
		role string
	)
	if err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &role, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Role = domain.ProjectRole(role)
	return &m, nil
}

// Add inserts a membership, failing with a ConflictError if the user is
// already a member.
func (r *MembershipRepo) Add(ctx context.Context, m *domain.ProjectMembership) (*domain.ProjectMembership, error) {
	if m.ID == "" {
		m.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_members (id, project_id, user_id, role) VALUES (?, ?, ?, ?)
	`, m.ID, m.ProjectID, m.UserID, string(m.Role))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict("user %s is already a member of project %s", m.UserID, m.ProjectID)
		}
		return nil, mapDBError(err)
	}
	return r.Get(ctx, m.ProjectID, m.UserID)
}

// Ensure inserts the membership unless it already exists.
func (r *MembershipRepo) Ensure(ctx context.Context, projectID, userID string, role domain.ProjectRole) (*domain.ProjectMembership, error) {
	if err := ensureMembership(ctx, r.db, projectID, userID, role); err != nil {
		return nil, err
	}
	return r.Get(ctx, projectID, userID)
}

// Get returns the membership for a (project, user) pair.
func (r *MembershipRepo) Get(ctx context.Context, projectID, userID string) (*domain.ProjectMembership, error) {
	m, err := scanMembership(r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("user %s is not a member of project %s", userID, projectID)
	}
	return m, err
}

// List returns a page of a project's members.
func (r *MembershipRepo) List(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.ProjectMembership, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM project_members WHERE project_id = ?`, projectID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+membershipColumns+` FROM project_members
		WHERE project_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?
	`, projectID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []domain.ProjectMembership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *m)
	}
	return members, total, rows.Err()
}

// UpdateRole changes a member's project role.
func (r *MembershipRepo) UpdateRole(ctx context.Context, projectID, userID string, role domain.ProjectRole) (*domain.ProjectMembership, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE project_members SET role = ? WHERE project_id = ? AND user_id = ?`,
		string(role), projectID, userID)
	if err != nil {
		return nil, mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound("user %s is not a member of project %s", userID, projectID)
	}
	return r.Get(ctx, projectID, userID)
}

// Remove deletes a membership. The assignment check and the delete share
// one transaction so a concurrent assignment cannot slip in between.
func (r *MembershipRepo) Remove(ctx context.Context, projectID, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var assigned int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = ? AND assignee_id = ?`,
		projectID, userID).Scan(&assigned); err != nil {
		return err
	}
	if assigned > 0 {
		return domain.ErrConflict("user %s is still assigned %d task(s) in project %s", userID, assigned, projectID)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return mapDBError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound("user %s is not a member of project %s", userID, projectID)
	}
	return tx.Commit()
}
