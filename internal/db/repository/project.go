package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskflow/internal/domain"
)

var _ domain.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo implements domain.ProjectRepository using SQLite.
type ProjectRepo struct {
	db *sql.DB
}

// NewProjectRepo creates a new ProjectRepo.
func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

const projectColumns = `id, name, description, owner_id, status, created_at, updated_at`

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p      domain.Project
		status string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.ProjectStatus(status)
	return &p, nil
}

// Create inserts the project and makes its owner a PROJECT_MANAGER member.
func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if p.ID == "" {
		p.ID = domain.NewID()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create-project tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, owner_id, status) VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.OwnerID, string(p.Status)); err != nil {
		return nil, fmt.Errorf("insert project: %w", mapDBError(err))
	}
	if err := ensureMembership(ctx, tx, p.ID, p.OwnerID, domain.ProjectRoleManager); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create-project tx: %w", err)
	}
	return r.GetByID(ctx, p.ID)
}

// GetByID returns a project by ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("project %s not found", id)
	}
	return p, err
}

// TransitionStatus moves a project from one status to another if it is
// still in the expected prior status.
func (r *ProjectRepo) TransitionStatus(ctx context.Context, id string, from, to domain.ProjectStatus) (*domain.Project, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, string(to), id, string(from))
	if err != nil {
		return nil, mapDBError(err)
	}
	if err := requireAffected(ctx, r.db, res, "projects", id, "project"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
