package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskflow/internal/domain"
)

var _ domain.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implements domain.TaskRepository using SQLite.
type TaskRepo struct {
	db *sql.DB
}

// NewTaskRepo creates a new TaskRepo.
func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = `id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at`

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		assignee sql.NullString
	)
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status,
		&assignee, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.AssigneeID = stringPtr(assignee)
	return &t, nil
}

// Create inserts a task. When the task has an assignee, their membership
// is back-filled in the same transaction.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if t.ID == "" {
		t.ID = domain.NewID()
	}
	if t.Status == "" {
		t.Status = domain.TaskTodo
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create-task tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if t.AssigneeID != nil {
		if err := ensureMembership(ctx, tx, t.ProjectID, *t.AssigneeID, domain.DefaultMemberRole); err != nil {
			return nil, err
		}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, assignee_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), nullString(t.AssigneeID), t.CreatedBy); err != nil {
		return nil, fmt.Errorf("insert task: %w", mapDBError(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create-task tx: %w", err)
	}
	return r.GetByID(ctx, t.ID)
}

// GetByID returns a task by ID.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("task %s not found", id)
	}
	return t, err
}

// Reassign sets the task's assignee and back-fills the assignee's
// membership in the task's project.
func (r *TaskRepo) Reassign(ctx context.Context, taskID, assigneeID string) (*domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reassign tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := reassignTask(ctx, tx, taskID, assigneeID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reassign tx: %w", err)
	}
	return r.GetByID(ctx, taskID)
}

// reassignTask runs inside the caller's transaction so the assignee
// change and the membership back-fill are never observed apart.
func reassignTask(ctx context.Context, tx *sql.Tx, taskID, assigneeID string) error {
	var projectID string
	err := tx.QueryRowContext(ctx, `SELECT project_id FROM tasks WHERE id = ?`, taskID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("task %s not found", taskID)
	}
	if err != nil {
		return err
	}

	if err := ensureMembership(ctx, tx, projectID, assigneeID, domain.DefaultMemberRole); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE tasks SET assignee_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, assigneeID, taskID); err != nil {
		return fmt.Errorf("update assignee: %w", mapDBError(err))
	}
	return nil
}
