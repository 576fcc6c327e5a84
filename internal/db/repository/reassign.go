package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskflow/internal/domain"
)

var _ domain.ReassignRepository = (*ReassignRepo)(nil)

// ReassignRepo implements domain.ReassignRepository using SQLite.
type ReassignRepo struct {
	db *sql.DB
}

// NewReassignRepo creates a new ReassignRepo.
func NewReassignRepo(db *sql.DB) *ReassignRepo {
	return &ReassignRepo{db: db}
}

const reassignColumns = `r.id, r.task_id, r.requester_id, r.new_assignee_id, r.comment, r.status, r.reviewer_id, r.reviewed_at, r.created_at`

func scanReassign(row rowScanner) (*domain.ReassignRequest, error) {
	var (
		req        domain.ReassignRequest
		comment    sql.NullString
		status     string
		reviewerID sql.NullString
		reviewedAt sql.NullTime
	)
	if err := row.Scan(&req.ID, &req.TaskID, &req.RequesterID, &req.NewAssigneeID,
		&comment, &status, &reviewerID, &reviewedAt, &req.CreatedAt); err != nil {
		return nil, err
	}
	req.Comment = stringPtr(comment)
	req.Status = domain.ReassignStatus(status)
	req.ReviewerID = stringPtr(reviewerID)
	req.ReviewedAt = timePtr(reviewedAt)
	return &req, nil
}

// Create inserts a PENDING reassignment request.
func (r *ReassignRepo) Create(ctx context.Context, req *domain.ReassignRequest) (*domain.ReassignRequest, error) {
	if req.ID == "" {
		req.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reassign_requests (id, task_id, requester_id, new_assignee_id, comment, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.ID, req.TaskID, req.RequesterID, req.NewAssigneeID, nullString(req.Comment), string(domain.ReassignPending))
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, req.ID)
}

// GetByID returns a reassignment request by ID.
func (r *ReassignRepo) GetByID(ctx context.Context, id string) (*domain.ReassignRequest, error) {
	req, err := scanReassign(r.db.QueryRowContext(ctx,
		`SELECT `+reassignColumns+` FROM reassign_requests r WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("reassign request %s not found", id)
	}
	return req, err
}

// Approve resolves a PENDING request and applies it to the task in one
// transaction: status, reviewer, task assignee and membership back-fill.
func (r *ReassignRepo) Approve(ctx context.Context, id, reviewerID string, at time.Time) (*domain.ReassignRequest, *domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := resolveReassign(ctx, tx, id, reviewerID, domain.ReassignApproved, at); err != nil {
		return nil, nil, err
	}

	var taskID, assigneeID string
	if err := tx.QueryRowContext(ctx,
		`SELECT task_id, new_assignee_id FROM reassign_requests WHERE id = ?`, id,
	).Scan(&taskID, &assigneeID); err != nil {
		return nil, nil, mapDBError(err)
	}
	if err := reassignTask(ctx, tx, taskID, assigneeID); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit approve tx: %w", err)
	}

	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	task, err := NewTaskRepo(r.db).GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return req, task, nil
}

// Reject resolves a PENDING request without touching the task.
func (r *ReassignRepo) Reject(ctx context.Context, id, reviewerID string, at time.Time) (*domain.ReassignRequest, error) {
	if err := resolveReassign(ctx, r.db, id, reviewerID, domain.ReassignRejected, at); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func resolveReassign(ctx context.Context, ex execer, id, reviewerID string, to domain.ReassignStatus, at time.Time) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE reassign_requests SET status = ?, reviewer_id = ?, reviewed_at = ?
		WHERE id = ? AND status = ?
	`, string(to), reviewerID, formatTime(at), id, string(domain.ReassignPending))
	if err != nil {
		return mapDBError(err)
	}
	return requireAffected(ctx, ex, res, "reassign_requests", id, "reassign request")
}

// ListPending returns PENDING requests for tasks in a project, oldest first.
func (r *ReassignRepo) ListPending(ctx context.Context, projectID string, page domain.PageRequest) ([]domain.ReassignRequest, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reassign_requests r JOIN tasks t ON t.id = r.task_id
		WHERE t.project_id = ? AND r.status = ?
	`, projectID, string(domain.ReassignPending)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reassignColumns+` FROM reassign_requests r JOIN tasks t ON t.id = r.task_id
		WHERE t.project_id = ? AND r.status = ?
		ORDER BY r.created_at, r.id LIMIT ? OFFSET ?
	`, projectID, string(domain.ReassignPending), page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.ReassignRequest
	for rows.Next() {
		req, err := scanReassign(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *req)
	}
	return out, total, rows.Err()
}
