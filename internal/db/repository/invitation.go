package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow/internal/domain"
)

var _ domain.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo implements domain.InvitationRepository using SQLite.
type InvitationRepo struct {
	db *sql.DB
}

// NewInvitationRepo creates a new InvitationRepo.
func NewInvitationRepo(db *sql.DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

const invitationColumns = `id, project_id, inviter_id, invitee_id, role, status, created_at, responded_at`

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	var (
		inv         domain.Invitation
		role        string
		status      string
		respondedAt sql.NullTime
	)
	if err := row.Scan(&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeID,
		&role, &status, &inv.CreatedAt, &respondedAt); err != nil {
		return nil, err
	}
	inv.Role = domain.ProjectRole(role)
	inv.Status = domain.InvitationStatus(status)
	inv.RespondedAt = timePtr(respondedAt)
	return &inv, nil
}

// Create inserts a PENDING invitation.
func (r *InvitationRepo) Create(ctx context.Context, inv *domain.Invitation) (*domain.Invitation, error) {
	if inv.ID == "" {
		inv.ID = domain.NewID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, project_id, inviter_id, invitee_id, role, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.ProjectID, inv.InviterID, inv.InviteeID, string(inv.Role), string(domain.InvitationPending))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrConflict("user %s already has a pending invitation to project %s", inv.InviteeID, inv.ProjectID)
		}
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, inv.ID)
}

// GetByID returns an invitation by ID.
func (r *InvitationRepo) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("invitation %s not found", id)
	}
	return inv, err
}

// Accept resolves a PENDING invitation and creates the membership it
// proposed. Both writes commit together or not at all.
func (r *InvitationRepo) Accept(ctx context.Context, id string, at time.Time) (*domain.Invitation, *domain.ProjectMembership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin accept tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := transitionInvitation(ctx, tx, id, domain.InvitationAccepted, at); err != nil {
		return nil, nil, err
	}

	var projectID, inviteeID, role string
	if err := tx.QueryRowContext(ctx,
		`SELECT project_id, invitee_id, role FROM invitations WHERE id = ?`, id,
	).Scan(&projectID, &inviteeID, &role); err != nil {
		return nil, nil, mapDBError(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO project_members (id, project_id, user_id, role) VALUES (?, ?, ?, ?)
	`, domain.NewID(), projectID, inviteeID, role); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, domain.ErrConflict("user %s is already a member of project %s", inviteeID, projectID)
		}
		return nil, nil, fmt.Errorf("insert membership: %w", mapDBError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit accept tx: %w", err)
	}

	inv, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	m, err := NewMembershipRepo(r.db).Get(ctx, projectID, inviteeID)
	if err != nil {
		return nil, nil, err
	}
	return inv, m, nil
}

// Decline resolves a PENDING invitation without creating a membership.
func (r *InvitationRepo) Decline(ctx context.Context, id string, at time.Time) (*domain.Invitation, error) {
	if err := transitionInvitation(ctx, r.db, id, domain.InvitationDeclined, at); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// transitionInvitation is the compare-and-set on status: only a row that
// is still PENDING is updated, so the first responder wins.
func transitionInvitation(ctx context.Context, ex execer, id string, to domain.InvitationStatus, at time.Time) error {
	res, err := ex.ExecContext(ctx, `
		UPDATE invitations SET status = ?, responded_at = ?
		WHERE id = ? AND status = ?
	`, string(to), formatTime(at), id, string(domain.InvitationPending))
	if err != nil {
		return mapDBError(err)
	}
	return requireAffected(ctx, ex, res, "invitations", id, "invitation")
}

// List returns invitations matching the filter, newest first.
func (r *InvitationRepo) List(ctx context.Context, filter domain.InvitationFilter) ([]domain.Invitation, int64, error) {
	var (
		where []string
		args  []any
	)
	if filter.InviteeID != nil {
		where = append(where, "invitee_id = ?")
		args = append(args, *filter.InviteeID)
	}
	if filter.ProjectID != nil {
		where = append(where, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*filter.Status))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations`+clause+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, filter.Page.Limit(), filter.Page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}
