// Package repository implements the domain repository interfaces on SQLite.
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

// sqliteTimeFormat matches the text layout of CURRENT_TIMESTAMP so that
// values written from Go compare correctly against column defaults.
const sqliteTimeFormat = "2006-01-02 15:04:05"

type rowScanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeFormat)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Message: "resource not found"}
	}
	if isUniqueViolation(err) {
		return &domain.ConflictError{Message: "resource already exists"}
	}
	if isForeignKeyViolation(err) {
		return &domain.NotFoundError{Message: "referenced resource not found"}
	}
	return err
}

// ensureMembership inserts a membership unless one exists for the pair.
// Running it on a transaction makes the back-fill part of the caller's
// atomic unit.
func ensureMembership(ctx context.Context, ex execer, projectID, userID string, role domain.ProjectRole) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO project_members (id, project_id, user_id, role)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, domain.NewID(), projectID, userID, string(role))
	if err != nil {
		return fmt.Errorf("ensure membership: %w", mapDBError(err))
	}
	return nil
}

// requireAffected turns a zero-row compare-and-set into a NotFound or
// Conflict depending on whether the row exists at all.
func requireAffected(ctx context.Context, ex execer, res sql.Result, table, id string, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var status string
	err = ex.QueryRowContext(ctx, `SELECT status FROM `+table+` WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound("%s %s not found", entity, id)
	}
	if err != nil {
		return err
	}
	return domain.ErrConflict("%s %s is already %s", entity, id, status)
}
