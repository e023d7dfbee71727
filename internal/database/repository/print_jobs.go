package repository

import (
	"context"
	"database/sql"
)

// PrintJobRepo logs print submissions.
type PrintJobRepo struct {
	db *sql.DB
}

func NewPrintJobRepo(db *sql.DB) *PrintJobRepo { return &PrintJobRepo{db: db} }

func (r *PrintJobRepo) Insert(ctx context.Context, j PrintJob) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO print_jobs(id, session_id, printer, size, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, j.ID, j.SessionID, j.Printer, j.Size, j.Status)
	return err
}

func (r *PrintJobRepo) Finish(ctx context.Context, id, status string, message *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE print_jobs SET status = ?, message = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, status, message, id)
	return err
}

func (r *PrintJobRepo) ListBySession(ctx context.Context, sessionID string) ([]PrintJob, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, printer, size, status, message, created_at, updated_at
	FROM print_jobs WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PrintJob
	for rows.Next() {
		var j PrintJob
		if err := rows.Scan(&j.ID, &j.SessionID, &j.Printer, &j.Size, &j.Status, &j.Message, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
