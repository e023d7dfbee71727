package repository

import (
	"context"
	"database/sql"
)

// ContactRepo records contact submissions so failed ones can be exported later.
type ContactRepo struct {
	db *sql.DB
}

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Insert(ctx context.Context, c Contact) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO contacts(id, session_id, name, phone, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, c.ID, c.SessionID, c.Name, c.Phone, c.Status)
	return err
}

func (r *ContactRepo) MarkSent(ctx context.Context, id string, remoteID *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE contacts SET status = ?, remote_id = ?, error = NULL, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, StatusSent, remoteID, id)
	return err
}

func (r *ContactRepo) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE contacts SET status = ?, error = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, StatusFailed, reason, id)
	return err
}

func (r *ContactRepo) Get(ctx context.Context, id string) (*Contact, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, session_id, name, phone, status, error, remote_id, created_at, updated_at
	FROM contacts WHERE id = ?`, id)
	var c Contact
	if err := row.Scan(&c.ID, &c.SessionID, &c.Name, &c.Phone, &c.Status, &c.Error, &c.RemoteID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListByStatus returns contacts with the given status, oldest first.
func (r *ContactRepo) ListByStatus(ctx context.Context, status string) ([]Contact, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, session_id, name, phone, status, error, remote_id, created_at, updated_at
	FROM contacts WHERE status = ? ORDER BY created_at, id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Name, &c.Phone, &c.Status, &c.Error, &c.RemoteID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
