package repository

import (
	"context"
	"database/sql"
)

// SessionValueRepo persists the session hand-off store.
type SessionValueRepo struct {
	db *sql.DB
}

func NewSessionValueRepo(db *sql.DB) *SessionValueRepo { return &SessionValueRepo{db: db} }

func (r *SessionValueRepo) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO session_values(key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP;
	`, key, value)
	return err
}

func (r *SessionValueRepo) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM session_values WHERE key = ?`, k); err != nil {
			return err
		}
	}
	return nil
}

func (r *SessionValueRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session_values`)
	return err
}

func (r *SessionValueRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM session_values`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
