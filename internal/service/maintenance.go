package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/photobooth/internal/database"
	"github.com/jask/photobooth/internal/database/repository"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Purge removes visitor data that has already reached the backend: the hand-off
// store, sent contacts and the print log. Failed contacts are kept for follow-up.
func (s *MaintenanceService) Purge(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		stmts := []struct {
			name, sql string
			args      []any
		}{
			{"session_values", "DELETE FROM session_values", nil},
			{"contacts", "DELETE FROM contacts WHERE status = ?", []any{repository.StatusSent}},
			{"print_jobs", "DELETE FROM print_jobs", nil},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, st.sql, st.args...); err != nil {
				return fmt.Errorf("purge %s: %w", st.name, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
