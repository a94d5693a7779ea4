package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Sweeper marks confirmed reservations whose window has ended as completed.
type Sweeper struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSweeper(db *sqlx.DB, logger *slog.Logger) *Sweeper {
	return &Sweeper{db: db, logger: logger}
}

// Run completes every confirmed reservation with ends_at <= now and returns
// how many rows changed.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (int64, error) {
	now = now.UTC()
	query := s.db.Rebind(`
UPDATE reservations
   SET status = ?, updated_at = ?
 WHERE status = ? AND ends_at <= ?`)

	result, err := s.db.ExecContext(ctx, query, string(StatusCompleted), now, string(StatusConfirmed), now)
	if err != nil {
		return 0, fmt.Errorf("sweep reservations: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep reservations: rows affected: %w", err)
	}

	s.logger.InfoContext(ctx, "reservations swept", "completed", n, "cutoff", now)
	return n, nil
}
