package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
	txcontext "vetblood/pkg/platform/tx"
)

// PostgresOutbox stores notifications in the notifications_outbox table.
type PostgresOutbox struct {
	db *sql.DB
}

func NewPostgresOutbox(db *sql.DB) *PostgresOutbox {
	return &PostgresOutbox{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (o *PostgresOutbox) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return o.db
}

func (o *PostgresOutbox) Enqueue(ctx context.Context, to domain.TelegramID, text string) error {
	const query = `
		INSERT INTO notifications_outbox (id, telegram_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, 0, $5)
	`
	_, err := o.execer(ctx).ExecContext(ctx, query,
		uuid.New(), int64(to), text, StatusPending, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// ClaimPending selects pending rows with SKIP LOCKED so relays scanning at
// the same instant skip past each other's rows. Outside a transaction the
// locks only last for the statement, so a row can still be claimed twice
// across scans; delivery is at-least-once and duplicates are tolerated.
func (o *PostgresOutbox) ClaimPending(ctx context.Context, limit int) ([]Notification, error) {
	const query = `
		SELECT id, telegram_id, payload, status, attempts, created_at
		FROM notifications_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	rows, err := o.db.QueryContext(ctx, query, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("claim pending notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n   Notification
			tid int64
		)
		if err := rows.Scan(&n.ID, &tid, &n.Text, &n.Status, &n.Attempts, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.TelegramID = domain.TelegramID(tid)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (o *PostgresOutbox) MarkPublished(ctx context.Context, id uuid.UUID) error {
	return o.setStatus(ctx, id, StatusPublished)
}

func (o *PostgresOutbox) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	return o.setStatus(ctx, id, StatusDelivered)
}

func (o *PostgresOutbox) MarkAttempt(ctx context.Context, id uuid.UUID, deliveryErr error) error {
	// A published row must come back to pending on failure, otherwise a
	// notification the consumer could not deliver is never retried.
	const query = `
		UPDATE notifications_outbox
		SET attempts = attempts + 1,
		    last_error = $2,
		    status = CASE WHEN attempts + 1 >= $3 THEN $4 ELSE $5 END
		WHERE id = $1
	`
	errText := ""
	if deliveryErr != nil {
		errText = deliveryErr.Error()
	}
	_, err := o.db.ExecContext(ctx, query, id, errText, maxAttempts, StatusFailed, StatusPending)
	if err != nil {
		return fmt.Errorf("mark notification attempt: %w", err)
	}
	return nil
}

func (o *PostgresOutbox) setStatus(ctx context.Context, id uuid.UUID, status Status) error {
	const query = `UPDATE notifications_outbox SET status = $2 WHERE id = $1`
	if _, err := o.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update notification status: %w", err)
	}
	return nil
}
