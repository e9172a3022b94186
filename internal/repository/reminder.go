package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dvolkov/remindd/internal/database"
	"github.com/dvolkov/remindd/internal/models"
)

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const reminderColumns = `reminder_id, task_id, remind_at, sent, sent_at,
	 acknowledged, acknowledged_at, message_id, created_at`

// ReplaceUpcoming swaps the task's unsent reminders for the given instants
// in one transaction, so a concurrent dispatch never observes a half-written
// set. Unsent rows whose time already passed are cleared along the way (they
// can never fire); sent rows are history and stay untouched. Returns the
// number of rows inserted.
func (r *ReminderRepository) ReplaceUpcoming(ctx context.Context, taskID int, now time.Time, times []time.Time) (int, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM task_reminders WHERE task_id = $1 AND sent = false`,
		taskID,
	); err != nil {
		return 0, fmt.Errorf("delete unsent reminders: %w", err)
	}

	if len(times) > 0 {
		batch := &pgx.Batch{}
		for _, t := range times {
			batch.Queue(
				`INSERT INTO task_reminders (task_id, remind_at, sent, acknowledged, created_at)
				 VALUES ($1, $2, false, false, $3)`,
				taskID, t, now,
			)
		}
		results := tx.SendBatch(ctx, batch)
		for range times {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return 0, fmt.Errorf("insert reminder: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return 0, fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}
	return len(times), nil
}

// ListDue returns unsent reminders whose instant falls within [from, to].
func (r *ReminderRepository) ListDue(ctx context.Context, from, to time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM task_reminders
		 WHERE sent = false AND remind_at >= $1 AND remind_at <= $2
		 ORDER BY remind_at ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// ListUnacknowledged returns sent, unacknowledged reminders whose last send
// happened before the given threshold.
func (r *ReminderRepository) ListUnacknowledged(ctx context.Context, sentBefore time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM task_reminders
		 WHERE sent = true AND acknowledged = false AND sent_at < $1
		 ORDER BY sent_at ASC`,
		sentBefore,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent records a (re)send. A nil messageID keeps whatever message id the
// row already carries.
func (r *ReminderRepository) MarkSent(ctx context.Context, reminderID int, at time.Time, messageID *int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE task_reminders SET sent = true, sent_at = $1, message_id = COALESCE($2, message_id)
		 WHERE reminder_id = $3`,
		at, messageID, reminderID,
	)
	return err
}

func (r *ReminderRepository) Acknowledge(ctx context.Context, reminderID int, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE task_reminders SET acknowledged = true, acknowledged_at = $1 WHERE reminder_id = $2`,
		at, reminderID,
	)
	return err
}

// DeleteUnsent drops every unsent reminder of a task, used when the task is
// completed so the pending queue cannot fire for it anymore.
func (r *ReminderRepository) DeleteUnsent(ctx context.Context, taskID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM task_reminders WHERE task_id = $1 AND sent = false`,
		taskID,
	)
	return err
}

func scanReminders(rows pgx.Rows) ([]*models.Reminder, error) {
	var reminders []*models.Reminder
	for rows.Next() {
		rem := &models.Reminder{}
		if err := rows.Scan(&rem.ReminderID, &rem.TaskID, &rem.RemindAt, &rem.Sent, &rem.SentAt,
			&rem.Acknowledged, &rem.AcknowledgedAt, &rem.MessageID, &rem.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
