// Package engine holds the three batch operations of the reminder core:
// regeneration, dispatch, and repeat notification. Each is a finite run
// meant to be invoked from a timer; all state lives behind the store
// interfaces, so repeated or overlapping triggering is safe.
package engine

import (
	"context"
	"time"

	"github.com/dvolkov/remindd/internal/models"
)

// TaskStore reads tasks. Get returns (nil, nil) when the task is gone;
// vanished tasks are a normal condition for the dispatcher, not an error.
type TaskStore interface {
	Get(ctx context.Context, taskID int) (*models.Task, error)
	ListPending(ctx context.Context) ([]*models.Task, error)
}

type ScheduleStore interface {
	ListActive(ctx context.Context, taskID int) ([]*models.Schedule, error)
}

// RuleStore lists a task's active rules ordered by order_index.
type RuleStore interface {
	ListActive(ctx context.Context, taskID int) ([]*models.ReminderRule, error)
}

type ReminderStore interface {
	// ReplaceUpcoming atomically deletes the task's unsent reminders and
	// inserts the given instants, returning the inserted count.
	ReplaceUpcoming(ctx context.Context, taskID int, now time.Time, times []time.Time) (int, error)
	ListDue(ctx context.Context, from, to time.Time) ([]*models.Reminder, error)
	ListUnacknowledged(ctx context.Context, sentBefore time.Time) ([]*models.Reminder, error)
	MarkSent(ctx context.Context, reminderID int, at time.Time, messageID *int) error
}

// Notifier delivers a rendered reminder and reports the provider's message
// id for later correlation.
type Notifier interface {
	SendReminder(ctx context.Context, task *models.Task, rem *models.Reminder) (messageID int, err error)
	SendRepeat(ctx context.Context, task *models.Task, rem *models.Reminder) (messageID int, err error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
