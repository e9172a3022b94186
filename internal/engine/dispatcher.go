package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dvolkov/remindd/internal/models"
)

// Dispatcher delivers due reminders and re-sends unacknowledged ones. Both
// passes only ever act on persisted flags, so at-least-once triggering from
// a timer is safe.
type Dispatcher struct {
	tasks     TaskStore
	reminders ReminderStore
	notifier  Notifier
	clock     Clock
	lookback  time.Duration
	grace     time.Duration
}

func NewDispatcher(tasks TaskStore, reminders ReminderStore, notifier Notifier, clock Clock, lookback, grace time.Duration) *Dispatcher {
	if lookback <= 0 {
		lookback = 2 * time.Minute
	}
	if grace <= 0 {
		grace = 15 * time.Minute
	}
	return &Dispatcher{
		tasks:     tasks,
		reminders: reminders,
		notifier:  notifier,
		clock:     clock,
		lookback:  lookback,
		grace:     grace,
	}
}

// DispatchStats aggregates one DispatchDue run.
type DispatchStats struct {
	Sent    int
	Skipped int
	Failed  int
}

// DispatchDue sends every unsent reminder that came due within the lookback
// window. The window absorbs poller jitter only; a reminder that keeps
// failing past it ages out and is never retried. Reminders for vanished,
// done, or paused tasks are marked sent without notifying so they stop
// matching the due query.
func (d *Dispatcher) DispatchDue(ctx context.Context) (DispatchStats, error) {
	var stats DispatchStats
	now := d.clock.Now()

	due, err := d.reminders.ListDue(ctx, now.Add(-d.lookback), now)
	if err != nil {
		return stats, fmt.Errorf("list due reminders: %w", err)
	}

	for _, rem := range due {
		task, err := d.tasks.Get(ctx, rem.TaskID)
		if err != nil {
			log.Printf("Failed to load task %d for reminder %d: %v", rem.TaskID, rem.ReminderID, err)
			stats.Failed++
			continue
		}

		if task == nil || task.Status == models.TaskStatusDone || task.IsPausedAt(now) {
			if err := d.reminders.MarkSent(ctx, rem.ReminderID, now, nil); err != nil {
				log.Printf("Failed to retire reminder %d: %v", rem.ReminderID, err)
			}
			stats.Skipped++
			continue
		}

		messageID, err := d.notifier.SendReminder(ctx, task, rem)
		if err != nil {
			// Leave the row unsent; the next poll retries within the window.
			log.Printf("Failed to send reminder %d for task %d: %v", rem.ReminderID, rem.TaskID, err)
			stats.Failed++
			continue
		}

		if err := d.reminders.MarkSent(ctx, rem.ReminderID, now, &messageID); err != nil {
			log.Printf("Failed to mark reminder %d sent: %v", rem.ReminderID, err)
			stats.Failed++
			continue
		}
		stats.Sent++
	}
	return stats, nil
}

// RepeatUnacknowledged re-sends reminders that were delivered at least the
// grace period ago and never acknowledged, sliding sent_at forward so each
// repeat waits another full grace period. The loop only ends when the user
// acknowledges or completes the task; that nagging is the point.
func (d *Dispatcher) RepeatUnacknowledged(ctx context.Context) (int, error) {
	now := d.clock.Now()

	pending, err := d.reminders.ListUnacknowledged(ctx, now.Add(-d.grace))
	if err != nil {
		return 0, fmt.Errorf("list unacknowledged reminders: %w", err)
	}

	count := 0
	for _, rem := range pending {
		task, err := d.tasks.Get(ctx, rem.TaskID)
		if err != nil {
			log.Printf("Failed to load task %d for repeat %d: %v", rem.TaskID, rem.ReminderID, err)
			continue
		}
		if task == nil || task.Status != models.TaskStatusPending || task.IsPausedAt(now) {
			continue
		}

		messageID, err := d.notifier.SendRepeat(ctx, task, rem)
		if err != nil {
			log.Printf("Failed to repeat reminder %d for task %d: %v", rem.ReminderID, rem.TaskID, err)
			continue
		}

		if err := d.reminders.MarkSent(ctx, rem.ReminderID, now, &messageID); err != nil {
			log.Printf("Failed to slide sent_at for reminder %d: %v", rem.ReminderID, err)
			continue
		}
		count++
	}
	return count, nil
}
