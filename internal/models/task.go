package models

import "time"

type TaskType string

const (
	TaskTypeSimple         TaskType = "simple"
	TaskTypeEvent          TaskType = "event"
	TaskTypeRecurringEvent TaskType = "recurring_event"
)

func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeSimple, TaskTypeEvent, TaskTypeRecurringEvent:
		return true
	default:
		return false
	}
}

type TaskStatus string

const (
	TaskStatusPending TaskStatus = "pending"
	TaskStatusDone    TaskStatus = "done"
)

type Task struct {
	TaskID      int        `json:"task_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Importance  int        `json:"importance"` // 1 = highest, 3 = lowest
	Type        TaskType   `json:"task_type"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date"` // simple tasks only
	IsPaused    bool       `json:"is_paused"`
	PausedUntil *time.Time `json:"paused_until"` // date; pause runs while today is before it
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPausedAt reports whether the task is paused at the given moment.
// A pause is active while the calendar date of now is strictly before
// the paused_until date.
func (t *Task) IsPausedAt(now time.Time) bool {
	if !t.IsPaused || t.PausedUntil == nil {
		return false
	}
	today := truncateToDay(now)
	return today.Before(truncateToDay(*t.PausedUntil))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
