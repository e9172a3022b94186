package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dvolkov/remindd/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// memoryStore backs every engine store interface for tests.
type memoryStore struct {
	tasks     map[int]*models.Task
	schedules map[int][]*models.Schedule
	rules     map[int][]*models.ReminderRule
	reminders []*models.Reminder
	nextID    int

	failSchedulesFor int // task id whose schedule listing errors
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		tasks:     make(map[int]*models.Task),
		schedules: make(map[int][]*models.Schedule),
		rules:     make(map[int][]*models.ReminderRule),
	}
}

func (m *memoryStore) Get(_ context.Context, taskID int) (*models.Task, error) {
	return m.tasks[taskID], nil
}

func (m *memoryStore) ListPending(_ context.Context) ([]*models.Task, error) {
	var out []*models.Task
	for _, task := range m.tasks {
		if task.Status == models.TaskStatusPending {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out, nil
}

func (m *memoryStore) ListActive(_ context.Context, taskID int) ([]*models.Schedule, error) {
	if taskID == m.failSchedulesFor && m.failSchedulesFor != 0 {
		return nil, fmt.Errorf("schedule store down")
	}
	return m.schedules[taskID], nil
}

// ruleStore adapts memoryStore's rules map to the RuleStore interface,
// because ListActive is already taken by schedules.
type ruleStore struct {
	m *memoryStore
}

func (r ruleStore) ListActive(_ context.Context, taskID int) ([]*models.ReminderRule, error) {
	return r.m.rules[taskID], nil
}

func (m *memoryStore) ReplaceUpcoming(_ context.Context, taskID int, now time.Time, times []time.Time) (int, error) {
	var kept []*models.Reminder
	for _, rem := range m.reminders {
		if rem.TaskID == taskID && !rem.Sent {
			continue
		}
		kept = append(kept, rem)
	}
	m.reminders = kept
	for _, t := range times {
		m.nextID++
		m.reminders = append(m.reminders, &models.Reminder{
			ReminderID: m.nextID,
			TaskID:     taskID,
			RemindAt:   t,
			CreatedAt:  now,
		})
	}
	return len(times), nil
}

func (m *memoryStore) ListDue(_ context.Context, from, to time.Time) ([]*models.Reminder, error) {
	var out []*models.Reminder
	for _, rem := range m.reminders {
		if !rem.Sent && !rem.RemindAt.Before(from) && !rem.RemindAt.After(to) {
			out = append(out, rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RemindAt.Before(out[j].RemindAt) })
	return out, nil
}

func (m *memoryStore) ListUnacknowledged(_ context.Context, sentBefore time.Time) ([]*models.Reminder, error) {
	var out []*models.Reminder
	for _, rem := range m.reminders {
		if rem.Sent && !rem.Acknowledged && rem.SentAt != nil && rem.SentAt.Before(sentBefore) {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (m *memoryStore) MarkSent(_ context.Context, reminderID int, at time.Time, messageID *int) error {
	for _, rem := range m.reminders {
		if rem.ReminderID == reminderID {
			rem.Sent = true
			sentAt := at
			rem.SentAt = &sentAt
			if messageID != nil {
				rem.MessageID = messageID
			}
			return nil
		}
	}
	return fmt.Errorf("reminder %d not found", reminderID)
}

func (m *memoryStore) addTask(task *models.Task) {
	m.tasks[task.TaskID] = task
}

func (m *memoryStore) addReminder(rem *models.Reminder) {
	m.nextID++
	rem.ReminderID = m.nextID
	m.reminders = append(m.reminders, rem)
}

func (m *memoryStore) unsentTimes(taskID int) []time.Time {
	var out []time.Time
	for _, rem := range m.reminders {
		if rem.TaskID == taskID && !rem.Sent {
			out = append(out, rem.RemindAt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type sendCall struct {
	taskID     int
	reminderID int
	repeat     bool
}

type fakeNotifier struct {
	calls  []sendCall
	fail   bool
	nextID int
}

func (n *fakeNotifier) SendReminder(_ context.Context, task *models.Task, rem *models.Reminder) (int, error) {
	if n.fail {
		return 0, fmt.Errorf("telegram unavailable")
	}
	n.calls = append(n.calls, sendCall{taskID: task.TaskID, reminderID: rem.ReminderID})
	n.nextID++
	return n.nextID, nil
}

func (n *fakeNotifier) SendRepeat(_ context.Context, task *models.Task, rem *models.Reminder) (int, error) {
	if n.fail {
		return 0, fmt.Errorf("telegram unavailable")
	}
	n.calls = append(n.calls, sendCall{taskID: task.TaskID, reminderID: rem.ReminderID, repeat: true})
	n.nextID++
	return n.nextID, nil
}
