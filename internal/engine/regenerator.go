package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dvolkov/remindd/internal/models"
	"github.com/dvolkov/remindd/internal/rules"
)

// Regenerator recomputes the materialized reminders of a task from its
// schedules and rules. Regeneration is idempotent by construction: it
// replaces the unsent set wholesale instead of mutating rows in place.
type Regenerator struct {
	tasks       TaskStore
	schedules   ScheduleStore
	rules       RuleStore
	reminders   ReminderStore
	clock       Clock
	horizonDays int
}

func NewRegenerator(tasks TaskStore, schedules ScheduleStore, ruleStore RuleStore, reminders ReminderStore, clock Clock, horizonDays int) *Regenerator {
	if horizonDays <= 0 {
		horizonDays = 1
	}
	return &Regenerator{
		tasks:       tasks,
		schedules:   schedules,
		rules:       ruleStore,
		reminders:   reminders,
		clock:       clock,
		horizonDays: horizonDays,
	}
}

// Regenerate replaces the task's unsent reminders with the freshly computed
// upcoming set and returns how many were created. A paused or scheduleless
// task ends up with zero upcoming reminders; its stale unsent rows are still
// cleared.
func (g *Regenerator) Regenerate(ctx context.Context, task *models.Task) (int, error) {
	now := g.clock.Now()

	times, err := g.upcoming(ctx, task, now)
	if err != nil {
		return 0, err
	}

	count, err := g.reminders.ReplaceUpcoming(ctx, task.TaskID, now, times)
	if err != nil {
		return 0, fmt.Errorf("replace reminders for task %d: %w", task.TaskID, err)
	}
	return count, nil
}

// RegenerateStats aggregates one RegenerateAll run.
type RegenerateStats struct {
	TasksProcessed   int
	TasksFailed      int
	RemindersCreated int
}

// RegenerateAll runs Regenerate over every pending task. A failing task is
// logged and skipped; the first error is returned after the whole batch so
// a cron wrapper can flag a partial run.
func (g *Regenerator) RegenerateAll(ctx context.Context) (RegenerateStats, error) {
	var stats RegenerateStats

	tasks, err := g.tasks.ListPending(ctx)
	if err != nil {
		return stats, fmt.Errorf("list pending tasks: %w", err)
	}

	var firstErr error
	for _, task := range tasks {
		count, err := g.Regenerate(ctx, task)
		if err != nil {
			log.Printf("Failed to regenerate reminders for task %d: %v", task.TaskID, err)
			stats.TasksFailed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stats.TasksProcessed++
		stats.RemindersCreated += count
	}
	return stats, firstErr
}

// upcoming computes the task's future reminder instants, strictly after now,
// sorted ascending.
func (g *Regenerator) upcoming(ctx context.Context, task *models.Task, now time.Time) ([]time.Time, error) {
	var occs []models.Occurrence

	switch task.Type {
	case models.TaskTypeSimple:
		if task.DueDate == nil {
			return nil, nil
		}
		occs = []models.Occurrence{{Start: *task.DueDate}}

	case models.TaskTypeEvent, models.TaskTypeRecurringEvent:
		if task.IsPausedAt(now) {
			return nil, nil
		}
		schedules, err := g.schedules.ListActive(ctx, task.TaskID)
		if err != nil {
			return nil, fmt.Errorf("list schedules for task %d: %w", task.TaskID, err)
		}
		if len(schedules) == 0 {
			return nil, nil
		}
		occs, err = models.ExpandSchedules(schedules, now, g.horizonDays)
		if err != nil {
			return nil, fmt.Errorf("expand schedules for task %d: %w", task.TaskID, err)
		}

	default:
		// Unknown task types generate nothing rather than failing the batch.
		return nil, nil
	}

	if len(occs) == 0 {
		return nil, nil
	}

	ruleList, err := g.rules.ListActive(ctx, task.TaskID)
	if err != nil {
		return nil, fmt.Errorf("list rules for task %d: %w", task.TaskID, err)
	}

	var times []time.Time
	for _, occ := range occs {
		for _, rule := range ruleList {
			instants, err := rules.Apply(rule, occ)
			if errors.Is(err, rules.ErrInstantCap) {
				log.Printf("Rule %d of task %d hit the instant cap, truncating", rule.RuleID, task.TaskID)
			} else if err != nil {
				// A misconfigured rule skips only its own contribution.
				log.Printf("Skipping rule %d of task %d: %v", rule.RuleID, task.TaskID, err)
				continue
			}
			for _, t := range instants {
				if t.After(now) {
					times = append(times, t)
				}
			}
		}
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times, nil
}
