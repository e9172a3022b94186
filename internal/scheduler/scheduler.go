// Package scheduler drives the engine's batch operations on timers:
// dispatch every minute, a repeat pass every few minutes, and a full
// regeneration daily. The operations themselves are idempotent, so an extra
// trigger is always safe.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/dvolkov/remindd/internal/engine"
)

type Scheduler struct {
	regenerator *engine.Regenerator
	dispatcher  *engine.Dispatcher
	clock       engine.Clock

	dispatchEvery   time.Duration
	repeatEvery     time.Duration
	regenerateEvery time.Duration

	// Repeats only run within [workStartHour, workEndHour) so unacknowledged
	// reminders do not nag overnight. First sends are not gated.
	workStartHour int
	workEndHour   int

	notifyCh chan struct{}
}

func New(regenerator *engine.Regenerator, dispatcher *engine.Dispatcher, clock engine.Clock, workStartHour, workEndHour int) *Scheduler {
	return &Scheduler{
		regenerator:     regenerator,
		dispatcher:      dispatcher,
		clock:           clock,
		dispatchEvery:   1 * time.Minute,
		repeatEvery:     5 * time.Minute,
		regenerateEvery: 24 * time.Hour,
		workStartHour:   workStartHour,
		workEndHour:     workEndHour,
		notifyCh:        make(chan struct{}, 1),
	}
}

// Notify triggers an immediate dispatch check. Non-blocking if a check is
// already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")

	dispatchTicker := time.NewTicker(s.dispatchEvery)
	defer dispatchTicker.Stop()
	repeatTicker := time.NewTicker(s.repeatEvery)
	defer repeatTicker.Stop()
	regenerateTicker := time.NewTicker(s.regenerateEvery)
	defer regenerateTicker.Stop()

	// Wait a bit for migrations to complete before the first pass.
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.runRegenerate(ctx)
	s.runDispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-dispatchTicker.C:
			s.runDispatch(ctx)
		case <-repeatTicker.C:
			if s.withinWorkHours(s.clock.Now()) {
				s.runRepeat(ctx)
			}
		case <-regenerateTicker.C:
			s.runRegenerate(ctx)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.runDispatch(ctx)
		}
	}
}

func (s *Scheduler) runDispatch(ctx context.Context) {
	stats, err := s.dispatcher.DispatchDue(ctx)
	if err != nil {
		log.Printf("Dispatch failed: %v", err)
		return
	}
	if stats.Sent > 0 || stats.Failed > 0 {
		log.Printf("Dispatched reminders: sent=%d skipped=%d failed=%d", stats.Sent, stats.Skipped, stats.Failed)
	}
}

func (s *Scheduler) runRepeat(ctx context.Context) {
	count, err := s.dispatcher.RepeatUnacknowledged(ctx)
	if err != nil {
		log.Printf("Repeat pass failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Re-sent %d unacknowledged reminders", count)
	}
}

func (s *Scheduler) runRegenerate(ctx context.Context) {
	stats, err := s.regenerator.RegenerateAll(ctx)
	if err != nil {
		log.Printf("Regeneration finished with errors: %v", err)
	}
	log.Printf("Regenerated reminders: tasks=%d failed=%d created=%d",
		stats.TasksProcessed, stats.TasksFailed, stats.RemindersCreated)
}

func (s *Scheduler) withinWorkHours(now time.Time) bool {
	if s.workStartHour == s.workEndHour {
		return true
	}
	return now.Hour() >= s.workStartHour && now.Hour() < s.workEndHour
}
