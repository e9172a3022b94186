package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RuleKind string

const (
	RuleBeforeStart    RuleKind = "before_start"
	RuleAtStart        RuleKind = "at_start"
	RuleBeforeEnd      RuleKind = "before_end"
	RulePeriodicBefore RuleKind = "periodic_before"
	RulePeriodicDuring RuleKind = "periodic_during"
	RuleAfterEnd       RuleKind = "after_end"
)

func (k RuleKind) IsValid() bool {
	switch k {
	case RuleBeforeStart, RuleAtStart, RuleBeforeEnd, RulePeriodicBefore, RulePeriodicDuring, RuleAfterEnd:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidRuleKind = errors.New("models: invalid rule kind")
	ErrMissingOffset   = errors.New("models: rule requires offset_minutes")
	ErrMissingInterval = errors.New("models: rule requires a positive interval_minutes")
	ErrMissingBound    = errors.New("models: periodic_before requires start_from and stop_at")
)

// ReminderRule is the persisted form of a rule: one row shape for every
// kind, with the per-kind parameters optional. Spec decodes it into the
// variant that the rule's kind actually needs, so missing parameters are
// caught in one place.
type ReminderRule struct {
	RuleID          int       `json:"rule_id"`
	TaskID          int       `json:"task_id"`
	Kind            RuleKind  `json:"rule_type"`
	OffsetMinutes   *int      `json:"offset_minutes"`
	IntervalMinutes *int      `json:"interval_minutes"`
	StartFrom       string    `json:"start_from"` // "HH:MM" clock time, or minutes before start
	StopAt          string    `json:"stop_at"`    // minutes before start
	IsActive        bool      `json:"is_active"`
	OrderIndex      int       `json:"order_index"`
	CreatedAt       time.Time `json:"created_at"`
}

// RuleSpec is the decoded, kind-specific view of a ReminderRule.
type RuleSpec interface {
	ruleSpec()
}

// OneShot covers before_start, at_start, before_end and after_end: a single
// instant at a fixed offset from the occurrence start or end.
type OneShot struct {
	Kind   RuleKind
	Offset time.Duration
}

// PeriodicDuring fires every Interval from the occurrence start while the
// occurrence is running.
type PeriodicDuring struct {
	Interval time.Duration
}

// PeriodicBefore fires every Interval leading up to the occurrence start.
// The series begins either at a fixed clock time on the occurrence's date
// (StartClock) or StartBefore minutes ahead of the start, and ends
// StopBefore minutes ahead of the start, inclusive.
type PeriodicBefore struct {
	Interval    time.Duration
	StartClock  *DayTime
	StartBefore time.Duration
	StopBefore  time.Duration
}

func (OneShot) ruleSpec()        {}
func (PeriodicDuring) ruleSpec() {}
func (PeriodicBefore) ruleSpec() {}

// Spec decodes the rule's parameters for its kind. A decode error means the
// rule is misconfigured and must contribute no reminders; it never concerns
// sibling rules of the same task.
func (r *ReminderRule) Spec() (RuleSpec, error) {
	switch r.Kind {
	case RuleBeforeStart, RuleAtStart:
		// Offset defaults to zero, making at_start the degenerate
		// before_start.
		offset := 0
		if r.OffsetMinutes != nil {
			offset = *r.OffsetMinutes
		}
		return OneShot{Kind: r.Kind, Offset: minutes(offset)}, nil

	case RuleBeforeEnd, RuleAfterEnd:
		if r.OffsetMinutes == nil {
			return nil, fmt.Errorf("%w (kind %s)", ErrMissingOffset, r.Kind)
		}
		return OneShot{Kind: r.Kind, Offset: minutes(*r.OffsetMinutes)}, nil

	case RulePeriodicDuring:
		if r.IntervalMinutes == nil || *r.IntervalMinutes <= 0 {
			return nil, fmt.Errorf("%w (kind %s)", ErrMissingInterval, r.Kind)
		}
		return PeriodicDuring{Interval: minutes(*r.IntervalMinutes)}, nil

	case RulePeriodicBefore:
		if r.IntervalMinutes == nil || *r.IntervalMinutes <= 0 {
			return nil, fmt.Errorf("%w (kind %s)", ErrMissingInterval, r.Kind)
		}
		if r.StartFrom == "" || r.StopAt == "" {
			return nil, ErrMissingBound
		}
		spec := PeriodicBefore{Interval: minutes(*r.IntervalMinutes)}
		if strings.Contains(r.StartFrom, ":") {
			clock, err := ParseDayTime(r.StartFrom)
			if err != nil {
				return nil, fmt.Errorf("models: start_from: %w", err)
			}
			spec.StartClock = &clock
		} else {
			n, err := strconv.Atoi(r.StartFrom)
			if err != nil {
				return nil, fmt.Errorf("models: start_from %q: %w", r.StartFrom, err)
			}
			spec.StartBefore = minutes(n)
		}
		stop, err := strconv.Atoi(r.StopAt)
		if err != nil {
			return nil, fmt.Errorf("models: stop_at %q: %w", r.StopAt, err)
		}
		spec.StopBefore = minutes(stop)
		return spec, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRuleKind, r.Kind)
	}
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
