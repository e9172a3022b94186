// Package rules maps a reminder rule applied to one event occurrence onto
// the instants a reminder should fire at. Evaluation is pure: persistence
// and the "no reminders in the past" filter belong to the caller.
package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvolkov/remindd/internal/models"
)

// MaxInstantsPerRule bounds one rule application, so a tiny interval over a
// long window cannot flood the reminder table.
const MaxInstantsPerRule = 1000

var ErrInstantCap = errors.New("rules: instant cap reached")

// Apply evaluates one rule against one occurrence. A nil error with an
// empty result is normal (for example before_end on an occurrence with no
// end). An ErrInstantCap error still carries the capped instants; any other
// error means the rule is misconfigured and contributed nothing.
func Apply(rule *models.ReminderRule, occ models.Occurrence) ([]time.Time, error) {
	spec, err := rule.Spec()
	if err != nil {
		return nil, err
	}

	switch s := spec.(type) {
	case models.OneShot:
		return applyOneShot(s, occ)
	case models.PeriodicDuring:
		if occ.End == nil {
			return nil, nil
		}
		return expand(occ.Start, s.Interval, func(t time.Time) bool {
			return t.Before(*occ.End) // open upper bound
		})
	case models.PeriodicBefore:
		start := occ.Start.Add(-s.StartBefore)
		if s.StartClock != nil {
			start = s.StartClock.On(occ.Start)
		}
		stop := occ.Start.Add(-s.StopBefore)
		return expand(start, s.Interval, func(t time.Time) bool {
			return !t.After(stop) // inclusive upper bound
		})
	default:
		return nil, fmt.Errorf("rules: unhandled spec %T", spec)
	}
}

func applyOneShot(s models.OneShot, occ models.Occurrence) ([]time.Time, error) {
	switch s.Kind {
	case models.RuleBeforeStart, models.RuleAtStart:
		return []time.Time{occ.Start.Add(-s.Offset)}, nil
	case models.RuleBeforeEnd:
		if occ.End == nil {
			return nil, nil
		}
		return []time.Time{occ.End.Add(-s.Offset)}, nil
	case models.RuleAfterEnd:
		if occ.End == nil {
			return nil, nil
		}
		return []time.Time{occ.End.Add(s.Offset)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidRuleKind, s.Kind)
	}
}

func expand(start time.Time, interval time.Duration, within func(time.Time) bool) ([]time.Time, error) {
	var out []time.Time
	for t := start; within(t); t = t.Add(interval) {
		if len(out) >= MaxInstantsPerRule {
			return out, ErrInstantCap
		}
		out = append(out, t)
	}
	return out, nil
}
