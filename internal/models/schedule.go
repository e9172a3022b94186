package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	ErrInvalidDayOfWeek = errors.New("models: day_of_week must be 1 (Monday) through 7 (Sunday)")
	ErrInvalidDayTime   = errors.New("models: invalid HH:MM time")
)

// DayTime is a wall-clock time of day ("HH:MM") with no date attached.
type DayTime struct {
	Hour   int
	Minute int
}

func ParseDayTime(s string) (DayTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return DayTime{}, fmt.Errorf("%w: %q", ErrInvalidDayTime, s)
	}
	return DayTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (dt DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", dt.Hour, dt.Minute)
}

// On anchors the clock time to the calendar date of day.
func (dt DayTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, dt.Hour, dt.Minute, 0, 0, day.Location())
}

// Schedule is one weekly recurrence slot of an event task.
type Schedule struct {
	ScheduleID int       `json:"schedule_id"`
	TaskID     int       `json:"task_id"`
	DayOfWeek  int       `json:"day_of_week"` // ISO: 1 = Monday ... 7 = Sunday
	StartTime  string    `json:"start_time"`  // HH:MM
	EndTime    string    `json:"end_time"`    // HH:MM, empty for open-ended events
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Schedule) Validate() error {
	if s.DayOfWeek < 1 || s.DayOfWeek > 7 {
		return fmt.Errorf("%w: %d", ErrInvalidDayOfWeek, s.DayOfWeek)
	}
	if _, err := ParseDayTime(s.StartTime); err != nil {
		return err
	}
	if s.EndTime != "" {
		if _, err := ParseDayTime(s.EndTime); err != nil {
			return err
		}
	}
	return nil
}

// Occurrence is one concrete instance of an event: an absolute start and,
// for duration-bearing events, an absolute end.
type Occurrence struct {
	Start time.Time
	End   *time.Time
}

// OccurrenceOn combines the schedule's clock times with the given calendar date.
func (s *Schedule) OccurrenceOn(day time.Time) (Occurrence, error) {
	start, err := ParseDayTime(s.StartTime)
	if err != nil {
		return Occurrence{}, err
	}
	occ := Occurrence{Start: start.On(day)}
	if s.EndTime != "" {
		end, err := ParseDayTime(s.EndTime)
		if err != nil {
			return Occurrence{}, err
		}
		e := end.On(day)
		occ.End = &e
	}
	return occ, nil
}

var isoWeekdays = map[int]rrule.Weekday{
	1: rrule.MO,
	2: rrule.TU,
	3: rrule.WE,
	4: rrule.TH,
	5: rrule.FR,
	6: rrule.SA,
	7: rrule.SU,
}

// datesWithin expands the schedule's weekly slot to concrete calendar dates
// (at midnight, local to from) for the window [from, from+days).
func (s *Schedule) datesWithin(from time.Time, days int) ([]time.Time, error) {
	wd, ok := isoWeekdays[s.DayOfWeek]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDayOfWeek, s.DayOfWeek)
	}
	windowStart := truncateToDay(from)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{wd},
		Dtstart:   windowStart,
	})
	if err != nil {
		return nil, fmt.Errorf("models: build weekly rule: %w", err)
	}
	windowEnd := windowStart.AddDate(0, 0, days).Add(-time.Nanosecond)
	return rule.Between(windowStart, windowEnd, true), nil
}

// ExpandSchedules turns a task's active schedules into the concrete
// occurrences falling within [from, from+days). Schedules are considered in
// the order given; when two slots claim the same day-of-week, the first one
// wins and the rest are ignored for that date. The result is ordered by
// start time.
func ExpandSchedules(schedules []*Schedule, from time.Time, days int) ([]Occurrence, error) {
	if days <= 0 {
		return nil, nil
	}
	claimed := make(map[string]bool)
	var out []Occurrence
	for _, s := range schedules {
		dates, err := s.datesWithin(from, days)
		if err != nil {
			return nil, err
		}
		for _, day := range dates {
			key := day.Format("2006-01-02")
			if claimed[key] {
				continue
			}
			occ, err := s.OccurrenceOn(day)
			if err != nil {
				return nil, err
			}
			claimed[key] = true
			out = append(out, occ)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
