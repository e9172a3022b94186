package models

import (
	"testing"
	"time"
)

func TestParseDayTime(t *testing.T) {
	dt, err := ParseDayTime("18:05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if dt.Hour != 18 || dt.Minute != 5 {
		t.Fatalf("expected 18:05, got %+v", dt)
	}

	for _, bad := range []string{"", "18", "25:00", "18:60", "quarter past"} {
		if _, err := ParseDayTime(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestOccurrenceOnCombinesDateAndTimes(t *testing.T) {
	s := &Schedule{DayOfWeek: 3, StartTime: "18:00", EndTime: "19:00"}
	day := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC) // a Wednesday

	occ, err := s.OccurrenceOn(day)
	if err != nil {
		t.Fatalf("occurrence: %v", err)
	}
	if !occ.Start.Equal(time.Date(2025, 1, 8, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", occ.Start)
	}
	if occ.End == nil || !occ.End.Equal(time.Date(2025, 1, 8, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", occ.End)
	}
}

func TestOccurrenceOnOpenEnded(t *testing.T) {
	s := &Schedule{DayOfWeek: 1, StartTime: "09:30"}
	occ, err := s.OccurrenceOn(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("occurrence: %v", err)
	}
	if occ.End != nil {
		t.Fatalf("expected no end, got %v", occ.End)
	}
}

func TestExpandSchedulesTwoWeeksOfWednesdays(t *testing.T) {
	schedules := []*Schedule{
		{DayOfWeek: 3, StartTime: "18:00", EndTime: "19:00"},
	}
	from := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC) // Monday morning

	occs, err := ExpandSchedules(schedules, from, 14)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences in 14 days, got %d", len(occs))
	}
	want := []time.Time{
		time.Date(2025, 1, 8, 18, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		if !occs[i].Start.Equal(w) {
			t.Fatalf("occurrence %d: expected %v, got %v", i, w, occs[i].Start)
		}
	}
}

func TestExpandSchedulesFirstSlotWinsPerDay(t *testing.T) {
	schedules := []*Schedule{
		{ScheduleID: 1, DayOfWeek: 3, StartTime: "18:00"},
		{ScheduleID: 2, DayOfWeek: 3, StartTime: "07:00"},
	}
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	occs, err := ExpandSchedules(schedules, from, 7)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occs))
	}
	if occs[0].Start.Hour() != 18 {
		t.Fatalf("expected the first listed slot (18:00) to win, got %v", occs[0].Start)
	}
}

func TestExpandSchedulesIncludesWindowStartDay(t *testing.T) {
	schedules := []*Schedule{
		{DayOfWeek: 1, StartTime: "23:00"},
	}
	from := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC) // Monday

	occs, err := ExpandSchedules(schedules, from, 1)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("expected today's occurrence, got %d", len(occs))
	}
	if !occs[0].Start.Equal(time.Date(2025, 1, 6, 23, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", occs[0].Start)
	}
}

func TestTaskIsPausedAt(t *testing.T) {
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	task := &Task{IsPaused: true, PausedUntil: &tomorrow}
	if !task.IsPausedAt(now) {
		t.Fatal("expected paused while paused_until is tomorrow")
	}

	task.PausedUntil = &yesterday
	if task.IsPausedAt(now) {
		t.Fatal("expected pause expired when paused_until passed")
	}

	task = &Task{IsPaused: false, PausedUntil: &tomorrow}
	if task.IsPausedAt(now) {
		t.Fatal("expected not paused when flag is clear")
	}
}
