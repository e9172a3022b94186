package models

import (
	"errors"
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestSpecBeforeStartDefaultsOffsetToZero(t *testing.T) {
	rule := &ReminderRule{Kind: RuleAtStart}
	spec, err := rule.Spec()
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	one, ok := spec.(OneShot)
	if !ok {
		t.Fatalf("expected OneShot, got %T", spec)
	}
	if one.Offset != 0 {
		t.Fatalf("expected zero offset, got %v", one.Offset)
	}
}

func TestSpecBeforeEndRequiresOffset(t *testing.T) {
	rule := &ReminderRule{Kind: RuleBeforeEnd}
	if _, err := rule.Spec(); !errors.Is(err, ErrMissingOffset) {
		t.Fatalf("expected ErrMissingOffset, got %v", err)
	}

	rule.OffsetMinutes = intPtr(15)
	spec, err := rule.Spec()
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	if spec.(OneShot).Offset != 15*time.Minute {
		t.Fatalf("expected 15m offset, got %v", spec.(OneShot).Offset)
	}
}

func TestSpecPeriodicDuringRequiresInterval(t *testing.T) {
	rule := &ReminderRule{Kind: RulePeriodicDuring}
	if _, err := rule.Spec(); !errors.Is(err, ErrMissingInterval) {
		t.Fatalf("expected ErrMissingInterval, got %v", err)
	}

	rule.IntervalMinutes = intPtr(0)
	if _, err := rule.Spec(); !errors.Is(err, ErrMissingInterval) {
		t.Fatalf("expected ErrMissingInterval for zero interval, got %v", err)
	}
}

func TestSpecPeriodicBeforeClockStart(t *testing.T) {
	rule := &ReminderRule{
		Kind:            RulePeriodicBefore,
		IntervalMinutes: intPtr(30),
		StartFrom:       "16:00",
		StopAt:          "30",
	}
	spec, err := rule.Spec()
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	pb := spec.(PeriodicBefore)
	if pb.StartClock == nil || pb.StartClock.Hour != 16 || pb.StartClock.Minute != 0 {
		t.Fatalf("expected 16:00 start clock, got %+v", pb.StartClock)
	}
	if pb.StopBefore != 30*time.Minute {
		t.Fatalf("expected 30m stop bound, got %v", pb.StopBefore)
	}
}

func TestSpecPeriodicBeforeMinutesStart(t *testing.T) {
	rule := &ReminderRule{
		Kind:            RulePeriodicBefore,
		IntervalMinutes: intPtr(30),
		StartFrom:       "240",
		StopAt:          "30",
	}
	spec, err := rule.Spec()
	if err != nil {
		t.Fatalf("spec: %v", err)
	}
	pb := spec.(PeriodicBefore)
	if pb.StartClock != nil {
		t.Fatalf("expected relative start, got clock %+v", pb.StartClock)
	}
	if pb.StartBefore != 240*time.Minute {
		t.Fatalf("expected 240m start bound, got %v", pb.StartBefore)
	}
}

func TestSpecPeriodicBeforeRejectsMalformedBounds(t *testing.T) {
	rule := &ReminderRule{
		Kind:            RulePeriodicBefore,
		IntervalMinutes: intPtr(30),
		StartFrom:       "soonish",
		StopAt:          "30",
	}
	if _, err := rule.Spec(); err == nil {
		t.Fatal("expected error for non-numeric start_from")
	}

	rule.StartFrom = "25:99"
	if _, err := rule.Spec(); err == nil {
		t.Fatal("expected error for malformed clock time")
	}

	rule.StartFrom = "240"
	rule.StopAt = "never"
	if _, err := rule.Spec(); err == nil {
		t.Fatal("expected error for non-numeric stop_at")
	}
}

func TestSpecRejectsUnknownKind(t *testing.T) {
	rule := &ReminderRule{Kind: "whenever"}
	if _, err := rule.Spec(); !errors.Is(err, ErrInvalidRuleKind) {
		t.Fatalf("expected ErrInvalidRuleKind, got %v", err)
	}
}
