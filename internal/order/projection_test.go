package order

import (
	"testing"
	"time"

	"marketplace/internal/booking"
)

func TestProject_CoarseStatus(t *testing.T) {
	b := &booking.Booking{Status: booking.StatusCompleted}
	p := Project(b)

	if p.StepIndex != 6 {
		t.Fatalf("expected index 6 for completed, got %d", p.StepIndex)
	}
	if p.Progress != 100 {
		t.Fatalf("expected 100%%, got %d", p.Progress)
	}
	if len(p.Steps) != booking.StepCount {
		t.Fatalf("expected %d steps, got %d", booking.StepCount, len(p.Steps))
	}
	for _, s := range p.Steps {
		if !s.Reached {
			t.Fatalf("step %d not reached at full progress", s.Step)
		}
	}
}

func TestProject_TimelineWins(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &booking.Booking{
		Status: booking.StatusPending,
		Timeline: []booking.TimelineEntry{
			{Step: 1, Label: "Requested", At: at},
			{Step: 5, Label: "Work Started", At: at.Add(time.Hour)},
		},
	}
	p := Project(b)

	if p.StepIndex != 4 {
		t.Fatalf("expected timeline to win with index 4, got %d", p.StepIndex)
	}
	if !p.Steps[0].Reached || !p.Steps[4].Reached || p.Steps[5].Reached {
		t.Fatalf("unexpected reached flags: %+v", p.Steps)
	}
	if p.Steps[4].At == nil || !p.Steps[4].At.Equal(at.Add(time.Hour)) {
		t.Fatalf("expected step 5 stamped from timeline, got %v", p.Steps[4].At)
	}
	if p.Steps[2].At != nil {
		t.Fatalf("step without event must not carry a timestamp")
	}
}

func TestProject_Idempotent(t *testing.T) {
	b := &booking.Booking{
		Status:   booking.StatusConfirmed,
		Timeline: []booking.TimelineEntry{{Step: 3, At: time.Now()}},
	}
	first := Project(b)
	second := Project(b)
	if first.StepIndex != second.StepIndex || first.Progress != second.Progress {
		t.Fatalf("projection not idempotent: %+v vs %+v", first, second)
	}
}
