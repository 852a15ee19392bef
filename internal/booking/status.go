package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the coarse five-value lifecycle state. It is the fallback
// projection source: once a booking carries an explicit timeline, the
// timeline wins.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// TimelineEntry marks one lifecycle milestone. Step is 1-indexed against
// StepLabels.
type TimelineEntry struct {
	Step  int       `json:"step"`
	Label string    `json:"label"`
	At    time.Time `json:"at"`
	Note  string    `json:"note,omitempty"`
}

// StepCount is the fixed length of the progress scale.
const StepCount = 7

// StepLabels is the fixed, ordinal step vocabulary.
var StepLabels = [StepCount]string{
	"Requested",
	"Details Confirmed",
	"Quoted",
	"Advance Paid",
	"Work Started",
	"In Review",
	"Delivered",
}

// ParseTimeline decodes a stored timeline. Unlike the loose JSON-in-notes
// shape this replaces, decode failures are surfaced, not swallowed into
// an empty timeline.
func ParseTimeline(raw []byte) ([]TimelineEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []TimelineEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("malformed timeline: %w", err)
	}
	return entries, nil
}

// StepIndex derives the zero-based display step in [0, StepCount-1].
//
// Priority order:
//  1. A non-empty timeline: the last entry's step, clamped to [1,7],
//     minus one. The most recent explicit event is trusted as-is.
//  2. The coarse status mapped onto the scale; unknown values render as
//     the first step.
func StepIndex(status Status, timeline []TimelineEntry) int {
	if len(timeline) > 0 {
		step := timeline[len(timeline)-1].Step
		if step < 1 {
			step = 1
		}
		if step > StepCount {
			step = StepCount
		}
		return step - 1
	}

	switch status {
	case StatusConfirmed:
		return 2
	case StatusInProgress:
		return 4
	case StatusCompleted:
		return 6
	default:
		// pending, cancelled, anything unexpected
		return 0
	}
}

// ProgressPercent maps a step index onto [0,100]. Pure function of the
// index, no hidden state.
func ProgressPercent(index int) int {
	if index < 0 {
		index = 0
	}
	if index > StepCount-1 {
		index = StepCount - 1
	}
	return int(float64(index)/float64(StepCount-1)*100 + 0.5)
}
