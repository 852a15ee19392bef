package order

import (
	"time"

	"marketplace/internal/booking"
)

// Step is one rung of the 7-step progress view.
type Step struct {
	Step    int        `json:"step"`
	Label   string     `json:"label"`
	Reached bool       `json:"reached"`
	At      *time.Time `json:"at,omitempty"`
}

// Projection is the read model rendered to the requester: the booking
// plus its derived progress. Re-computing it is idempotent; there is no
// state beyond the booking row.
type Projection struct {
	Booking   *booking.Booking `json:"booking"`
	Steps     []Step           `json:"steps"`
	StepIndex int              `json:"stepIndex"`
	Progress  int              `json:"progress"`
}

// Project derives the display projection from a booking row.
func Project(b *booking.Booking) Projection {
	index := booking.StepIndex(b.Status, b.Timeline)

	steps := make([]Step, booking.StepCount)
	for i := range steps {
		steps[i] = Step{
			Step:    i + 1,
			Label:   booking.StepLabels[i],
			Reached: i <= index,
		}
	}
	// Stamp steps that have an explicit timeline event; the latest entry
	// per step wins.
	for _, e := range b.Timeline {
		if e.Step >= 1 && e.Step <= booking.StepCount {
			at := e.At
			steps[e.Step-1].At = &at
		}
	}

	return Projection{
		Booking:   b,
		Steps:     steps,
		StepIndex: index,
		Progress:  booking.ProgressPercent(index),
	}
}
