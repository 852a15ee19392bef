// Package audit records operator actions for after-the-fact review.
package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Action string

const (
	ActionBookingStatusChanged Action = "BOOKING_STATUS_CHANGED"
	ActionTimelineAppended     Action = "TIMELINE_APPENDED"
	ActionUserRoleChanged      Action = "USER_ROLE_CHANGED"
	ActionUserActiveChanged    Action = "USER_ACTIVE_CHANGED"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert writes one audit row. subjectID is the booking or user the
// action touched; actor is the admin's user id.
func (r *Repository) Insert(ctx context.Context, action Action, subjectID, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (action, subject_id, actor, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	_, err := r.db.Exec(ctx, q, string(action), subjectID, actor, s)
	return err
}
