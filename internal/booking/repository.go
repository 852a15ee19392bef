package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `
id, user_id, full_name, phone, COALESCE(email,''), COALESCE(customer_email,''), COALESCE(whatsapp_number,''),
service_id, service_title, COALESCE(service_price::text,''), COALESCE(provider_name,''),
requirements, COALESCE(budget_range,''), COALESCE(delivery_preference,''), COALESCE(additional_notes,''),
cart_items, attachments, timeline, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var cartRaw, attachRaw, timelineRaw []byte
	if err := row.Scan(
		&b.ID, &b.UserID, &b.FullName, &b.Phone, &b.Email, &b.CustomerEmail, &b.WhatsappNumber,
		&b.ServiceID, &b.ServiceTitle, &b.ServicePrice, &b.ProviderName,
		&b.Requirements, &b.BudgetRange, &b.DeliveryPreference, &b.AdditionalNotes,
		&cartRaw, &attachRaw, &timelineRaw, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(cartRaw) > 0 {
		if err := json.Unmarshal(cartRaw, &b.CartItems); err != nil {
			return nil, fmt.Errorf("decode cart snapshot: %w", err)
		}
	}
	if len(attachRaw) > 0 {
		if err := json.Unmarshal(attachRaw, &b.Attachments); err != nil {
			return nil, fmt.Errorf("decode attachments: %w", err)
		}
	}
	tl, err := ParseTimeline(timelineRaw)
	if err != nil {
		return nil, err
	}
	b.Timeline = tl
	if b.Attachments == nil {
		b.Attachments = []Attachment{}
	}
	return &b, nil
}

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	cartRaw, err := json.Marshal(b.CartItems)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	attachRaw, err := json.Marshal(b.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	const q = `
INSERT INTO bookings (
	id, user_id, full_name, phone, email, customer_email, whatsapp_number,
	service_id, service_title, service_price, provider_name,
	requirements, budget_range, delivery_preference, additional_notes,
	cart_items, attachments, timeline, status
) VALUES (
	$1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''), NULLIF($7,''),
	$8, $9, NULLIF($10,'')::numeric, NULLIF($11,''),
	$12, NULLIF($13,''), NULLIF($14,''), NULLIF($15,''),
	CAST($16 AS jsonb), CAST($17 AS jsonb), NULL, $18
)
RETURNING created_at, updated_at
`
	if err := r.db.QueryRow(ctx, q,
		b.ID, b.UserID, b.FullName, b.Phone, b.Email, b.CustomerEmail, b.WhatsappNumber,
		b.ServiceID, b.ServiceTitle, b.ServicePrice, b.ProviderName,
		b.Requirements, b.BudgetRange, b.DeliveryPreference, b.AdditionalNotes,
		string(cartRaw), string(attachRaw), string(b.Status),
	).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) GetForUser(ctx context.Context, id, userID string) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND user_id = $2`
	return scanBooking(r.db.QueryRow(ctx, q, id, userID))
}

func (r *Repository) GetForEmail(ctx context.Context, id, email string) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings
WHERE id = $1 AND (lower(email) = lower($2) OR lower(customer_email) = lower($2))`
	return scanBooking(r.db.QueryRow(ctx, q, id, email))
}

func (r *Repository) List(ctx context.Context) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	const q = `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, q, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) AppendTimeline(ctx context.Context, id string, entry TimelineEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode timeline entry: %w", err)
	}
	const q = `
UPDATE bookings
SET timeline = COALESCE(timeline, '[]'::jsonb) || CAST($1 AS jsonb), updated_at = NOW()
WHERE id = $2
`
	tag, err := r.db.Exec(ctx, q, string(raw), id)
	if err != nil {
		return fmt.Errorf("append timeline: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
