package booking

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/cart"
)

// ErrNotFound covers both "no such booking" and "not visible to this
// caller"; the two cases are indistinguishable on the wire so existence
// never leaks to unauthorized callers.
var ErrNotFound = errors.New("booking not found")

// Attachment is one submitted file. Path is nil and Error set when the
// upload was rejected or the store failed; the booking still exists.
type Attachment struct {
	Name  string  `json:"name"`
	Path  *string `json:"path"`
	Size  int64   `json:"size"`
	Type  string  `json:"type"`
	Error string  `json:"error,omitempty"`
}

// Booking is the persisted order record. Service fields and the cart are
// denormalized snapshots taken at submission time, never re-derived from
// live catalog state.
type Booking struct {
	ID     string  `json:"id"`
	UserID *string `json:"userId,omitempty"`

	FullName       string `json:"fullName"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	CustomerEmail  string `json:"customerEmail,omitempty"` // legacy second email field on pre-auth rows
	WhatsappNumber string `json:"whatsappNumber,omitempty"`

	ServiceID    string `json:"serviceId"`
	ServiceTitle string `json:"serviceTitle"`
	ServicePrice string `json:"servicePrice,omitempty"`
	ProviderName string `json:"providerName,omitempty"`

	Requirements       string `json:"requirements"`
	BudgetRange        string `json:"budgetRange,omitempty"`
	DeliveryPreference string `json:"deliveryPreference,omitempty"`
	AdditionalNotes    string `json:"additionalNotes,omitempty"`

	CartItems   []cart.Item     `json:"cartItems,omitempty"`
	Attachments []Attachment    `json:"attachments"`
	Timeline    []TimelineEntry `json:"timeline,omitempty"`
	Status      Status          `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OwnsAttachment reports whether the given stored path belongs to this
// booking. Containment in the booking's own attachment list is the
// ownership check; there is no separate ACL.
func OwnsAttachment(b *Booking, path string) bool {
	if b == nil || path == "" {
		return false
	}
	for _, a := range b.Attachments {
		if a.Path != nil && *a.Path == path {
			return true
		}
	}
	return false
}

// Store persists bookings. Bookings are created exactly once by intake,
// mutated only by operator status/timeline updates, and never deleted.
type Store interface {
	Create(ctx context.Context, b *Booking) error

	// GetByID is the operator lookup, unscoped by ownership.
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetForUser returns the booking only when it is linked to userID.
	GetForUser(ctx context.Context, id, userID string) (*Booking, error)

	// GetForEmail matches anonymous and legacy rows by email equality
	// against either email-bearing field.
	GetForEmail(ctx context.Context, id, email string) (*Booking, error)

	List(ctx context.Context) ([]Booking, error)

	UpdateStatus(ctx context.Context, id string, status Status) error

	// AppendTimeline adds one milestone to the booking's timeline and
	// bumps updated_at.
	AppendTimeline(ctx context.Context, id string, entry TimelineEntry) error
}
