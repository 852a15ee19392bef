package booking

import (
	"context"
	"strings"
	"sync"
	"time"

	"marketplace/internal/cart"
)

// MemoryStore is an in-process Store used by handler tests and local
// experiments. Semantics mirror the Postgres repository.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]*Booking)}
}

func copyBooking(b *Booking) *Booking {
	out := *b
	out.CartItems = append([]cart.Item(nil), b.CartItems...)
	out.Attachments = append([]Attachment(nil), b.Attachments...)
	out.Timeline = append([]TimelineEntry(nil), b.Timeline...)
	return &out
}

func (s *MemoryStore) Create(ctx context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Attachments == nil {
		b.Attachments = []Attachment{}
	}
	s.bookings[b.ID] = copyBooking(b)
	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *MemoryStore) GetForUser(ctx context.Context, id, userID string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok || b.UserID == nil || *b.UserID != userID {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *MemoryStore) GetForEmail(ctx context.Context, id, email string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !strings.EqualFold(b.Email, email) && !strings.EqualFold(b.CustomerEmail, email) {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *copyBooking(b))
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) AppendTimeline(ctx context.Context, id string, entry TimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Timeline = append(b.Timeline, entry)
	b.UpdatedAt = time.Now()
	return nil
}
