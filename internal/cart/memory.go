package cart

import (
	"context"
	"sync"
)

// MemoryStore keeps carts in process memory. Good enough for a single
// instance and for tests; Redis takes over in multi-instance setups.
type MemoryStore struct {
	carts sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context, owner string) (*Cart, error) {
	val, ok := s.carts.Load(owner)
	if !ok {
		return &Cart{}, nil
	}
	stored := val.(*Cart)
	// Copy out so callers can mutate freely before Save.
	out := &Cart{Items: append([]Item(nil), stored.Items...)}
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, owner string, c *Cart) error {
	s.carts.Store(owner, &Cart{Items: append([]Item(nil), c.Items...)})
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, owner string) error {
	s.carts.Delete(owner)
	return nil
}
