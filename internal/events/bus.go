// Package events provides in-process change notifications keyed by
// booking id. Consumers re-read the row on every tick; ticks are
// coalesced, so there is no ordering or exactly-once guarantee beyond
// "eventually reflects the latest row".
package events

import "sync"

type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in one booking id. The returned channel
// receives a tick after every Notify for that id; the cancel func must be
// called when the consumer is done.
func (b *Bus) Subscribe(bookingID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	set, ok := b.subs[bookingID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		b.subs[bookingID] = set
	}
	set[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[bookingID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, bookingID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Notify wakes every subscriber of the booking id. Sends never block: a
// subscriber that already has a pending tick keeps exactly one.
func (b *Bus) Notify(bookingID string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[bookingID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
