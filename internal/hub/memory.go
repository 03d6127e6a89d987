package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// subscriberBuffer is the channel buffer size for each subscriber.
const subscriberBuffer = 100

// MemoryHub is an in-memory implementation of [Hub].
//
// Subscribers receive snapshots via buffered channels. Sends are
// non-blocking; if a subscriber's buffer is full, the snapshot is dropped
// for that subscriber so the publisher never blocks.
type MemoryHub struct {
	mu     sync.RWMutex
	latest Snapshot

	subscribers map[chan Snapshot]struct{}
	subMu       sync.RWMutex
}

// NewMemoryHub creates a hub whose latest snapshot is the initial state.
func NewMemoryHub(initial int) *MemoryHub {
	return &MemoryHub{
		latest:      NewSnapshot(0, initial, ""),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// NewSnapshot builds a [Snapshot] with a fresh ID and the current time.
func NewSnapshot(seq uint64, state int, action string) Snapshot {
	return Snapshot{
		ID:     uuid.NewString(),
		Seq:    seq,
		State:  state,
		Action: action,
		At:     time.Now(),
	}
}

// Publish stores snapshot as the latest and notifies all subscribers.
func (h *MemoryHub) Publish(snapshot Snapshot) {
	h.mu.Lock()
	h.latest = snapshot
	h.mu.Unlock()

	h.notifySubscribers(snapshot)
}

// Latest returns the most recently published snapshot.
func (h *MemoryHub) Latest() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Subscribe creates a new subscription and returns a channel for receiving snapshots.
//
// Caller must call [MemoryHub.Unsubscribe] when done to prevent resource leaks.
func (h *MemoryHub) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	h.subMu.Lock()
	h.subscribers[ch] = struct{}{}
	h.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (h *MemoryHub) Unsubscribe(ch <-chan Snapshot) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			delete(h.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends the snapshot to all active subscribers without blocking.
func (h *MemoryHub) notifySubscribers(snapshot Snapshot) {
	h.subMu.RLock()
	defer h.subMu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- snapshot:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}
