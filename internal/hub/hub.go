package hub

import "time"

// Snapshot is one published counter state.
//
// Snapshot is the wire representation used by the REST API and SSE stream.
type Snapshot struct {
	// ID uniquely identifies this snapshot. It is used as the SSE event id.
	ID string `json:"id"`

	// Seq is the number of dispatches applied to produce State.
	// The initial snapshot has Seq 0.
	Seq uint64 `json:"seq"`

	// State is the counter value after the dispatch.
	State int `json:"state"`

	// Action is the shorthand form of the action that produced State.
	// Empty for the initial snapshot.
	Action string `json:"action,omitempty"`

	// At is when the snapshot was published.
	At time.Time `json:"at"`
}

// Hub defines the interface for publishing and subscribing to snapshots.
//
// Hub implementations must be safe for concurrent access.
type Hub interface {
	// Publish records snapshot as the latest and notifies all subscribers.
	Publish(snapshot Snapshot)

	// Latest returns the most recently published snapshot.
	Latest() Snapshot

	// Subscribe returns a channel that receives published snapshots.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
