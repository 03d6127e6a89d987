// Package hub fans out counter state snapshots to concurrent readers.
//
// The counter store itself is owned by a single goroutine. A store
// subscriber publishes each new state to a [MemoryHub], which HTTP handlers
// read from any goroutine:
//
//   - [Hub]: Interface defining publish, snapshot, and subscription operations
//   - [MemoryHub]: In-memory implementation of Hub with pub/sub
//   - [Snapshot]: One published state, with its sequence number and cause
//
// Subscribers receive updates via channels with non-blocking sends (slow
// subscribers will miss updates rather than block the store's goroutine).
package hub
