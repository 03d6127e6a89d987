package hub

import (
	"github.com/jpalmerr/redux"
	"github.com/jpalmerr/redux/counter"
)

// Subscriber returns a store subscriber that publishes every new tally to h.
//
// It runs on the goroutine that owns the store; Publish never blocks.
func Subscriber(h Hub) redux.Subscriber[counter.Tally] {
	return func(t counter.Tally) {
		h.Publish(NewSnapshot(t.Seq, t.Value, t.Last.String()))
	}
}
