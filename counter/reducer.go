package counter

import "github.com/jpalmerr/redux"

// Reduce returns the counter value after applying a.
//
// Actions with an unknown kind leave the state unchanged.
func Reduce(state int, a Action) int {
	switch a.Kind {
	case KindIncrement:
		return state + a.Amount
	case KindDecrement:
		return state - a.Amount
	default:
		return state
	}
}

// Reducer is [Reduce] as a [redux.Reducer].
var Reducer redux.Reducer[int, Action] = redux.ReducerFunc[int, Action](Reduce)

// NewStore creates a counter store starting at initial.
func NewStore(initial int, opts ...redux.Option) *redux.Store[int, Action] {
	return redux.New(Reducer, initial, opts...)
}

// Tally is a counter value together with how it was reached.
//
// It is the state type used by the counter service: subscribers see not only
// the new value but also the dispatch sequence number and the action that
// produced it.
type Tally struct {
	Value int    `json:"value"`
	Seq   uint64 `json:"seq"`
	Last  Action `json:"last"`
}

// ReduceTally applies a to t.Value and records a as the last action.
func ReduceTally(t Tally, a Action) Tally {
	return Tally{
		Value: Reduce(t.Value, a),
		Seq:   t.Seq + 1,
		Last:  a,
	}
}

// NewTallyStore creates a tally store whose value starts at initial.
func NewTallyStore(initial int, opts ...redux.Option) *redux.Store[Tally, Action] {
	return redux.NewFunc(ReduceTally, Tally{Value: initial}, opts...)
}
