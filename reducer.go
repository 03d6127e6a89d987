package redux

// Reducer computes the next state from the current state and an action.
//
// Implementations must be pure: no side effects, and the result depends only
// on the arguments. The store holds exactly one Reducer for its lifetime.
type Reducer[S, A any] interface {
	Reduce(state S, action A) S
}

// ReducerFunc adapts an ordinary function to the [Reducer] interface.
type ReducerFunc[S, A any] func(state S, action A) S

// Reduce calls f(state, action).
func (f ReducerFunc[S, A]) Reduce(state S, action A) S {
	return f(state, action)
}

// Subscriber is invoked with the new state after every dispatch.
//
// The state is passed by value. Subscribers that receive reference types
// (maps, slices, pointers) must treat them as read-only.
type Subscriber[S any] func(state S)

// Fold applies reducer to each action in order, starting from initial, and
// returns the resulting state.
//
// A store constructed with the same reducer and initial state holds exactly
// Fold(reducer, initial, actions...) after dispatching the same actions.
func Fold[S, A any](reducer Reducer[S, A], initial S, actions ...A) S {
	state := initial
	for _, action := range actions {
		state = reducer.Reduce(state, action)
	}
	return state
}
