// Package redux provides a minimal unidirectional state container.
//
// A [Store] owns a single state value that changes only when an action is
// dispatched through it. Each dispatch runs the store's [Reducer] to compute
// the next state, replaces the stored value, and then synchronously notifies
// every [Subscriber] in registration order.
//
// # Quick Start
//
//	type Action struct{ Delta int }
//
//	store := redux.NewFunc(func(state int, a Action) int {
//	    return state + a.Delta
//	}, 0)
//
//	store.Subscribe(func(state int) {
//	    fmt.Println("state:", state)
//	})
//
//	store.Dispatch(Action{Delta: 1})  // prints "state: 1"
//	store.Dispatch(Action{Delta: -2}) // prints "state: -1"
//
//	fmt.Println(store.State()) // -1
//
// # Reducers
//
// Reducers implement [Reducer], a single-method strategy interface. Plain
// functions are adapted with [ReducerFunc] (or passed to [NewFunc]). The
// reducer is fixed when the store is constructed and cannot be replaced.
// Reducers are expected to be pure: the next state must depend only on the
// current state and the action. This is not enforced.
//
// # Ownership and Reentrancy
//
// A Store is owned by a single goroutine and is not safe for concurrent use.
// Programs with several producers should funnel actions through one owning
// goroutine.
//
// Calling [Store.Dispatch] from inside a reducer or subscriber of the same
// store panics with [ErrReentrantDispatch]. [Store.State] and
// [Store.Subscribe] may be called from subscribers.
//
// # Failures
//
// The store does not recover panics raised by reducers or subscribers; they
// propagate to the caller of [Store.Dispatch]. A panicking reducer leaves the
// state unchanged. A panicking subscriber stops notification of the
// subscribers registered after it, but the state has already been replaced.
package redux
