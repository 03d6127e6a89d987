package redux

import (
	"errors"
	"log/slog"
)

const defaultName = "store"

// ErrReentrantDispatch is the panic value raised when [Store.Dispatch] is
// called while the same store is already dispatching, i.e. from inside its
// reducer or one of its subscribers.
//
// Recover it with errors.Is:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        if err, ok := r.(error); ok && errors.Is(err, redux.ErrReentrantDispatch) {
//	            // ...
//	        }
//	    }
//	}()
var ErrReentrantDispatch = errors.New("redux: dispatch called during dispatch")

// Store holds a single state value that changes only through [Store.Dispatch].
//
// Store is created with [New] or [NewFunc]. The reducer and the initial state
// are bound at construction and the reducer cannot be replaced afterwards.
//
// A Store must be driven by one goroutine at a time. It performs no locking.
type Store[S, A any] struct {
	reducer     Reducer[S, A]
	state       S
	subscribers []Subscriber[S]
	dispatching bool

	name   string
	logger *slog.Logger
}

// New creates a [Store] with the given reducer and initial state.
//
// No subscriber is notified on creation. New panics if reducer is nil.
//
// Example:
//
//	store := redux.New(redux.ReducerFunc[int, Action](reduce), 0)
func New[S, A any](reducer Reducer[S, A], defaultState S, opts ...Option) *Store[S, A] {
	if reducer == nil {
		panic("redux: nil reducer")
	}

	cfg := &storeConfig{name: defaultName}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store[S, A]{
		reducer: reducer,
		state:   defaultState,
		name:    cfg.name,
		logger:  logger,
	}
}

// NewFunc creates a [Store] from a plain reducer function.
//
// It is equivalent to New(ReducerFunc[S, A](fn), defaultState, opts...) but
// lets the compiler infer S and A. NewFunc panics if fn is nil.
func NewFunc[S, A any](fn func(S, A) S, defaultState S, opts ...Option) *Store[S, A] {
	if fn == nil {
		panic("redux: nil reducer")
	}
	return New[S, A](ReducerFunc[S, A](fn), defaultState, opts...)
}

// Dispatch applies action to the current state and notifies subscribers.
//
// The sequence is:
//  1. compute the next state with the reducer
//  2. replace the stored state
//  3. call every subscriber, in registration order, with the new state
//
// Subscribers registered while notification is running are first called on
// the next dispatch. Panics from the reducer or a subscriber are not
// recovered. Calling Dispatch from a reducer or subscriber of the same store
// panics with [ErrReentrantDispatch].
func (s *Store[S, A]) Dispatch(action A) {
	if s.dispatching {
		s.logger.Error("reentrant dispatch rejected", "store", s.name)
		panic(ErrReentrantDispatch)
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()

	s.state = s.reducer.Reduce(s.state, action)

	// fixed length: subscribers appended during notification wait for the next dispatch
	subscribers := s.subscribers[:len(s.subscribers):len(s.subscribers)]
	for _, sub := range subscribers {
		sub(s.state)
	}

	s.logger.Debug("action dispatched", "store", s.name, "subscribers", len(subscribers))
}

// Subscribe appends fn to the list of subscribers.
//
// fn is called after every subsequent dispatch. There is no way to remove a
// subscriber. A nil fn is ignored.
func (s *Store[S, A]) Subscribe(fn Subscriber[S]) {
	if fn == nil {
		return
	}
	s.subscribers = append(s.subscribers, fn)
}

// State returns the current state.
//
// Before any dispatch this is the state passed to [New].
func (s *Store[S, A]) State() S {
	return s.state
}
