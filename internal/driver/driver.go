package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
	"github.com/jpalmerr/redux"
)

// ErrStopped is returned by [Driver.Submit] once the driver has stopped.
var ErrStopped = errors.New("driver stopped")

// request carries one action to the owning goroutine.
type request[S, A any] struct {
	action A
	reply  chan response[S]
}

// response is the outcome of applying one action.
type response[S any] struct {
	state S
	err   error
}

// Driver serializes dispatches to a [redux.Store] through one goroutine.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use, as is
// Submit. Once a store is handed to a Driver, no other goroutine may touch it.
type Driver[S, A any] struct {
	store    *redux.Store[S, A]
	requests chan request[S, A]
	done     chan struct{}
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// New creates a [Driver] for store.
//
// queueSize bounds how many submitted actions may wait before Submit blocks.
// Values below 1 are treated as 1. If logger is nil, [slog.Default] is used.
//
// The driver must be started with [Driver.Start] and stopped with [Driver.Stop].
func New[S, A any](store *redux.Store[S, A], queueSize int, logger *slog.Logger) *Driver[S, A] {
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver[S, A]{
		store:    store,
		requests: make(chan request[S, A], queueSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Start begins applying submitted actions in a background goroutine.
//
// Start is non-blocking. The loop runs until [Driver.Stop] is called or ctx
// is cancelled. If ctx is nil, context.Background() is used.
// Start is idempotent; if Stop was called before Start, Start is a no-op.
func (d *Driver[S, A]) Start(ctx context.Context) {
	d.mu.Lock()
	if d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer d.closeOnce.Do(func() { close(d.done) })

		for {
			select {
			case <-runCtx.Done():
				return
			case req := <-d.requests:
				state, err := d.apply(req.action)
				req.reply <- response[S]{state: state, err: err}
			}
		}
	}()
}

// Stop halts the driver and waits for the loop to exit.
//
// Actions still queued are not applied; their submitters receive
// [ErrStopped]. Stop is idempotent and safe to call before Start.
func (d *Driver[S, A]) Stop() {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		if d.cancel != nil {
			d.cancel()
		}
	}
	d.mu.Unlock()

	d.wg.Wait()

	// ensure done is closed even if Start() was never called
	d.closeOnce.Do(func() { close(d.done) })
}

// Done returns a channel that is closed once the driver has stopped.
func (d *Driver[S, A]) Done() <-chan struct{} {
	return d.done
}

// Submit queues action and waits until it has been applied.
//
// It returns the state immediately after the action's dispatch, including
// all subscriber notifications. If ctx is cancelled after the action was
// queued, the action may still be applied.
func (d *Driver[S, A]) Submit(ctx context.Context, action A) (S, error) {
	var zero S
	req := request[S, A]{action: action, reply: make(chan response[S], 1)}

	select {
	case <-d.done:
		return zero, ErrStopped
	default:
	}

	select {
	case d.requests <- req:
	case <-d.done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.state, resp.err
	case <-d.done:
		// the loop may have replied just before exiting
		select {
		case resp := <-req.reply:
			return resp.state, resp.err
		default:
			return zero, ErrStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// apply dispatches action with panic recovery.
// A panic is logged with a correlation ID and returned as an error together
// with whatever state the store holds afterwards.
func (d *Driver[S, A]) apply(action A) (state S, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			stack := debug.Stack()

			d.logger.Error("dispatch panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(stack),
			)

			state = d.store.State()
			if panicErr, ok := r.(error); ok {
				err = fmt.Errorf("dispatch panic (correlation_id: %s): %w", correlationID, panicErr)
			} else {
				err = fmt.Errorf("dispatch panic (correlation_id: %s): %v", correlationID, r)
			}
		}
	}()

	d.store.Dispatch(action)
	return d.store.State(), nil
}
