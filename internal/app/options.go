package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jpalmerr/redux/counter"
)

// serviceConfig holds mutable state during Service construction.
type serviceConfig struct {
	title          string
	port           int
	initial        int
	script         []counter.Action
	stepInterval   time.Duration
	queueSize      int
	logger         *slog.Logger
	stateCallbacks []func(counter.Tally)
}

// Option is a function that configures a [Service] during construction.
//
// Options return an error if validation fails.
type Option func(*serviceConfig) error

// WithTitle sets the service title shown on the index page.
func WithTitle(title string) Option {
	return func(cfg *serviceConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPort sets the HTTP port. Port 0 picks a free port.
//
// Returns an error if the port is outside the range 0-65535.
func WithPort(port int) Option {
	return func(cfg *serviceConfig) error {
		if port < 0 || port > 65535 {
			return errors.New("port must be between 0 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithInitialState sets the counter's starting value. Defaults to 0.
func WithInitialState(n int) Option {
	return func(cfg *serviceConfig) error {
		cfg.initial = n
		return nil
	}
}

// WithScript appends actions to play after start, one per step interval.
//
// Returns an error if any action is invalid.
func WithScript(actions ...counter.Action) Option {
	return func(cfg *serviceConfig) error {
		for _, a := range actions {
			if err := a.Validate(); err != nil {
				return err
			}
		}
		cfg.script = append(cfg.script, actions...)
		return nil
	}
}

// WithStepInterval sets the delay between scripted actions.
//
// Defaults to 1 second. Returns an error if the duration is zero or negative.
func WithStepInterval(d time.Duration) Option {
	return func(cfg *serviceConfig) error {
		if d <= 0 {
			return errors.New("step interval must be positive")
		}
		cfg.stepInterval = d
		return nil
	}
}

// WithQueueSize sets how many actions may wait for the driver goroutine.
//
// Defaults to 64. Returns an error if the value is zero or negative.
func WithQueueSize(n int) Option {
	return func(cfg *serviceConfig) error {
		if n <= 0 {
			return errors.New("queue size must be positive")
		}
		cfg.queueSize = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStateCallback registers a store subscriber that runs after every dispatch.
//
// Callbacks run on the driver goroutine in registration order and must not
// block. A panicking callback fails the dispatch that triggered it; the
// service keeps running. Nil callbacks are silently ignored.
func WithStateCallback(cb func(counter.Tally)) Option {
	return func(cfg *serviceConfig) error {
		if cb == nil {
			return nil
		}
		cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		return nil
	}
}
