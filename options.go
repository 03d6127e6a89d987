package redux

import "log/slog"

// storeConfig holds optional settings during Store construction.
type storeConfig struct {
	name   string
	logger *slog.Logger
}

// Option configures a [Store] during construction.
//
// Options cannot fail: store construction always succeeds. Invalid values
// (a nil logger, an empty name) are ignored and the default is kept.
type Option func(*storeConfig)

// WithLogger sets the [slog.Logger] used for dispatch diagnostics.
//
// The store logs one Debug record per dispatch. If not specified,
// [slog.Default] is used. A nil logger is ignored.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	store := redux.New(reducer, 0, redux.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			return
		}
		cfg.logger = logger
	}
}

// WithName sets the name attached to the store's log records.
//
// Useful when a program runs several stores. Defaults to "store".
func WithName(name string) Option {
	return func(cfg *storeConfig) {
		if name == "" {
			return
		}
		cfg.name = name
	}
}
