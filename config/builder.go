package config

import (
	"github.com/jpalmerr/redux/internal/app"
)

// BuildOptions converts parsed configuration into service options.
//
// The logger is not included; callers add [app.WithLogger] themselves.
func BuildOptions(cfg *Config) []app.Option {
	opts := []app.Option{
		app.WithPort(cfg.Port),
		app.WithInitialState(cfg.Initial),
		app.WithStepInterval(cfg.StepInterval.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, app.WithTitle(cfg.Title))
	}

	if len(cfg.Actions) > 0 {
		opts = append(opts, app.WithScript(cfg.Actions...))
	}

	return opts
}
