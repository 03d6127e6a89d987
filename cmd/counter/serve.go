package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/redux/config"
	"github.com/jpalmerr/redux/internal/app"
	"github.com/spf13/cobra"
)

const (
	shutdownTimeout = 10 * time.Second
)

// serveCmd starts the counter HTTP service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the counter over HTTP",
	Long: `Start the counter service.

The server will:
  - Load configuration from the given YAML file, or use defaults
  - Play the configured action script, one action per step interval
  - Accept actions on POST /api/dispatch
  - Stream every new state on GET /api/sse

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  counter serve
  counter serve -c counter.yaml
  COUNTER_PORT=9090 counter serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file")
}

// loadConfig reads the file named by the --config flag, or the defaults
// when the flag is empty.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return config.Default()
	}
	return config.Load(configFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := cfg.Logger(os.Stderr)

	logger.Info("config loaded",
		"initial", cfg.Initial,
		"actions", len(cfg.Actions),
	)
	logger.Info("starting server",
		"port", cfg.Port,
		"step_interval", cfg.StepInterval.Duration().String(),
	)

	opts := append(config.BuildOptions(cfg), app.WithLogger(logger))
	svc, err := app.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
