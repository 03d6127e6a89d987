package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/redux"
	"github.com/jpalmerr/redux/counter"
	"github.com/jpalmerr/redux/internal/driver"
	"github.com/jpalmerr/redux/internal/hub"
	"github.com/jpalmerr/redux/internal/server"
)

const (
	defaultPort         = 8080
	defaultStepInterval = time.Second
	defaultQueueSize    = 64
)

// Service runs a counter store behind an HTTP API.
//
// The typical lifecycle is:
//
//	svc, err := app.New(app.WithPort(9090), app.WithScript(counter.Increment(1)))
//	if err != nil {
//	    slog.Error("failed to create service", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	svc.Start(ctx) // blocks until ctx cancelled
type Service struct {
	title          string
	port           int
	initial        int
	script         []counter.Action
	stepInterval   time.Duration
	queueSize      int
	logger         *slog.Logger
	stateCallbacks []func(counter.Tally)

	mu   sync.Mutex
	addr string
}

// New creates a [Service] with the given options.
//
// Defaults: port 8080, initial state 0, step interval 1s, no script.
// Returns an error if any option is invalid.
func New(opts ...Option) (*Service, error) {
	cfg := &serviceConfig{
		port:         defaultPort,
		stepInterval: defaultStepInterval,
		queueSize:    defaultQueueSize,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		title:          cfg.title,
		port:           cfg.port,
		initial:        cfg.initial,
		script:         cfg.script,
		stepInterval:   cfg.stepInterval,
		queueSize:      cfg.queueSize,
		logger:         logger,
		stateCallbacks: cfg.stateCallbacks,
	}, nil
}

// Start runs the service until ctx is cancelled.
//
// Start wires the store, driver, hub and HTTP server, plays the script,
// and blocks. Returns nil on graceful shutdown, or an error if the HTTP
// server fails to start.
func (s *Service) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	store := counter.NewTallyStore(s.initial, redux.WithLogger(s.logger), redux.WithName("counter"))

	// hub first so HTTP readers see every state, then user callbacks
	statusHub := hub.NewMemoryHub(s.initial)
	store.Subscribe(hub.Subscriber(statusHub))
	for _, cb := range s.stateCallbacks {
		store.Subscribe(cb)
	}

	d := driver.New(store, s.queueSize, s.logger)
	d.Start(ctx)

	httpServer := server.NewServer(statusHub, d, s.port, s.title, s.logger)
	addr, err := httpServer.Start(ctx)
	if err != nil {
		d.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	s.setAddr(addr.String())

	s.logger.Info("counter service started",
		"addr", addr.String(),
		"initial", s.initial,
		"script_length", len(s.script),
	)

	var wg sync.WaitGroup
	if len(s.script) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.playScript(ctx, d)
		}()
	}

	<-ctx.Done()
	wg.Wait()
	d.Stop()
	s.logger.Info("counter service stopped")
	return nil
}

// Addr returns the address the HTTP server is bound to, or "" before Start.
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Service) setAddr(addr string) {
	s.mu.Lock()
	s.addr = addr
	s.mu.Unlock()
}

// Port returns the configured HTTP port.
func (s *Service) Port() int {
	return s.port
}

// StepInterval returns the delay between scripted actions.
func (s *Service) StepInterval() time.Duration {
	return s.stepInterval
}

// playScript submits each scripted action, the first immediately and the
// rest one per step interval. Failed actions are logged and skipped.
func (s *Service) playScript(ctx context.Context, d *driver.Driver[counter.Tally, counter.Action]) {
	ticker := time.NewTicker(s.stepInterval)
	defer ticker.Stop()

	for i, action := range s.script {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}

		tally, err := d.Submit(ctx, action)
		if err != nil {
			if errors.Is(err, driver.ErrStopped) || ctx.Err() != nil {
				return
			}
			s.logger.Warn("scripted action failed", "step", i, "action", action.String(), "error", err)
			continue
		}
		s.logger.Debug("scripted action applied", "step", i, "action", action.String(), "state", tally.Value)
	}

	s.logger.Info("script finished", "steps", len(s.script))
}
