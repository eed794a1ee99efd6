package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Veraticus/opencode-reminder/pkg/config"
	"github.com/Veraticus/opencode-reminder/pkg/interfaces"
	"github.com/Veraticus/opencode-reminder/pkg/notification"
	"github.com/Veraticus/opencode-reminder/pkg/opencode"
	"github.com/Veraticus/opencode-reminder/pkg/process"
	"github.com/Veraticus/opencode-reminder/pkg/reminder"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config              *config.Config
	Logger              *zap.Logger
	Client              *opencode.Client
	Stream              *opencode.EventStream
	Router              *opencode.Router
	Notifier            notification.Notifier
	RateLimiter         interfaces.RateLimiter
	NotificationManager *notification.Manager
	Reminder            *reminder.Reminder
	ProcessManager      interfaces.ProcessWrapper
}

// NewDependencies wires everything needed to follow the opencode server at
// serverURL. With wrapped set a process manager for launching opencode is
// created as well. Quiet mode builds no reminder at all.
func NewDependencies(cfg *config.Config, serverURL string, wrapped bool, logger *zap.Logger) (*Dependencies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Client: opencode.NewClient(serverURL),
		Router: opencode.NewRouter(),
	}

	deps.Stream = opencode.NewEventStream(deps.Client, opencode.StreamOptions{
		InitialInterval: cfg.Reconnect.InitialInterval,
		MaxInterval:     cfg.Reconnect.MaxInterval,
	}, logger.Named("stream"))

	deps.Router.Subscribe(opencode.EventServerConnected, opencode.HandlerFunc(func(opencode.Event) {
		logger.Debug("opencode server connected", zap.String("server", serverURL))
	}))

	if !cfg.Quiet {
		notifier, err := notification.NewNotifier(cfg, deps.Client)
		if err != nil {
			return nil, fmt.Errorf("failed to create notifier: %w", err)
		}
		deps.Notifier = notifier

		if cfg.RateLimit.MaxMessages > 0 {
			refill := cfg.RateLimit.Window / time.Duration(cfg.RateLimit.MaxMessages)
			deps.RateLimiter = notification.NewTokenBucketRateLimiter(cfg.RateLimit.MaxMessages, refill)
		}

		deps.NotificationManager = notification.NewManager(deps.Notifier, deps.RateLimiter, logger.Named("notification"))
		deps.Reminder = reminder.New(reminder.SettingsFromConfig(cfg), deps.NotificationManager, interfaces.SystemClock{}, logger.Named("reminder"))
		deps.Reminder.Register(deps.Router)
	}

	if wrapped {
		deps.ProcessManager = process.NewManager(logger.Named("process"))
	}

	return deps, nil
}

// Close waits for pending reminders and releases the notifier
func (d *Dependencies) Close() {
	if d.NotificationManager != nil {
		if err := d.NotificationManager.Close(); err != nil {
			d.Logger.Warn("failed to close notifier", zap.Error(err))
		}
		return
	}

	if closer, ok := d.Notifier.(io.Closer); ok {
		_ = closer.Close()
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run follows the event stream. With an empty command it runs until ctx is
// cancelled; otherwise it launches the command and follows the stream until
// the command exits.
func (a *Application) Run(ctx context.Context, command string, args []string) error {
	if command == "" {
		return a.follow(ctx)
	}

	if a.deps.ProcessManager == nil {
		return fmt.Errorf("no process manager configured")
	}

	if err := a.deps.ProcessManager.Start(command, args); err != nil {
		return err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	streamDone := make(chan error, 1)
	go func() {
		streamDone <- a.follow(streamCtx)
	}()

	err := a.deps.ProcessManager.Wait()

	cancel()
	if streamErr := <-streamDone; streamErr != nil {
		a.deps.Logger.Warn("event stream stopped", zap.Error(streamErr))
	}

	return err
}

func (a *Application) follow(ctx context.Context) error {
	err := a.deps.Stream.Run(ctx, a.deps.Router.Dispatch)

	if a.deps.Reminder != nil {
		stats := a.deps.Reminder.Stats()
		a.deps.Logger.Info("reminder stats",
			zap.Int("idle", stats.Idle),
			zap.Int("fired", stats.Fired),
			zap.Int("suppressed", stats.Suppressed))
	}

	return err
}

// Stop restores the terminal and stops the wrapped process, if any
func (a *Application) Stop() error {
	if a.deps.ProcessManager == nil {
		return nil
	}
	return a.deps.ProcessManager.Stop()
}

// ExitCode returns the exit code of the wrapped process
func (a *Application) ExitCode() int {
	if a.deps.ProcessManager == nil {
		return 0
	}
	return a.deps.ProcessManager.ExitCode()
}
