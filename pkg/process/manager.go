// Package process runs opencode under a pseudo terminal.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// WrappedEnv is set in the child's environment to stop it wrapping itself.
const WrappedEnv = "OPENCODE_REMINDER_WRAPPED"

// ErrAlreadyWrapped is returned by Start when running inside a wrapped process.
var ErrAlreadyWrapped = errors.New("already wrapped by opencode-reminder")

// Manager manages the wrapped opencode process
type Manager struct {
	ptyManager PTY
	logger     *zap.Logger
	stdin      io.Reader
	stdout     io.Writer
	exitCode   int
	mu         sync.Mutex
	sigChan    chan os.Signal
	done       chan struct{}
}

// NewManager creates a process manager attached to the real terminal
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newManager(NewPTYManager(logger), os.Stdin, os.Stdout, logger)
}

func newManager(ptyManager PTY, stdin io.Reader, stdout io.Writer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		ptyManager: ptyManager,
		logger:     logger,
		stdin:      stdin,
		stdout:     stdout,
		done:       make(chan struct{}),
	}
}

// Start starts the opencode process
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if os.Getenv(WrappedEnv) == "1" {
		return ErrAlreadyWrapped
	}

	env := append(os.Environ(), WrappedEnv+"=1")

	if err := m.ptyManager.Start(command, args, env); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	m.logger.Debug("started process", zap.String("command", command), zap.Strings("args", args))

	go func() {
		if err := m.ptyManager.CopyIO(m.stdin, m.stdout); err != nil {
			m.logger.Warn("I/O error", zap.Error(err))
		}
	}()

	m.setupSignalForwarding()

	return nil
}

// Wait waits for the process to exit
func (m *Manager) Wait() error {
	if m.ptyManager == nil {
		return fmt.Errorf("process not started")
	}

	err := m.ptyManager.Wait()

	m.mu.Lock()
	if state := m.ptyManager.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	m.mu.Unlock()

	// Leave the terminal usable for the caller
	_ = m.ptyManager.Stop()

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
	)

	go m.forwardSignals()
}

func (m *Manager) forwardSignals() {
	for {
		select {
		case sig := <-m.sigChan:
			if m.ptyManager == nil || m.ptyManager.Process() == nil {
				continue
			}
			if err := m.ptyManager.Process().Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
				m.logger.Warn("signal forward error", zap.Stringer("signal", sig), zap.Error(err))
			}
		case <-m.done:
			return
		}
	}
}

func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop restores the terminal and asks the process to exit
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptyManager == nil {
		return nil
	}

	_ = m.ptyManager.Stop()

	proc := m.ptyManager.Process()
	if proc == nil {
		return nil
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return proc.Kill()
	}

	return nil
}
