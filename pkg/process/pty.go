package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// PTYManager runs a command on a pseudo terminal sized like ours
type PTYManager struct {
	cmd         *exec.Cmd
	pty         *os.File
	logger      *zap.Logger
	mu          sync.Mutex
	stopChan    chan struct{}
	wg          sync.WaitGroup
	restoreFunc func()
}

// Ensure PTYManager implements PTY
var _ PTY = (*PTYManager)(nil)

// NewPTYManager creates a new PTY manager
func NewPTYManager(logger *zap.Logger) *PTYManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PTYManager{
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start starts a process with PTY
func (p *PTYManager) Start(command string, args []string, env []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return fmt.Errorf("process already started")
	}

	cmd := exec.Command(command, args...)
	cmd.Env = env

	f, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}
	p.cmd = cmd
	p.pty = f

	// Not every environment has a terminal to copy from
	if err := p.copyTerminalSize(); err != nil {
		p.logger.Debug("failed to copy terminal size", zap.Error(err))
	}

	p.wg.Add(1)
	go p.monitorTerminalSize()

	return nil
}

// Wait waits for the process to complete and releases the PTY
func (p *PTYManager) Wait() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()

	if cmd == nil {
		return fmt.Errorf("process not started")
	}

	err := cmd.Wait()

	close(p.stopChan)
	p.wg.Wait()

	p.mu.Lock()
	if p.pty != nil {
		_ = p.pty.Close()
	}
	p.mu.Unlock()

	return err
}

// ProcessState returns the process state
func (p *PTYManager) ProcessState() *os.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.ProcessState
}

// Process returns the underlying process
func (p *PTYManager) Process() *os.Process {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil {
		return nil
	}
	return p.cmd.Process
}

// Stop restores the terminal state
func (p *PTYManager) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.restoreFunc != nil {
		p.restoreFunc()
		p.restoreFunc = nil
	}

	return nil
}

// copyTerminalSize copies the terminal size from stdin to the PTY.
// Callers hold p.mu.
func (p *PTYManager) copyTerminalSize() error {
	size, err := pty.GetsizeFull(os.Stdin)
	if err != nil {
		return err
	}

	return pty.Setsize(p.pty, size)
}

func (p *PTYManager) monitorTerminalSize() {
	defer p.wg.Done()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			p.mu.Lock()
			if p.pty != nil {
				if err := p.copyTerminalSize(); err != nil {
					p.logger.Debug("failed to resize PTY", zap.Error(err))
				}
			}
			p.mu.Unlock()
		case <-p.stopChan:
			return
		}
	}
}

// CopyIO connects the PTY to the given streams until the child's output ends.
// When stdin is a terminal it is put in raw mode for the duration.
func (p *PTYManager) CopyIO(stdin io.Reader, stdout io.Writer) error {
	p.mu.Lock()
	if p.pty == nil {
		p.mu.Unlock()
		return fmt.Errorf("PTY not initialized")
	}
	ptyFile := p.pty
	p.mu.Unlock()

	if file, ok := stdin.(*os.File); ok {
		if restore, err := setRawMode(int(file.Fd())); err == nil {
			p.mu.Lock()
			p.restoreFunc = restore
			p.mu.Unlock()
			defer func() {
				_ = p.Stop()
			}()
		}
	}

	// The stdin copy blocks on reads for as long as we live, so only the
	// output side is waited for
	go func() {
		if _, err := io.Copy(ptyFile, stdin); err != nil && !isClosedPTY(err) {
			p.logger.Debug("stdin copy ended", zap.Error(err))
		}
	}()

	if _, err := io.Copy(stdout, ptyFile); err != nil && !isClosedPTY(err) {
		return fmt.Errorf("stdout copy error: %w", err)
	}
	return nil
}

// setRawMode puts the terminal on fd in raw mode and returns the undo
func setRawMode(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("fd %d is not a terminal", fd)
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}

	return func() {
		_ = term.Restore(fd, state)
	}, nil
}

// isClosedPTY reports whether err is how Linux ends reads on a PTY whose child is gone
func isClosedPTY(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)
}
