package notification

import (
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/Veraticus/opencode-reminder/pkg/interfaces"
)

// ErrManagerClosed is returned by Send after Close.
var ErrManagerClosed = errors.New("notification manager closed")

// Manager dispatches notifications asynchronously, subject to an optional rate limit
type Manager struct {
	notifier    Notifier
	rateLimiter interfaces.RateLimiter
	logger      *zap.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewManager creates a new notification manager. rateLimiter may be nil.
func NewManager(notifier Notifier, rateLimiter interfaces.RateLimiter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		notifier:    notifier,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Send hands the notification to the notifier in the background and returns
// immediately. Delivery failures are logged, never returned.
func (m *Manager) Send(notification Notification) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrManagerClosed
	}

	if m.rateLimiter != nil && !m.rateLimiter.Allow() {
		m.mu.Unlock()
		m.logger.Debug("reminder dropped by rate limit", zap.String("session", notification.Session))
		return nil
	}

	m.inflight.Add(1)
	m.mu.Unlock()

	go m.deliver(notification)
	return nil
}

func (m *Manager) deliver(notification Notification) {
	defer m.inflight.Done()

	if err := m.notifier.Send(notification); err != nil {
		m.logger.Warn("failed to deliver reminder",
			zap.String("session", notification.Session),
			zap.Error(err))
		return
	}

	m.logger.Debug("reminder delivered", zap.String("session", notification.Session))
}

// Close waits for in-flight deliveries and releases the notifier
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.inflight.Wait()

	if closer, ok := m.notifier.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
