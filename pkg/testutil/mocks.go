// Package testutil provides thread-safe test doubles shared across packages.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/opencode-reminder/pkg/notification"
	"github.com/Veraticus/opencode-reminder/pkg/opencode"
)

// MockNotifier is a thread-safe mock implementation of notification.Notifier for testing
type MockNotifier struct {
	mu            sync.Mutex
	notifications []notification.Notification
	attempts      []notification.Notification // Track all send attempts
	sendErr       error
	sendDelay     time.Duration
	sent          chan struct{}
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		notifications: []notification.Notification{},
		attempts:      []notification.Notification{},
		sent:          make(chan struct{}, 64),
	}
}

// Send implements the Notifier interface
func (m *MockNotifier) Send(n notification.Notification) error {
	m.mu.Lock()
	delay := m.sendDelay
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	defer func() {
		select {
		case m.sent <- struct{}{}:
		default:
		}
	}()

	// Always track the attempt
	m.attempts = append(m.attempts, n)

	if m.sendErr != nil {
		return m.sendErr
	}

	m.notifications = append(m.notifications, n)
	return nil
}

// WaitForAttempts blocks until n send attempts were made or the timeout expires.
// It reports whether the attempts arrived in time.
func (m *MockNotifier) WaitForAttempts(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if len(m.GetAttempts()) >= n {
			return true
		}
		select {
		case <-m.sent:
		case <-deadline:
			return len(m.GetAttempts()) >= n
		}
	}
}

// GetNotifications returns a copy of successfully sent notifications
func (m *MockNotifier) GetNotifications() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.notifications))
	copy(result, m.notifications)
	return result
}

// GetAttempts returns a copy of all attempted sends (including failures)
func (m *MockNotifier) GetAttempts() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]notification.Notification, len(m.attempts))
	copy(result, m.attempts)
	return result
}

// SetError sets the error to return on Send calls
func (m *MockNotifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
}

// SetDelay sets a delay before each Send call
func (m *MockNotifier) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendDelay = delay
}

// MockRateLimiter is a mock implementation of interfaces.RateLimiter for testing
type MockRateLimiter struct {
	mu          sync.Mutex
	allowResult bool
	allowCount  int
}

// NewMockRateLimiter creates a new mock rate limiter
func NewMockRateLimiter(allowResult bool) *MockRateLimiter {
	return &MockRateLimiter{
		allowResult: allowResult,
	}
}

// Allow implements the RateLimiter interface
func (m *MockRateLimiter) Allow() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowCount++
	return m.allowResult
}

// SetAllowResult sets the result that Allow() will return
func (m *MockRateLimiter) SetAllowResult(allow bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowResult = allow
}

// GetAllowCount returns how many times Allow was called
func (m *MockRateLimiter) GetAllowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowCount
}

// ManualClock is an interfaces.Clock that only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock stopped at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements the Clock interface
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// MockTUI records toast and prompt calls made against the opencode TUI
type MockTUI struct {
	mu      sync.Mutex
	toasts  []opencode.Toast
	appends []string
	err     error
}

// NewMockTUI creates a new mock TUI
func NewMockTUI() *MockTUI {
	return &MockTUI{}
}

// ShowToast records the toast
func (m *MockTUI) ShowToast(ctx context.Context, toast opencode.Toast) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = append(m.toasts, toast)
	return m.err
}

// AppendPrompt records the appended text
func (m *MockTUI) AppendPrompt(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appends = append(m.appends, text)
	return m.err
}

// SetError sets the error returned by every call
func (m *MockTUI) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetToasts returns a copy of the recorded toasts
func (m *MockTUI) GetToasts() []opencode.Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]opencode.Toast, len(m.toasts))
	copy(result, m.toasts)
	return result
}

// GetAppends returns a copy of the recorded prompt appends
func (m *MockTUI) GetAppends() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.appends))
	copy(result, m.appends)
	return result
}
