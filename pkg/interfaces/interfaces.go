// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// RateLimiter limits notification frequency.
type RateLimiter interface {
	Allow() bool
}

// ProcessWrapper wraps and monitors a process.
type ProcessWrapper interface {
	Start(command string, args []string) error
	Wait() error
	Stop() error
	ExitCode() int
}
