// Package idle gates session idle notifications behind a cooldown window.
package idle

import "time"

// Outcome is the result of feeding one idle notification to a Debouncer.
type Outcome int

const (
	// Suppressed means the notification arrived inside the cooldown window.
	Suppressed Outcome = iota
	// Action means a reminder should be dispatched.
	Action
)

// String returns a readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Action:
		return "action"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// State is the debounce state owned by a single Debouncer.
type State struct {
	lastFiredAt time.Time
	fired       bool
}

// LastFiredAt returns the time of the last emitted action and whether any
// action has been emitted yet.
func (s State) LastFiredAt() (time.Time, bool) {
	return s.lastFiredAt, s.fired
}

// Debouncer converts a stream of idle notifications into reminder actions,
// emitting at most one action per cooldown window.
//
// A Debouncer is not safe for concurrent use. Notifications are expected to be
// delivered one at a time with non-decreasing timestamps.
type Debouncer struct {
	cooldown time.Duration
	state    State
}

// NewDebouncer creates a debouncer that has never fired.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	return &Debouncer{cooldown: cooldown}
}

// OnIdle decides whether the notification received at now produces an action.
// The boundary is inclusive: elapsed == cooldown yields Action. A timestamp
// earlier than the last action counts as inside the window. A cooldown of
// zero or less disables debouncing entirely.
func (d *Debouncer) OnIdle(now time.Time) Outcome {
	if d.cooldown > 0 && d.state.fired && now.Sub(d.state.lastFiredAt) < d.cooldown {
		return Suppressed
	}

	d.state.lastFiredAt = now
	d.state.fired = true
	return Action
}

// Cooldown returns the configured cooldown window.
func (d *Debouncer) Cooldown() time.Duration {
	return d.cooldown
}

// State returns a copy of the current debounce state.
func (d *Debouncer) State() State {
	return d.state
}
