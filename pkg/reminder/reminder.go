// Package reminder turns session idle events into retrospective reminders.
package reminder

import (
	"time"

	"go.uber.org/zap"

	"github.com/Veraticus/opencode-reminder/pkg/idle"
	"github.com/Veraticus/opencode-reminder/pkg/interfaces"
	"github.com/Veraticus/opencode-reminder/pkg/notification"
	"github.com/Veraticus/opencode-reminder/pkg/opencode"
)

// Dispatcher delivers a reminder. It must not block the caller for the
// duration of the delivery.
type Dispatcher interface {
	Send(n notification.Notification) error
}

// Stats counts what the reminder did with the events it received.
type Stats struct {
	Idle       int
	Fired      int
	Suppressed int
}

// Reminder handles session.idle events. All other events are ignored.
//
// HandleEvent is called from the single event stream goroutine; Reminder does
// no locking of its own.
type Reminder struct {
	debouncer  *idle.Debouncer
	sessions   *idle.KeyedDebouncer
	dispatcher Dispatcher
	clock      interfaces.Clock
	template   notification.Notification
	logger     *zap.Logger
	stats      Stats
}

// New creates a reminder. With perSession set every session gets its own
// cooldown window; otherwise one window is shared by all sessions.
func New(settings Settings, dispatcher Dispatcher, clock interfaces.Clock, logger *zap.Logger) *Reminder {
	if clock == nil {
		clock = interfaces.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reminder{
		dispatcher: dispatcher,
		clock:      clock,
		template: notification.Notification{
			Title:   settings.Title,
			Message: settings.Message,
			Variant: settings.Variant,
		},
		logger: logger,
	}
	if settings.PerSession {
		r.sessions = idle.NewKeyedDebouncer(settings.Cooldown)
	} else {
		r.debouncer = idle.NewDebouncer(settings.Cooldown)
	}
	return r
}

// Handles returns the only event type the reminder reacts to.
func (r *Reminder) Handles() opencode.EventType {
	return opencode.EventSessionIdle
}

// Register subscribes the reminder to its event type.
func (r *Reminder) Register(router *opencode.Router) {
	router.Subscribe(r.Handles(), r)
}

// HandleEvent implements opencode.Handler.
func (r *Reminder) HandleEvent(ev opencode.Event) {
	idleEvent, ok := ev.(opencode.SessionIdle)
	if !ok {
		return
	}
	r.stats.Idle++

	now := r.clock.Now()
	if r.decide(idleEvent.SessionID, now) == idle.Suppressed {
		r.stats.Suppressed++
		r.logger.Debug("reminder suppressed by cooldown", zap.String("session", idleEvent.SessionID))
		return
	}
	r.stats.Fired++

	n := r.template
	n.Time = now
	n.Session = idleEvent.SessionID

	// The debounce decision stands whether or not delivery works
	if err := r.dispatcher.Send(n); err != nil {
		r.logger.Warn("failed to dispatch reminder",
			zap.String("session", idleEvent.SessionID),
			zap.Error(err))
		return
	}

	r.logger.Info("reminder dispatched", zap.String("session", idleEvent.SessionID))
}

func (r *Reminder) decide(session string, now time.Time) idle.Outcome {
	if r.sessions != nil {
		return r.sessions.OnIdle(session, now)
	}
	return r.debouncer.OnIdle(now)
}

// Stats returns the counters collected so far.
func (r *Reminder) Stats() Stats {
	return r.stats
}
