// Package notification delivers reminders to the user.
package notification

import "time"

// Notification represents a reminder to be delivered.
type Notification struct {
	Title   string
	Message string
	Variant string
	Time    time.Time
	Session string
}

// Notifier sends notifications.
type Notifier interface {
	Send(notification Notification) error
}
