package notification

import (
	"fmt"
	"io"
	"os"
)

// ConsoleNotifier prints notifications instead of delivering them (dry run)
type ConsoleNotifier struct {
	out io.Writer
}

// NewConsoleNotifier creates a notifier that writes to stderr. Stdout belongs
// to the wrapped opencode TUI.
func NewConsoleNotifier() *ConsoleNotifier {
	return NewWriterNotifier(os.Stderr)
}

// NewWriterNotifier creates a notifier that writes to w
func NewWriterNotifier(w io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: w}
}

// Send prints the notification
func (n *ConsoleNotifier) Send(notification Notification) error {
	_, err := fmt.Fprintf(n.out, "[REMINDER] %s: %s (session: %s)\n",
		notification.Title,
		notification.Message,
		notification.Session)
	return err
}
