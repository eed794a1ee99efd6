package notification

import (
	"context"
	"time"

	"github.com/Veraticus/opencode-reminder/pkg/opencode"
)

// TUI is the part of the opencode client used to present reminders.
type TUI interface {
	ShowToast(ctx context.Context, toast opencode.Toast) error
	AppendPrompt(ctx context.Context, text string) error
}

const tuiTimeout = 5 * time.Second

// ToastNotifier shows reminders as TUI toasts.
type ToastNotifier struct {
	tui TUI
}

// NewToastNotifier creates a toast notifier.
func NewToastNotifier(tui TUI) *ToastNotifier {
	return &ToastNotifier{tui: tui}
}

// Send implements the Notifier interface
func (n *ToastNotifier) Send(notification Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), tuiTimeout)
	defer cancel()

	return n.tui.ShowToast(ctx, opencode.Toast{
		Title:   notification.Title,
		Message: notification.Message,
		Variant: opencode.ToastVariant(notification.Variant),
	})
}

// PromptNotifier appends reminders to the TUI prompt input.
type PromptNotifier struct {
	tui TUI
}

// NewPromptNotifier creates a prompt notifier.
func NewPromptNotifier(tui TUI) *PromptNotifier {
	return &PromptNotifier{tui: tui}
}

// Send implements the Notifier interface. Only the message is appended.
func (n *PromptNotifier) Send(notification Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), tuiTimeout)
	defer cancel()

	return n.tui.AppendPrompt(ctx, notification.Message)
}
