package notification

import (
	"fmt"

	"github.com/Veraticus/opencode-reminder/pkg/config"
)

// DesktopAppName identifies reminders in the desktop notification daemon.
const DesktopAppName = "opencode-reminder"

// NewNotifier builds the notifier for the configured mode. tui is used by the
// toast and append modes.
func NewNotifier(cfg *config.Config, tui TUI) (Notifier, error) {
	if cfg.DryRun {
		return NewContextNotifier(NewConsoleNotifier()), nil
	}

	switch cfg.Mode {
	case config.ModeToast:
		return NewContextNotifier(NewToastNotifier(tui)), nil
	case config.ModeAppend:
		return NewPromptNotifier(tui), nil
	case config.ModeDesktop:
		desktop, err := NewDesktopNotifier(DesktopAppName, 0)
		if err != nil {
			return nil, err
		}
		return NewContextNotifier(desktop), nil
	case config.ModeNtfy:
		return NewContextNotifier(NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic)), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}
