package reminder

import (
	"time"

	"github.com/Veraticus/opencode-reminder/pkg/config"
)

// Settings is the part of the configuration the reminder needs.
type Settings struct {
	Cooldown   time.Duration
	PerSession bool
	Title      string
	Message    string
	Variant    string
}

// SettingsFromConfig picks the reminder text for the configured mode.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Cooldown:   cfg.Cooldown,
		PerSession: cfg.PerSession,
		Message:    cfg.ReminderMessage(),
		Variant:    cfg.ToastVariant,
	}
}
