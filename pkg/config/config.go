package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode selects how a reminder is presented
type Mode string

const (
	// ModeToast shows a transient toast in the opencode TUI
	ModeToast Mode = "toast"
	// ModeAppend appends the reminder text to the TUI prompt input
	ModeAppend Mode = "append"
	// ModeDesktop posts a desktop notification over D-Bus
	ModeDesktop Mode = "desktop"
	// ModeNtfy publishes to an ntfy topic
	ModeNtfy Mode = "ntfy"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	switch m {
	case ModeToast, ModeAppend, ModeDesktop, ModeNtfy:
		return true
	}
	return false
}

const (
	// DefaultToastMessage is shown in toast, desktop and ntfy modes
	DefaultToastMessage = "Continuous learning: if we learned something non-obvious, run /retrospective to save it as a skill."
	// DefaultAppendText is appended to the prompt in append mode
	DefaultAppendText = "\n\n[Learning checkpoint] If we discovered a non-obvious fix/workaround/pattern, run /retrospective to save it as a skill."
)

// Config holds all configuration for opencode-reminder
type Config struct {
	// Reminder behavior
	Mode         Mode          `yaml:"mode" env:"OPENCODE_REMINDER_MODE"`
	Cooldown     time.Duration `yaml:"cooldown" env:"OPENCODE_REMINDER_COOLDOWN"`
	PerSession   bool          `yaml:"per_session" env:"OPENCODE_REMINDER_PER_SESSION"`
	ToastMessage string        `yaml:"toast_message"`
	ToastVariant string        `yaml:"toast_variant"`
	AppendText   string        `yaml:"append_text"`

	// opencode connection
	ServerURL           string   `yaml:"server_url" env:"OPENCODE_REMINDER_SERVER"`
	OpencodePath        string   `yaml:"opencode_path" env:"OPENCODE_REMINDER_OPENCODE_PATH"`
	DefaultOpencodeArgs []string `yaml:"default_opencode_args" env:"OPENCODE_REMINDER_DEFAULT_ARGS"`

	// Event stream reconnection
	Reconnect ReconnectConfig `yaml:"reconnect"`

	// ntfy mode
	NtfyServer string `yaml:"ntfy_server" env:"OPENCODE_REMINDER_NTFY_SERVER"`
	NtfyTopic  string `yaml:"ntfy_topic" env:"OPENCODE_REMINDER_NTFY_TOPIC"`

	// Rate limiting on top of the cooldown
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Behavior flags
	Quiet  bool `yaml:"quiet" env:"OPENCODE_REMINDER_QUIET"`
	DryRun bool `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level" env:"OPENCODE_REMINDER_LOG_LEVEL"`
	LogFile  string `yaml:"log_file" env:"OPENCODE_REMINDER_LOG_FILE"`
}

// RateLimitConfig holds rate limiting configuration. MaxMessages of zero disables it.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"max_messages"`
}

// ReconnectConfig controls event stream reconnection backoff
type ReconnectConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Mode:         ModeToast,
		Cooldown:     1500 * time.Millisecond,
		ToastMessage: DefaultToastMessage,
		ToastVariant: "info",
		AppendText:   DefaultAppendText,
		NtfyServer:   "https://ntfy.sh",
		Reconnect: ReconnectConfig{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window:      time.Hour,
			MaxMessages: 0,
		},
		LogLevel: "warn",
	}
}

// ReminderMessage returns the text delivered for the configured mode
func (c *Config) ReminderMessage() string {
	if c.Mode == ModeAppend {
		return c.AppendText
	}
	return c.ToastMessage
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Try to load from config file
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check for explicit config path
	if path := os.Getenv("OPENCODE_REMINDER_CONFIG"); path != "" {
		return path
	}

	// Check XDG config directory
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "opencode-reminder", "config.yaml")
	}

	// Fall back to home directory
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "opencode-reminder", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if mode := os.Getenv("OPENCODE_REMINDER_MODE"); mode != "" {
		cfg.Mode = Mode(strings.ToLower(mode))
	}

	if cooldown := os.Getenv("OPENCODE_REMINDER_COOLDOWN"); cooldown != "" {
		d, err := time.ParseDuration(cooldown)
		if err != nil {
			return fmt.Errorf("invalid OPENCODE_REMINDER_COOLDOWN: %w", err)
		}
		cfg.Cooldown = d
	}

	if err := parseBoolEnv("OPENCODE_REMINDER_PER_SESSION", &cfg.PerSession); err != nil {
		return err
	}

	if server := os.Getenv("OPENCODE_REMINDER_SERVER"); server != "" {
		cfg.ServerURL = server
	}

	if path := os.Getenv("OPENCODE_REMINDER_OPENCODE_PATH"); path != "" {
		cfg.OpencodePath = path
	}

	if args := os.Getenv("OPENCODE_REMINDER_DEFAULT_ARGS"); args != "" {
		cfg.DefaultOpencodeArgs = nil
		for _, arg := range strings.Split(args, ",") {
			if arg = strings.TrimSpace(arg); arg != "" {
				cfg.DefaultOpencodeArgs = append(cfg.DefaultOpencodeArgs, arg)
			}
		}
	}

	if server := os.Getenv("OPENCODE_REMINDER_NTFY_SERVER"); server != "" {
		cfg.NtfyServer = server
	}

	if topic := os.Getenv("OPENCODE_REMINDER_NTFY_TOPIC"); topic != "" {
		cfg.NtfyTopic = topic
	}

	if err := parseBoolEnv("OPENCODE_REMINDER_QUIET", &cfg.Quiet); err != nil {
		return err
	}

	if level := os.Getenv("OPENCODE_REMINDER_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if file := os.Getenv("OPENCODE_REMINDER_LOG_FILE"); file != "" {
		cfg.LogFile = file
	}

	return nil
}

func parseBoolEnv(name string, dst *bool) error {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}

	switch strings.ToLower(value) {
	case "true", "1", "yes":
		*dst = true
	case "false", "0", "no":
		*dst = false
	default:
		return fmt.Errorf("invalid %s value: %q (use true/false)", name, value)
	}
	return nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if !cfg.Mode.Valid() {
		return fmt.Errorf("unknown mode %q (use toast, append, desktop or ntfy)", cfg.Mode)
	}

	if cfg.Cooldown < 0 {
		return fmt.Errorf("cooldown must be non-negative")
	}

	switch cfg.ToastVariant {
	case "info", "success", "warning", "error":
	default:
		return fmt.Errorf("unknown toast_variant %q", cfg.ToastVariant)
	}

	if cfg.Mode == ModeNtfy && cfg.NtfyTopic == "" && !cfg.Quiet {
		return fmt.Errorf("ntfy_topic is required in ntfy mode")
	}

	if cfg.ServerURL != "" {
		u, err := url.Parse(cfg.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("server_url must be an http(s) URL, got %q", cfg.ServerURL)
		}
	}

	if cfg.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("rate_limit.max_messages must be non-negative")
	}

	if cfg.RateLimit.Window < 0 {
		return fmt.Errorf("rate_limit.window must be non-negative")
	}

	if cfg.RateLimit.MaxMessages > 0 && cfg.RateLimit.Window == 0 {
		return fmt.Errorf("rate_limit.window is required when rate_limit.max_messages is set")
	}

	if cfg.Reconnect.InitialInterval < 0 || cfg.Reconnect.MaxInterval < 0 {
		return fmt.Errorf("reconnect intervals must be non-negative")
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	return nil
}
