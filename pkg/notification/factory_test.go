package notification

import (
	"testing"

	"github.com/Veraticus/opencode-reminder/pkg/config"
)

func TestNewNotifier(t *testing.T) {
	tests := []struct {
		name    string
		mode    config.Mode
		dryRun  bool
		check   func(t *testing.T, n Notifier)
		wantErr bool
	}{
		{
			name:   "dry run prints",
			mode:   config.ModeToast,
			dryRun: true,
			check: func(t *testing.T, n Notifier) {
				cn, ok := n.(*ContextNotifier)
				if !ok {
					t.Fatalf("got %T, want *ContextNotifier", n)
				}
				if _, ok := cn.underlying.(*ConsoleNotifier); !ok {
					t.Errorf("underlying = %T, want *ConsoleNotifier", cn.underlying)
				}
			},
		},
		{
			name: "toast gets a title",
			mode: config.ModeToast,
			check: func(t *testing.T, n Notifier) {
				cn, ok := n.(*ContextNotifier)
				if !ok {
					t.Fatalf("got %T, want *ContextNotifier", n)
				}
				if _, ok := cn.underlying.(*ToastNotifier); !ok {
					t.Errorf("underlying = %T, want *ToastNotifier", cn.underlying)
				}
			},
		},
		{
			name: "append writes the prompt",
			mode: config.ModeAppend,
			check: func(t *testing.T, n Notifier) {
				if _, ok := n.(*PromptNotifier); !ok {
					t.Errorf("got %T, want *PromptNotifier", n)
				}
			},
		},
		{
			name: "ntfy publishes",
			mode: config.ModeNtfy,
			check: func(t *testing.T, n Notifier) {
				cn, ok := n.(*ContextNotifier)
				if !ok {
					t.Fatalf("got %T, want *ContextNotifier", n)
				}
				if _, ok := cn.underlying.(*NtfyClient); !ok {
					t.Errorf("underlying = %T, want *NtfyClient", cn.underlying)
				}
			},
		},
		{
			name:    "unknown mode",
			mode:    config.Mode("carrier-pigeon"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Mode = tt.mode
			cfg.DryRun = tt.dryRun
			cfg.NtfyTopic = "topic"

			n, err := NewNotifier(cfg, &fakeTUI{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewNotifier() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, n)
			}
		})
	}
}
