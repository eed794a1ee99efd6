package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Veraticus/opencode-reminder/pkg/config"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantOurs []string
		wantRest []string
	}{
		{
			name:     "no args",
			args:     nil,
			wantOurs: nil,
			wantRest: nil,
		},
		{
			name:     "only opencode args",
			args:     []string{"--model", "anthropic/claude", "."},
			wantRest: []string{"--model", "anthropic/claude", "."},
		},
		{
			name:     "config with separate value",
			args:     []string{"--config", "/tmp/c.yaml", "--continue"},
			wantOurs: []string{"--config", "/tmp/c.yaml"},
			wantRest: []string{"--continue"},
		},
		{
			name:     "inline values",
			args:     []string{"--server=http://127.0.0.1:4096", "--mode=append"},
			wantOurs: []string{"--server=http://127.0.0.1:4096", "--mode=append"},
		},
		{
			name:     "single dash goes to opencode",
			args:     []string{"-quiet", "-mode", "append", "-c"},
			wantRest: []string{"-quiet", "-mode", "append", "-c"},
		},
		{
			name:     "triple dash goes to opencode",
			args:     []string{"---quiet"},
			wantRest: []string{"---quiet"},
		},
		{
			name:     "bool flags mixed with opencode args",
			args:     []string{"--dry-run", "-c", "--quiet", "--print-logs"},
			wantOurs: []string{"--dry-run", "--quiet"},
			wantRest: []string{"-c", "--print-logs"},
		},
		{
			name:     "value flag followed by another flag",
			args:     []string{"--mode", "--quiet"},
			wantOurs: []string{"--mode", "--quiet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ours, rest := splitArgs(tt.args)
			if !reflect.DeepEqual(ours, tt.wantOurs) {
				t.Errorf("ours = %v, want %v", ours, tt.wantOurs)
			}
			if !reflect.DeepEqual(rest, tt.wantRest) {
				t.Errorf("rest = %v, want %v", rest, tt.wantRest)
			}
		})
	}
}

func TestFlagParsingAndOptions(t *testing.T) {
	ours, rest := splitArgs([]string{"--mode", "desktop", "--server=http://localhost:4096", "--dry-run", "--continue"})

	fs, opts := newFlagSet()
	if err := fs.Parse(ours); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rest) != 1 || rest[0] != "--continue" {
		t.Errorf("rest = %v", rest)
	}

	cfg := config.DefaultConfig()
	applyOptions(cfg, opts)

	if cfg.Mode != config.ModeDesktop {
		t.Errorf("Mode = %q, want desktop", cfg.Mode)
	}
	if cfg.ServerURL != "http://localhost:4096" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if !cfg.DryRun {
		t.Error("expected DryRun")
	}
	if cfg.Quiet {
		t.Error("Quiet should be untouched")
	}
}

func TestSingleDashArgsParse(t *testing.T) {
	ours, rest := splitArgs([]string{"-mode", "append", "--quiet"})

	fs, opts := newFlagSet()
	if err := fs.Parse(ours); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !opts.quiet || opts.mode != "" {
		t.Errorf("opts = %+v, want only quiet set", *opts)
	}
	if !reflect.DeepEqual(rest, []string{"-mode", "append"}) {
		t.Errorf("rest = %v", rest)
	}
}

func TestOpencodeCommandArgs(t *testing.T) {
	got := opencodeCommandArgs([]string{"--print-logs"}, []string{"--continue", "."}, 4100)
	want := []string{"--print-logs", "--port", "4100", "--hostname", "127.0.0.1", "--continue", "."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("opencodeCommandArgs() = %v, want %v", got, want)
	}
}

func TestFreePort(t *testing.T) {
	port, err := freePort()
	if err != nil {
		t.Fatalf("freePort() error = %v", err)
	}
	if port <= 0 || port > 65535 {
		t.Errorf("port = %d", port)
	}
}

func TestSearchPath(t *testing.T) {
	self := t.TempDir()
	other := t.TempDir()
	empty := t.TempDir()

	writeExecutable := func(dir string) string {
		path := filepath.Join(dir, "opencode")
		if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			t.Fatal(err)
		}
		return resolved
	}
	selfPath := writeExecutable(self)
	otherPath := writeExecutable(other)

	// A non-executable file is skipped
	if err := os.WriteFile(filepath.Join(empty, "opencode"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	pathEnv := strings.Join([]string{empty, self, other}, string(os.PathListSeparator))

	got, err := searchPath(pathEnv, "opencode", selfPath)
	if err != nil {
		t.Fatalf("searchPath() error = %v", err)
	}
	if resolved, _ := filepath.EvalSymlinks(got); resolved != otherPath {
		t.Errorf("searchPath() = %q, want %q", got, otherPath)
	}

	if _, err := searchPath(strings.Join([]string{empty, self}, string(os.PathListSeparator)), "opencode", selfPath); err == nil {
		t.Error("expected error when only our own binary is on PATH")
	}
	if _, err := searchPath("", "opencode", selfPath); err == nil {
		t.Error("expected error for empty PATH")
	}
}

func TestNewLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "reminder.log")

	logger, err := newLogger("info", logFile, false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file = %q, want it to contain the message", data)
	}

	if _, err := newLogger("loud", "", true); err == nil {
		t.Error("expected error for invalid level")
	}
}
