package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Veraticus/opencode-reminder/pkg/config"
)

// options holds the flags that belong to us rather than to opencode
type options struct {
	configPath string
	serverURL  string
	mode       string
	quiet      bool
	dryRun     bool
	help       bool
}

// valueFlags take an argument; boolFlags do not
var (
	valueFlags = map[string]bool{"config": true, "server": true, "mode": true}
	boolFlags  = map[string]bool{"quiet": true, "dry-run": true, "help": true}
)

func main() {
	ourArgs, opencodeArgs := splitArgs(os.Args[1:])

	fs, opts := newFlagSet()
	if err := fs.Parse(ourArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Only show our help if --help was provided without other opencode args
	if opts.help && len(opencodeArgs) == 0 {
		printUsage(fs)
		os.Exit(0)
	}
	if opts.help {
		opencodeArgs = append(opencodeArgs, "--help")
	}

	// The config path has to be in place before loading
	if opts.configPath != "" {
		if err := os.Setenv("OPENCODE_REMINDER_CONFIG", opts.configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting config path: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyOptions(cfg, opts)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFile, isTerminal(os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	code := run(cfg, opencodeArgs, logger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg *config.Config, opencodeArgs []string, logger *zap.Logger) int {
	if cfg.ServerURL != "" {
		return attach(cfg, logger)
	}
	return wrap(cfg, opencodeArgs, logger)
}

// attach follows an already running opencode server until interrupted
func attach(cfg *config.Config, logger *zap.Logger) int {
	deps, err := NewDependencies(cfg, cfg.ServerURL, false, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		return 1
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("attaching to opencode", zap.String("server", cfg.ServerURL))

	app := NewApplication(deps)
	if err := app.Run(ctx, "", nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// wrap launches opencode in a PTY and follows its server until it exits
func wrap(cfg *config.Config, opencodeArgs []string, logger *zap.Logger) int {
	command := cfg.OpencodePath
	if command == "" {
		found, err := findOpencode()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintf(os.Stderr, "\nYou can fix this by:\n")
			fmt.Fprintf(os.Stderr, "1. Setting opencode_path in your config file (~/.config/opencode-reminder/config.yaml)\n")
			fmt.Fprintf(os.Stderr, "2. Setting OPENCODE_REMINDER_OPENCODE_PATH environment variable\n")
			fmt.Fprintf(os.Stderr, "3. Ensuring the real opencode is in your PATH\n")
			fmt.Fprintf(os.Stderr, "4. Attaching to a running server with --server\n")
			return 1
		}
		command = found
	}

	port, err := freePort()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	args := opencodeCommandArgs(cfg.DefaultOpencodeArgs, opencodeArgs, port)

	deps, err := NewDependencies(cfg, serverURL, true, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		return 1
	}
	defer deps.Close()

	app := NewApplication(deps)

	// Ensure terminal restoration on panic
	defer func() {
		if r := recover(); r != nil {
			_ = app.Stop()
			panic(r)
		}
	}()

	logger.Debug("starting opencode",
		zap.String("command", command),
		zap.Strings("args", args),
		zap.String("server", serverURL))

	// Signals are forwarded to opencode by the process manager; the event
	// stream lives exactly as long as the child does
	if err := app.Run(context.Background(), command, args); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			fmt.Fprintf(os.Stderr, "Error running opencode: %v\n", err)
			if app.ExitCode() == 0 {
				return 1
			}
		}
	}

	return app.ExitCode()
}

func newFlagSet() (*flag.FlagSet, *options) {
	opts := &options{}
	fs := flag.NewFlagSet("opencode-reminder", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.serverURL, "server", "", "Attach to a running opencode server instead of launching one")
	fs.StringVar(&opts.mode, "mode", "", "Reminder mode: toast, append, desktop or ntfy")
	fs.BoolVar(&opts.quiet, "quiet", false, "Disable reminders")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Print reminders instead of sending them")
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	return fs, opts
}

// splitArgs separates our flags from the ones meant for opencode
func splitArgs(args []string) (ours, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, hasValue := flagName(arg)
		switch {
		case valueFlags[name]:
			ours = append(ours, arg)
			if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				ours = append(ours, args[i+1])
				i++
			}
		case boolFlags[name]:
			ours = append(ours, arg)
		default:
			rest = append(rest, arg)
		}
	}
	return ours, rest
}

// flagName returns the name of a --flag or --flag=value argument. Single
// dash arguments are shorthand and always belong to opencode.
func flagName(arg string) (name string, hasValue bool) {
	if !strings.HasPrefix(arg, "--") || arg == "--" || strings.HasPrefix(arg, "---") {
		return "", false
	}
	name = strings.TrimPrefix(arg, "--")
	if i := strings.Index(name, "="); i >= 0 {
		return name[:i], true
	}
	return name, false
}

func applyOptions(cfg *config.Config, opts *options) {
	if opts.serverURL != "" {
		cfg.ServerURL = opts.serverURL
	}
	if opts.mode != "" {
		cfg.Mode = config.Mode(opts.mode)
	}
	if opts.quiet {
		cfg.Quiet = true
	}
	if opts.dryRun {
		cfg.DryRun = true
	}
}

// opencodeCommandArgs pins opencode's server to the port we listen on
func opencodeCommandArgs(defaults, user []string, port int) []string {
	args := make([]string, 0, len(defaults)+len(user)+4)
	args = append(args, defaults...)
	args = append(args, "--port", strconv.Itoa(port), "--hostname", "127.0.0.1")
	args = append(args, user...)
	return args
}

// freePort asks the kernel for an unused local port
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Println("opencode-reminder - reminds you to run /retrospective when opencode goes idle")
	fmt.Println()
	fmt.Println("Usage: opencode-reminder [OPTIONS] [OPENCODE_ARGS...]")
	fmt.Println()
	fmt.Println("Options:")
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("All unknown flags are passed through to opencode")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  OPENCODE_REMINDER_MODE           Reminder mode (default: toast)")
	fmt.Println("  OPENCODE_REMINDER_COOLDOWN       Minimum time between reminders (default: 1.5s)")
	fmt.Println("  OPENCODE_REMINDER_PER_SESSION    Separate cooldown per session (true/false)")
	fmt.Println("  OPENCODE_REMINDER_SERVER         opencode server to attach to")
	fmt.Println("  OPENCODE_REMINDER_OPENCODE_PATH  Path to the real opencode binary")
	fmt.Println("  OPENCODE_REMINDER_DEFAULT_ARGS   Default opencode args (comma-separated)")
	fmt.Println("  OPENCODE_REMINDER_NTFY_SERVER    Ntfy server URL (default: https://ntfy.sh)")
	fmt.Println("  OPENCODE_REMINDER_NTFY_TOPIC     Ntfy topic for ntfy mode")
	fmt.Println("  OPENCODE_REMINDER_QUIET          Disable reminders (true/false)")
	fmt.Println("  OPENCODE_REMINDER_LOG_LEVEL      debug, info, warn or error (default: warn)")
	fmt.Println("  OPENCODE_REMINDER_LOG_FILE       Write logs to a file instead of stderr")
	fmt.Println("  OPENCODE_REMINDER_CONFIG         Path to config file")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/opencode-reminder/config.yaml")
}

// findOpencode searches for the real opencode binary in PATH, excluding ourselves
func findOpencode() (string, error) {
	ourPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get our executable path: %w", err)
	}
	ourPath, err = filepath.EvalSymlinks(ourPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve our executable path: %w", err)
	}

	return searchPath(os.Getenv("PATH"), "opencode", ourPath)
}

// searchPath returns the first executable called name in pathEnv that does
// not resolve to exclude
func searchPath(pathEnv, name, exclude string) (string, error) {
	if pathEnv == "" {
		return "", fmt.Errorf("PATH environment variable is empty")
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		candidate := filepath.Join(dir, name)

		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() || info.Mode()&0111 == 0 {
			continue
		}

		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil || resolved == exclude {
			continue
		}

		return candidate, nil
	}

	return "", fmt.Errorf("%s not found in PATH (excluding opencode-reminder wrapper)", name)
}
