package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/gg"

	"github.com/example/shotmark/internal/config"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/notify"
	"github.com/example/shotmark/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs            *flag.FlagSet
	program       string
	stdout        io.Writer
	notifier      *notify.Notifier
	config        *config.Config
	captureAlerts bool
	saveAlerts    bool
	copyAlerts    bool
	themeName     string
	logLevel      string
	activeTheme   *theme.Theme
}

func (r *root) Program() string { return r.program }

func (r *root) FlagSet() *flag.FlagSet { return r.fs }

func (r *root) subcommand(name string) *root {
	sub := *r
	sub.fs = nil
	sub.program = strings.TrimSpace(r.program + " " + name)
	return &sub
}

func newRoot(cfg *config.Config, stdout io.Writer) *root {
	prefs, err := notify.LoadPreferences(config.EnvPrefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	r := &root{
		fs:       flag.NewFlagSet("shotmark", flag.ContinueOnError),
		program:  "shotmark",
		stdout:   stdout,
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.captureAlerts, "notify-capture", cfg.Notify.Capture, "show a desktop notification after capturing a screenshot")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	// Precedence: CLI > Env > Config > Default. Env and config are already
	// folded into cfg.Theme.
	r.fs.StringVar(&r.themeName, "theme", "", "editor theme name or file")
	r.fs.StringVar(&r.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	r.fs.SetOutput(io.Discard)
	r.fs.Usage = func() {}
	return r
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	l := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(l)
	logging.SetLogger(l)
	gg.SetLogger(l)
	return nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return usageErrorf(r, "%v", err)
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := setupLogging(r.logLevel); err != nil {
		return usageErrorf(r, "%v", err)
	}
	r.notifier.Enable(notify.EventCapture, r.captureAlerts)
	r.notifier.Enable(notify.EventSave, r.saveAlerts)
	r.notifier.Enable(notify.EventCopy, r.copyAlerts)

	if r.themeName != "" {
		r.config.Theme = r.themeName
	}
	t, err := r.config.ResolveTheme(theme.NewLoader())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v. using default.\n", err)
	}
	r.activeTheme = t

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]
	sub := r.subcommand(cmdName)

	var cmd runnable
	switch cmdName {
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, sub)
	case "export":
		cmd, err = parseExportCmd(subArgs, sub)
	case "effect":
		cmd, err = parseEffectCmd(subArgs, sub)
	case "monitors":
		cmd, err = parseMonitorsCmd(subArgs, sub)
	case "themes":
		cmd, err = parseThemesCmd(subArgs, sub)
	case "config":
		cmd, err = parseConfigCmd(subArgs, sub)
	case "version":
		cmd = &versionCmd{root: sub}
	default:
		err = usageErrorf(r, "unknown command %q", cmdName)
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func loadConfig() *config.Config {
	cfg, err := config.NewLoader(version, configPathOverride).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	return cfg
}

func main() {
	r := newRoot(loadConfig(), os.Stdout)
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
