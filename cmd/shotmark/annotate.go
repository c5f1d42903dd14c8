package main

import (
	"flag"

	"github.com/example/shotmark/internal/capture"
	"github.com/example/shotmark/internal/surface"
	"github.com/example/shotmark/internal/ui"
)

// annotateCmd opens the editor window.
type annotateCmd struct {
	*root
	fs          *flag.FlagSet
	source      string
	file        string
	display     string
	output      string
	interactive bool
	cursor      bool
}

func (a *annotateCmd) FlagSet() *flag.FlagSet { return a.fs }

func (a *annotateCmd) Template() string { return "annotate.txt" }

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	a := &annotateCmd{root: r, fs: fs, source: "screen"}
	fs.StringVar(&a.display, "display", "", "monitor to capture: index, name or primary")
	fs.StringVar(&a.output, "output", "", "file written by the save action (default: timestamped name in save_dir)")
	fs.BoolVar(&a.interactive, "interactive", false, "let the screenshot portal ask what to capture")
	fs.BoolVar(&a.cursor, "cursor", false, "include the mouse cursor in screen captures")
	if err := parseFlags(fs, a, args); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) > 0 {
		a.source = rest[0]
		rest = rest[1:]
	}
	switch a.source {
	case "screen", "clipboard":
		if len(rest) != 0 {
			return nil, usageErrorf(a, "unexpected arguments %v", rest)
		}
	case "file":
		if len(rest) != 1 {
			return nil, usageErrorf(a, "file needs exactly one image path")
		}
		a.file = rest[0]
	default:
		return nil, usageErrorf(a, "unknown source %q", a.source)
	}
	if a.display != "" && a.source != "screen" {
		return nil, usageErrorf(a, "-display only applies to screen captures")
	}
	return a, nil
}

func (a *annotateCmd) background() surface.BackgroundSource {
	switch a.source {
	case "file":
		return capture.File(a.file)
	case "clipboard":
		return capture.Clipboard{}
	}
	return capture.Screen{
		Display: a.display,
		Options: capture.Options{Interactive: a.interactive, IncludeCursor: a.cursor},
	}
}

func (a *annotateCmd) Run() error {
	app := ui.New(ui.Options{
		Source:   a.background(),
		Config:   a.config,
		Theme:    a.activeTheme,
		Notifier: a.notifier,
		Output:   a.output,
	})
	return app.Run()
}
