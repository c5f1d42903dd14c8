package main

import (
	"flag"
	"fmt"
	"slices"

	"github.com/example/shotmark/internal/capture"
	"github.com/example/shotmark/internal/theme"
)

type monitorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseMonitorsCmd(args []string, r *root) (*monitorsCmd, error) {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	cmd := &monitorsCmd{root: r, fs: fs}
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *monitorsCmd) Run() error {
	monitors, err := capture.ListMonitors()
	if err != nil {
		return err
	}
	if len(monitors) == 0 {
		fmt.Fprintln(c.stdout, "no monitors available")
		return nil
	}
	fmt.Fprintln(c.stdout, "available monitors (* marks the primary monitor):")
	for _, m := range monitors {
		marker := " "
		if m.Primary {
			marker = "*"
		}
		r := m.Rect
		fmt.Fprintf(c.stdout, "%s %d: %s %dx%d+%d+%d\n", marker, m.Index, m.Name, r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
	}
	return nil
}

func (c *monitorsCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *monitorsCmd) Template() string { return "monitors.txt" }

type themesCmd struct {
	*root
	fs *flag.FlagSet
}

func parseThemesCmd(args []string, r *root) (*themesCmd, error) {
	fs := flag.NewFlagSet("themes", flag.ContinueOnError)
	cmd := &themesCmd{root: r, fs: fs}
	if err := parseFlags(fs, cmd, args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *themesCmd) Run() error {
	names := theme.NewLoader().List()
	for name := range c.config.Themes {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		marker := " "
		if name == c.config.Theme {
			marker = "*"
		}
		fmt.Fprintf(c.stdout, "%s %s\n", marker, name)
	}
	return nil
}

func (c *themesCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *themesCmd) Template() string { return "themes.txt" }
