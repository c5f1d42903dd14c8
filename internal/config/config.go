package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"

	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/theme"
	"github.com/example/shotmark/internal/tools"
)

// Notify holds notification settings.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
}

// Editor holds the tunables of the annotation editor.
type Editor struct {
	HistoryCapacity int
	Debounce        time.Duration
	ReloadTimeout   time.Duration
	MinDragDistance float64
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Notify  Notify
	Editor  Editor
	// Tools maps a tool name to the parameter values of its [tool.<name>]
	// section.
	Tools  map[string]map[string]string
	Themes map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Notify: Notify{
			Capture: false,
			Save:    false,
			Copy:    false,
		},
		Editor: Editor{
			HistoryCapacity: history.DefaultCapacity,
			Debounce:        history.DefaultDebounce,
			ReloadTimeout:   history.DefaultReloadTimeout,
			MinDragDistance: tools.DefaultMinDrag,
		},
		Tools:  make(map[string]map[string]string),
		Themes: make(map[string]*theme.Theme),
	}
}

// HistoryOptions converts the editor settings to history manager options.
func (c *Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithCapacity(c.Editor.HistoryCapacity),
		history.WithDebounce(c.Editor.Debounce),
		history.WithReloadTimeout(c.Editor.ReloadTimeout),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "history_capacity = %d\n", c.Editor.HistoryCapacity)
	fmt.Fprintf(&sb, "debounce_ms = %d\n", c.Editor.Debounce.Milliseconds())
	fmt.Fprintf(&sb, "reload_timeout_ms = %d\n", c.Editor.ReloadTimeout.Milliseconds())
	fmt.Fprintf(&sb, "min_drag_distance = %v\n", c.Editor.MinDragDistance)
	sb.WriteString("\n")

	for _, name := range sortedKeys(c.Tools) {
		fmt.Fprintf(&sb, "[tool.%s]\n", name)
		for _, k := range sortedKeys(c.Tools[name]) {
			fmt.Fprintf(&sb, "%s = %s\n", k, c.Tools[name][k])
		}
		sb.WriteString("\n")
	}

	for _, name := range sortedKeys(c.Themes) {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, nc := range t.Colors() {
			fmt.Fprintf(&sb, "%s: %s\n", nc.Key, toHex(nc.Color))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toHex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ResolveTheme returns the configured theme. Inline [theme.<name>] sections
// win over themes found by l.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if th, ok := c.Themes[c.Theme]; ok && th != nil {
		return th, nil
	}
	th, err := l.Load(c.Theme)
	if err != nil {
		return theme.Default(), fmt.Errorf("theme %q: %w", c.Theme, err)
	}
	return th, nil
}
