package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/shotmark/internal/theme"
)

// setter applies one key of the current section.
type setter func(key, value string) error

// Parse reads an rc file. Lines are `key = value` (or `key: value`) under
// optional `[section]` headers; `#` and `//` start comments.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	section, set := "", rootSetter(cfg)
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if name, ok := sectionName(line); ok {
			section, set = name, cfg.sectionSetter(name)
			continue
		}
		key, value, ok := splitKV(line)
		if !ok || set == nil {
			continue
		}
		if err := set(key, value); err != nil {
			if section == "" {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
			return nil, fmt.Errorf("line %d [%s]: %w", n, section, err)
		}
	}
	return cfg, sc.Err()
}

func sectionName(line string) (string, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", false
	}
	return strings.TrimSpace(line[1 : len(line)-1]), true
}

// splitKV splits on the first '=' or, failing that, the first ':'. Double
// quotes around the value are dropped.
func splitKV(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		key, value, ok = strings.Cut(line, ":")
	}
	if !ok {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(key), value, true
}

// sectionSetter returns the setter for a section header. Unknown sections
// get nil and their keys are skipped.
func (c *Config) sectionSetter(name string) setter {
	switch {
	case strings.HasPrefix(name, "theme."):
		th := theme.Default()
		th.Name = strings.TrimPrefix(name, "theme.")
		c.Themes[th.Name] = th
		return th.Set
	case strings.HasPrefix(name, "tool."):
		tool := strings.ToLower(strings.TrimPrefix(name, "tool."))
		vals := c.Tools[tool]
		if vals == nil {
			vals = map[string]string{}
			c.Tools[tool] = vals
		}
		return func(key, value string) error {
			vals[strings.ToLower(key)] = value
			return nil
		}
	case name == "notify":
		return notifySetter(&c.Notify)
	case name == "editor":
		return editorSetter(&c.Editor)
	}
	return nil
}

func rootSetter(c *Config) setter {
	return func(key, value string) error {
		switch strings.ToLower(key) {
		case "theme":
			c.Theme = value
		case "save_dir":
			c.SaveDir = value
		}
		return nil
	}
}

func notifySetter(n *Notify) setter {
	return func(key, value string) error {
		var dst *bool
		switch strings.ToLower(key) {
		case "capture":
			dst = &n.Capture
		case "save":
			dst = &n.Save
		case "copy":
			dst = &n.Copy
		default:
			return nil
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}
}

func editorSetter(e *Editor) setter {
	millis := func(key, value string, dst *time.Duration) error {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: want milliseconds, got %q", key, value)
		}
		*dst = time.Duration(n) * time.Millisecond
		return nil
	}
	return func(key, value string) error {
		switch strings.ToLower(key) {
		case "history_capacity":
			n, err := strconv.Atoi(value)
			if err != nil || n < 2 {
				return fmt.Errorf("%s: want an integer of at least 2, got %q", key, value)
			}
			e.HistoryCapacity = n
		case "debounce_ms":
			return millis(key, value, &e.Debounce)
		case "reload_timeout_ms":
			return millis(key, value, &e.ReloadTimeout)
		case "min_drag_distance":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("%s: want a non-negative number, got %q", key, value)
			}
			e.MinDragDistance = f
		}
		return nil
	}
}
