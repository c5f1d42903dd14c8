package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, as in SHOTMARK_THEME.
const EnvPrefix = "SHOTMARK"

// Loader finds and reads the rc file.
type Loader struct {
	// Version "dev" also looks for .shotmarkrc in the working directory.
	Version string
	// OverridePath, when it exists, wins over every other location.
	OverridePath string
}

// NewLoader creates a Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{Version: version, OverridePath: overridePath}
}

// Load reads the configuration file, if there is one, and applies
// environment overrides on top.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(EnvPrefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

// candidates lists the rc locations in search order.
func (l *Loader) candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, ".shotmarkrc"))
		}
	}
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "config.rc"), filepath.Join(dir, "shotmark.rc"))
	}
	return paths
}

func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "shotmark")
}

// GetConfigPath returns the first existing rc file, or "" when there is none.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.candidates() {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// SavePath is where `config save` writes: the file in use, or
// ~/.config/shotmark/config.rc for a first save.
func (l *Loader) SavePath() (string, error) {
	if p := l.GetConfigPath(); p != "" {
		return p, nil
	}
	dir := userConfigDir()
	if dir == "" {
		return "", errors.New("no home directory for the config file")
	}
	return filepath.Join(dir, "config.rc"), nil
}

// envOverrides lists the settings that can come from the environment. Unset
// variables leave the pointers nil.
type envOverrides struct {
	Theme           *string  `envconfig:"THEME"`
	SaveDir         *string  `envconfig:"SAVE_DIR"`
	HistoryCapacity *int     `envconfig:"HISTORY_CAPACITY"`
	DebounceMS      *int     `envconfig:"DEBOUNCE_MS"`
	ReloadTimeoutMS *int     `envconfig:"RELOAD_TIMEOUT_MS"`
	MinDragDistance *float64 `envconfig:"MIN_DRAG_DISTANCE"`
	NotifyCapture   *bool    `envconfig:"NOTIFY_CAPTURE"`
	NotifySave      *bool    `envconfig:"NOTIFY_SAVE"`
	NotifyCopy      *bool    `envconfig:"NOTIFY_COPY"`
}

// ApplyEnv overrides settings from prefixed environment variables.
func (c *Config) ApplyEnv(prefix string) error {
	var o envOverrides
	if err := envconfig.Process(prefix, &o); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if o.Theme != nil {
		c.Theme = *o.Theme
	}
	if o.SaveDir != nil {
		c.SaveDir = *o.SaveDir
	}
	if o.HistoryCapacity != nil {
		if *o.HistoryCapacity < 2 {
			return fmt.Errorf("environment: %s_HISTORY_CAPACITY must be at least 2", prefix)
		}
		c.Editor.HistoryCapacity = *o.HistoryCapacity
	}
	if o.DebounceMS != nil {
		c.Editor.Debounce = time.Duration(*o.DebounceMS) * time.Millisecond
	}
	if o.ReloadTimeoutMS != nil {
		c.Editor.ReloadTimeout = time.Duration(*o.ReloadTimeoutMS) * time.Millisecond
	}
	if o.MinDragDistance != nil {
		c.Editor.MinDragDistance = *o.MinDragDistance
	}
	if o.NotifyCapture != nil {
		c.Notify.Capture = *o.NotifyCapture
	}
	if o.NotifySave != nil {
		c.Notify.Save = *o.NotifySave
	}
	if o.NotifyCopy != nil {
		c.Notify.Copy = *o.NotifyCopy
	}
	return nil
}
