package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/theme"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/screens

[notify]
capture = true
save = false
copy = true

[editor]
history_capacity = 20
debounce_ms = 250

[tool.Effect]
effect = blur
strength = "6"

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
Marquee = orange
`
	r := strings.NewReader(input)
	cfg, err := Parse(r)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}

	if cfg.SaveDir != "/tmp/screens" {
		t.Errorf("Expected save_dir '/tmp/screens', got '%s'", cfg.SaveDir)
	}

	if !cfg.Notify.Capture {
		t.Error("Expected notify.capture to be true")
	}
	if cfg.Notify.Save {
		t.Error("Expected notify.save to be false")
	}
	if !cfg.Notify.Copy {
		t.Error("Expected notify.copy to be true")
	}

	if cfg.Editor.HistoryCapacity != 20 || cfg.Editor.Debounce != 250*time.Millisecond {
		t.Errorf("Unexpected editor settings: %+v", cfg.Editor)
	}
	if cfg.Editor.ReloadTimeout != history.DefaultReloadTimeout {
		t.Errorf("reload timeout lost its default: %v", cfg.Editor.ReloadTimeout)
	}

	if got := cfg.Tools["effect"]; got["effect"] != "blur" || got["strength"] != "6" {
		t.Errorf("Unexpected tool section: %v", got)
	}

	theme, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}

	if theme.Background.R != 0x11 || theme.Background.G != 0x11 || theme.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", theme.Background)
	}
	if theme.Marquee.R != 255 || theme.Marquee.G != 165 {
		t.Errorf("Unexpected Marquee color: %+v", theme.Marquee)
	}
}

func TestParseRejectsBadEditorValue(t *testing.T) {
	for _, input := range []string{
		"[editor]\nhistory_capacity = 1\n",
		"[editor]\ndebounce_ms = soon\n",
		"[notify]\ncopy = maybe\n",
		"[theme.x]\nBackground = #12\n",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Parse(%q) succeeded", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/shots

[notify]
capture = true
save = true
copy = false

[editor]
min_drag_distance = 6.5

[tool.arrow]
color = #112233

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
MarqueeFill = #1E88E540
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v", err)
	}

	// 4. Compare relevant fields
	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("SaveDir mismatch: %q vs %q", cfg.SaveDir, cfg2.SaveDir)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Editor != cfg2.Editor {
		t.Errorf("Editor mismatch: %+v vs %+v", cfg.Editor, cfg2.Editor)
	}
	if cfg2.Tools["arrow"]["color"] != "#112233" {
		t.Errorf("Tool section lost: %v", cfg2.Tools)
	}

	// Check theme persistence
	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.rc")
	if err := os.WriteFile(path, []byte("theme = light\n[editor]\nhistory_capacity = 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHOTMARK_THEME", "dark")
	t.Setenv("SHOTMARK_DEBOUNCE_MS", "90")
	t.Setenv("SHOTMARK_NOTIFY_SAVE", "true")

	cfg, err := NewLoader("test", path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Errorf("theme = %q, want env value", cfg.Theme)
	}
	if cfg.Editor.HistoryCapacity != 30 || cfg.Editor.Debounce != 90*time.Millisecond {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	if !cfg.Notify.Save {
		t.Error("notify.save not overridden")
	}

	t.Setenv("SHOTMARK_HISTORY_CAPACITY", "1")
	if _, err := NewLoader("test", path).Load(); err == nil {
		t.Error("capacity below 2 accepted from the environment")
	}
}

func TestResolveTheme(t *testing.T) {
	cfg, err := Parse(strings.NewReader("theme = mine\n[theme.mine]\nmarquee = orange\n"))
	if err != nil {
		t.Fatal(err)
	}
	l := &theme.Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}
	th, err := cfg.ResolveTheme(l)
	if err != nil || th != cfg.Themes["mine"] {
		t.Fatalf("inline theme = %v, %v", th, err)
	}

	cfg.Theme = "missing"
	th, err = cfg.ResolveTheme(l)
	if err == nil || th == nil || th.Name != "Default" {
		t.Fatalf("missing theme = %v, %v", th, err)
	}
}

func TestLoaderPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	override := filepath.Join(t.TempDir(), "custom.rc")

	l := NewLoader("test", override)
	if got := l.GetConfigPath(); got != "" {
		t.Fatalf("no files yet, got %q", got)
	}
	want := filepath.Join(home, ".config", "shotmark", "config.rc")
	if got, err := l.SavePath(); err != nil || got != want {
		t.Fatalf("SavePath = %q, %v; want %q", got, err, want)
	}

	if err := os.WriteFile(override, []byte("theme = light\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := l.GetConfigPath(); got != override {
		t.Fatalf("GetConfigPath = %q, want override", got)
	}
	if got, _ := l.SavePath(); got != override {
		t.Fatalf("SavePath = %q, want the file in use", got)
	}
}
