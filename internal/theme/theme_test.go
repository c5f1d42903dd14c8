package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	src := `Name: Mine
# comment
Marquee: #ff000080
Unknown: #000000
`
	th, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "Mine" {
		t.Fatalf("name = %q", th.Name)
	}
	if th.Marquee != (color.RGBA{255, 0, 0, 128}) {
		t.Fatalf("marquee = %+v", th.Marquee)
	}
	if th.HandleFill != Default().HandleFill {
		t.Fatal("unset key lost its default")
	}
}

func TestParseRejectsBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Marquee: notacolour")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoaderEmbedded(t *testing.T) {
	l := &Loader{ConfigDir: t.TempDir(), SystemDir: t.TempDir()}
	th, err := l.Load("dark")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Name != "Dark" {
		t.Fatalf("name = %q", th.Name)
	}
	if _, err := l.Load("no-such-theme"); err == nil {
		t.Fatal("expected missing theme error")
	}
	if th, err := l.Load(""); err != nil || th.Name != "Default" {
		t.Fatalf("empty name = %v, %v", th, err)
	}
}

func TestParseNamedColor(t *testing.T) {
	th, err := Parse(strings.NewReader("HandleFill: Gold"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.HandleFill != (color.RGBA{255, 215, 0, 255}) {
		t.Fatalf("HandleFill = %+v", th.HandleFill)
	}
}

func TestLoaderList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Name: Mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dark.theme"), []byte("Name: Shadow\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir, SystemDir: filepath.Join(dir, "missing")}
	got := strings.Join(l.List(), ",")
	if got != "dark,light,mine" {
		t.Fatalf("List = %q", got)
	}
}

func TestSetAcceptsSnakeCase(t *testing.T) {
	th := Default()
	if err := th.Set("selection_frame", "#00ff00"); err != nil {
		t.Fatal(err)
	}
	if th.SelectionFrame != (color.RGBA{0, 255, 0, 255}) {
		t.Fatalf("SelectionFrame = %+v", th.SelectionFrame)
	}
	if err := th.Set("MARQUEE_FILL", "bogus"); err == nil || !strings.Contains(err.Error(), "MARQUEE_FILL") {
		t.Fatalf("bad colour error = %v", err)
	}
	if err := th.Set("sparkle", "red"); err != nil {
		t.Fatalf("unknown key = %v", err)
	}
}

func TestColorsInDeclarationOrder(t *testing.T) {
	cols := Default().Colors()
	if len(cols) != 15 || cols[0].Key != "Background" || cols[len(cols)-1].Key != "MarqueeFill" {
		t.Fatalf("Colors = %+v", cols)
	}
}

func TestParseReportsLine(t *testing.T) {
	_, err := Parse(strings.NewReader("Name: X\n\nHandleFill: nope\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("Parse = %v", err)
	}
}
