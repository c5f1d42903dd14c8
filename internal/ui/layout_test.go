package ui

import (
	"image"
	"image/color"
	"slices"
	"testing"

	"golang.org/x/mobile/event/key"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/theme"
)

var toolNames = []string{params.ToolSelect, params.ToolArrow, params.ToolShape, params.ToolInk, params.ToolEffect}

func TestFitEdit(t *testing.T) {
	tests := []struct {
		bg, area, want image.Point
	}{
		{image.Pt(800, 600), image.Pt(1000, 1000), image.Pt(800, 600)},
		{image.Pt(3840, 2160), image.Pt(1920, 1080), image.Pt(1920, 1080)},
		{image.Pt(1000, 500), image.Pt(500, 500), image.Pt(500, 250)},
		{image.Pt(100, 100), image.Pt(0, 10), image.Pt(100, 100)},
	}
	for _, tc := range tests {
		if got := fitEdit(tc.bg, tc.area); got != tc.want {
			t.Errorf("fitEdit(%v, %v) = %v, want %v", tc.bg, tc.area, got, tc.want)
		}
	}
}

func TestLayoutButtons(t *testing.T) {
	pal := params.Palette()
	l := newLayout(image.Pt(800, 600), toolNames, pal)
	if len(l.buttons) != len(toolNames)+len(pal) {
		t.Fatalf("buttons = %d", len(l.buttons))
	}
	if l.canvas.Min.X != l.toolbar.Max.X || l.status.Min.Y != 600-statusHeight {
		t.Fatalf("canvas %v toolbar %v status %v", l.canvas, l.toolbar, l.status)
	}
	if l.canvas.Max.Y != l.settings.Min.Y || l.settings.Max.Y != l.status.Min.Y {
		t.Fatalf("canvas %v settings %v status %v", l.canvas, l.settings, l.status)
	}
	i, ok := l.buttonAt(l.buttons[1].rect.Min.Add(image.Pt(2, 2)))
	if !ok || l.buttons[i].action != "tool:arrow" {
		t.Fatalf("buttonAt = %d, %v", i, ok)
	}
	sw := l.buttons[len(toolNames)]
	if sw.swatch == nil || *sw.swatch != pal[0].Color || sw.action != "color:0" {
		t.Fatalf("first swatch = %+v", sw)
	}
	if _, ok := l.buttonAt(l.canvas.Min.Add(image.Pt(5, 5))); ok {
		t.Fatal("canvas point hit a button")
	}
	if got := l.toEdit(l.canvas.Min.Add(image.Pt(7, 3))); got != geom.Pt(7, 3) {
		t.Fatalf("toEdit = %v", got)
	}
}

func TestWindowSizeFitsLargeCaptures(t *testing.T) {
	got := windowSize(image.Pt(5120, 2880), toolNames)
	if got.X > maxWindowW || got.Y > maxWindowH {
		t.Fatalf("window = %v", got)
	}
	small := windowSize(image.Pt(300, 200), toolNames)
	if small.Y != 200+statusHeight+settingsHeight {
		t.Fatalf("small window = %v", small)
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		e    key.Event
		want string
	}{
		{key.Event{Code: key.CodeZ, Modifiers: key.ModControl, Direction: key.DirPress}, "undo"},
		{key.Event{Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift, Direction: key.DirPress}, "redo"},
		{key.Event{Code: key.CodeA, Direction: key.DirPress}, "tool:arrow"},
		{key.Event{Code: key.CodeA, Modifiers: key.ModControl, Direction: key.DirPress}, "selectall"},
		{key.Event{Code: key.CodeDeleteBackspace, Direction: key.DirNone}, "delete"},
		{key.Event{Code: key.CodeRightSquareBracket, Direction: key.DirPress}, "width:+1"},
		{key.Event{Code: key.CodeRightSquareBracket, Modifiers: key.ModShift, Direction: key.DirPress}, "step:brush:+1"},
		{key.Event{Code: key.CodeB, Direction: key.DirPress}, "cycle:mode"},
	}
	for _, tc := range tests {
		got, ok := actionFor(tc.e)
		if !ok || got != tc.want {
			t.Errorf("actionFor(%v) = %q, %v; want %q", tc.e.Code, got, ok, tc.want)
		}
	}
	if _, ok := actionFor(key.Event{Code: key.CodeZ, Modifiers: key.ModControl, Direction: key.DirRelease}); ok {
		t.Error("release triggered an action")
	}
	if _, ok := actionFor(key.Event{Code: key.CodeF5, Direction: key.DirPress}); ok {
		t.Error("unbound key triggered an action")
	}
}

func TestDrawFrame(t *testing.T) {
	th := theme.Default()
	l := newLayout(image.Pt(300, 200), toolNames, params.Palette())
	view := image.NewRGBA(image.Rect(0, 0, 50, 50))
	red := color.RGBA{255, 0, 0, 255}
	for i := range view.Pix {
		view.Pix[i] = []uint8{255, 0, 0, 255}[i%4]
	}
	dst := image.NewRGBA(image.Rect(0, 0, 300, 200))
	drawFrame(dst, frame{layout: l, view: view, theme: th, current: params.ToolArrow, hover: -1, status: "ok"})

	if got := dst.RGBAAt(l.canvas.Min.X+10, 10); got != red {
		t.Fatalf("canvas pixel = %v", got)
	}
	if got := dst.RGBAAt(l.canvas.Min.X+100, 100); got != th.Background {
		t.Fatalf("outside view = %v", got)
	}
	active := l.buttons[1].rect
	if got := dst.RGBAAt(active.Max.X-3, active.Min.Y+2); got != th.ButtonActive {
		t.Fatalf("active button = %v", got)
	}
	if got := dst.RGBAAt(l.status.Max.X-2, l.status.Min.Y+2); got != th.ToolbarBackground {
		t.Fatalf("status = %v", got)
	}
}

func TestLayoutSettingsButtons(t *testing.T) {
	l := newLayout(image.Pt(800, 600), toolNames, params.Palette())
	base := len(l.buttons)
	settings := []Setting{
		{Spec: params.Spec{Key: params.KeyMode, Label: "Mode", Kind: params.KindChoice}, Value: params.ModeBrush},
		{Spec: params.Spec{Key: params.KeyBrush, Label: "Brush width", Kind: params.KindNumber}, Value: "20"},
	}
	sl := l.withSettings(settings)
	if len(l.buttons) != base {
		t.Fatal("withSettings modified the base layout")
	}
	var actions []string
	for _, b := range sl.buttons[base:] {
		if !b.rect.In(sl.settings) {
			t.Errorf("button %q at %v outside %v", b.label, b.rect, sl.settings)
		}
		actions = append(actions, b.action)
	}
	want := []string{"cycle:mode", "step:brush:-1", "", "step:brush:+1"}
	if !slices.Equal(actions, want) {
		t.Fatalf("actions = %q, want %q", actions, want)
	}
	if got := sl.buttons[base+2].label; got != "Brush width 20" {
		t.Fatalf("label = %q", got)
	}
	i, ok := sl.buttonAt(sl.buttons[base].rect.Min.Add(image.Pt(1, 1)))
	if !ok || i != base {
		t.Fatalf("buttonAt = %d, %v", i, ok)
	}
}
