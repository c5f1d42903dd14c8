package params

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/scene"
)

// Tool names.
const (
	ToolSelect = "select"
	ToolArrow  = "arrow"
	ToolShape  = "shape"
	ToolInk    = "ink"
	ToolEffect = "effect"
)

// Parameter keys shared by several tools.
const (
	KeyColor     = "color"
	KeyWidth     = "width"
	KeyOpacity   = "opacity"
	KeyDashed    = "dashed"
	KeyHead      = "head"
	KeyKind      = "kind"
	KeyFill      = "fill"
	KeyFillColor = "fill_color"
	KeyEffect    = "effect"
	KeyMode      = "mode"
	KeyStrength  = "strength"
	KeyBrush     = "brush"
)

// Effect tool modes.
const (
	ModeArea  = "area"
	ModeBrush = "brush"
)

// PaletteColor is a named toolbar swatch.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var (
	paletteMu sync.RWMutex
	palette   = []PaletteColor{
		{"Red", color.RGBA{229, 57, 53, 255}},
		{"Black", color.RGBA{0, 0, 0, 255}},
		{"White", color.RGBA{255, 255, 255, 255}},
		{"Lime", color.RGBA{0, 255, 0, 255}},
		{"Blue", color.RGBA{0, 0, 255, 255}},
		{"Yellow", color.RGBA{255, 255, 0, 255}},
		{"Cyan", color.RGBA{0, 255, 255, 255}},
		{"Magenta", color.RGBA{255, 0, 255, 255}},
		{"Maroon", color.RGBA{128, 0, 0, 255}},
		{"Green", color.RGBA{0, 128, 0, 255}},
		{"Navy", color.RGBA{0, 0, 128, 255}},
		{"Teal", color.RGBA{0, 128, 128, 255}},
		{"Gray", color.RGBA{128, 128, 128, 255}},
	}
)

var (
	widthsMu sync.RWMutex
	widths   = []int{1, 2, 4, 6, 8}
)

// Palette returns a copy of the toolbar swatches.
func Palette() []PaletteColor {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// EnsurePaletteColor makes sure col is present in the palette and returns its index.
func EnsurePaletteColor(col color.RGBA, name string) int {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	for idx, existing := range palette {
		if existing.Color == col {
			if name != "" && existing.Name == "" {
				palette[idx].Name = name
			}
			return idx
		}
	}
	if name == "" {
		name = fmt.Sprintf("#%02X%02X%02X", col.R, col.G, col.B)
	}
	palette = append(palette, PaletteColor{Name: name, Color: col})
	return len(palette) - 1
}

// WidthOptions returns a copy of the available stroke widths.
func WidthOptions() []int {
	widthsMu.RLock()
	defer widthsMu.RUnlock()
	out := make([]int, len(widths))
	copy(out, widths)
	return out
}

// EnsureWidth makes sure width is included in the options and returns its index.
func EnsureWidth(width int) int {
	if width < 1 {
		width = 1
	}
	widthsMu.Lock()
	defer widthsMu.Unlock()
	for idx, existing := range widths {
		if existing == width {
			return idx
		}
	}
	widths = append(widths, width)
	sort.Ints(widths)
	for idx, existing := range widths {
		if existing == width {
			return idx
		}
	}
	return 0
}

func kindNames(kinds []scene.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func effectNames() []string {
	var out []string
	for _, k := range effect.Kinds() {
		out = append(out, string(k))
	}
	return out
}

// DefaultStore returns a store with every tool's parameters declared.
func DefaultStore() *Store {
	s := NewStore()
	red := scene.FormatColor(palette[0].Color)
	stroke := func(width int) []Spec {
		return []Spec{
			{Key: KeyColor, Label: "Colour", Kind: KindColor, Default: red},
			{Key: KeyWidth, Label: "Width", Kind: KindNumber, Default: strconv.Itoa(width), Min: 1, Max: 64},
			{Key: KeyOpacity, Label: "Opacity", Kind: KindNumber, Default: "1", Min: 0.05, Max: 1},
		}
	}
	s.Define(ToolSelect)
	s.Define(ToolArrow, append(stroke(4),
		Spec{Key: KeyDashed, Label: "Dashed", Kind: KindBool, Default: "false"},
		Spec{Key: KeyHead, Label: "Head length", Kind: KindNumber, Default: "0", Min: 0, Max: 200},
	)...)
	s.Define(ToolShape, append(stroke(4),
		Spec{Key: KeyKind, Label: "Shape", Kind: KindChoice, Default: string(scene.KindRectangle), Choices: kindNames(scene.ShapeKinds())},
		Spec{Key: KeyFill, Label: "Fill", Kind: KindBool, Default: "false"},
		Spec{Key: KeyFillColor, Label: "Fill colour", Kind: KindColor, Default: "#e5393540", ShowWhen: map[string][]string{KeyFill: {"true"}}},
	)...)
	s.Define(ToolInk, stroke(4)...)
	s.Define(ToolEffect,
		Spec{Key: KeyEffect, Label: "Effect", Kind: KindChoice, Default: string(effect.KindMosaic), Choices: effectNames()},
		Spec{Key: KeyMode, Label: "Mode", Kind: KindChoice, Default: ModeArea, Choices: []string{ModeArea, ModeBrush}},
		Spec{Key: KeyStrength, Label: "Strength", Kind: KindNumber, Default: "10", Min: 1, Max: 100},
		Spec{Key: KeyBrush, Label: "Brush width", Kind: KindNumber, Default: "20", Min: 1, Max: 200, ShowWhen: map[string][]string{KeyMode: {ModeBrush}}},
	)
	return s
}

// Seed applies values read from configuration, such as the [tool.<name>]
// sections of the rc file. Unknown tools and keys are reported together.
func (s *Store) Seed(values map[string]map[string]string) error {
	var errs []string
	for tool, kv := range values {
		for k, v := range kv {
			if err := s.Set(tool, k, v); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("params: %s", strings.Join(errs, "; "))
	}
	return nil
}
