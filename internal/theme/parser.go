package theme

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strings"

	"github.com/example/shotmark/internal/scene"
)

// NamedColor is one colour slot of a theme.
type NamedColor struct {
	Key   string
	Color color.RGBA
}

var rgbaType = reflect.TypeFor[color.RGBA]()

// Colors lists the colour slots in declaration order.
func (t *Theme) Colors() []NamedColor {
	v := reflect.ValueOf(t).Elem()
	var out []NamedColor
	for i := range v.NumField() {
		if v.Field(i).Type() == rgbaType {
			out = append(out, NamedColor{Key: v.Type().Field(i).Name, Color: v.Field(i).Interface().(color.RGBA)})
		}
	}
	return out
}

// Set assigns a value by key. Keys match field names case-insensitively and
// may use underscores, so "selection_frame" sets SelectionFrame. Unknown
// keys are ignored so older binaries can read newer themes.
func (t *Theme) Set(key, value string) error {
	norm := strings.ReplaceAll(strings.TrimSpace(key), "_", "")
	if strings.EqualFold(norm, "Name") {
		t.Name = value
		return nil
	}
	v := reflect.ValueOf(t).Elem()
	for i := range v.NumField() {
		if !strings.EqualFold(v.Type().Field(i).Name, norm) || v.Field(i).Type() != rgbaType {
			continue
		}
		c, err := scene.ParseColor(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		v.Field(i).Set(reflect.ValueOf(c))
		return nil
	}
	return nil
}

// Parse reads a theme definition. Each line is "Key: value" where value is
// #rrggbb, #rrggbbaa or an SVG colour name. Keys that are not set keep the
// default theme's colour.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if err := t.Set(key, strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("theme line %d: %w", n, err)
		}
	}
	return t, sc.Err()
}
