package ui

import (
	"image"
	"image/color"
	"slices"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/params"
)

const (
	statusHeight = 22
	buttonHeight = 22
	swatchSize   = 14
	gap          = 4
	// settingsHeight is the row of tool settings above the status line.
	settingsHeight = buttonHeight + 2*gap
	// maxWindow bounds the initial window so large captures still fit on
	// screen; the edit space is scaled down to match.
	maxWindowW = 1600
	maxWindowH = 1000
)

var toolLabels = map[string]string{
	params.ToolSelect: "V:Select",
	params.ToolArrow:  "A:Arrow",
	params.ToolShape:  "R:Shape",
	params.ToolInk:    "P:Ink",
	params.ToolEffect: "M:Effect",
}

type button struct {
	label  string
	action string
	rect   image.Rectangle
	// swatch is set for palette buttons.
	swatch *color.RGBA
}

// layout places the toolbar, the canvas, the settings row and the status
// line in a window.
type layout struct {
	size     image.Point
	toolbar  image.Rectangle
	canvas   image.Rectangle
	settings image.Rectangle
	status   image.Rectangle
	buttons  []button
}

func toolLabel(name string) string {
	if l, ok := toolLabels[name]; ok {
		return l
	}
	return name
}

// toolbarWidth fits the widest tool label and two columns of swatches.
func toolbarWidth(tools []string) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := 2*swatchSize + 3*gap
	for _, name := range tools {
		w = max(w, d.MeasureString(toolLabel(name)).Ceil()+2*gap+4)
	}
	return w
}

func newLayout(size image.Point, tools []string, palette []params.PaletteColor) layout {
	tw := toolbarWidth(tools)
	l := layout{
		size:     size,
		toolbar:  image.Rect(0, 0, tw, size.Y-statusHeight),
		canvas:   image.Rect(tw, 0, size.X, size.Y-statusHeight-settingsHeight),
		settings: image.Rect(tw, size.Y-statusHeight-settingsHeight, size.X, size.Y-statusHeight),
		status:   image.Rect(0, size.Y-statusHeight, size.X, size.Y),
	}
	y := gap
	for _, name := range tools {
		l.buttons = append(l.buttons, button{
			label:  toolLabel(name),
			action: "tool:" + name,
			rect:   image.Rect(gap, y, tw-gap, y+buttonHeight),
		})
		y += buttonHeight + gap
	}
	y += gap
	for i, pc := range palette {
		col, row := i%2, i/2
		x0 := gap + col*(swatchSize+gap)
		y0 := y + row*(swatchSize+gap)
		c := pc.Color
		l.buttons = append(l.buttons, button{
			label:  pc.Name,
			action: "color:" + strconv.Itoa(i),
			rect:   image.Rect(x0, y0, x0+swatchSize, y0+swatchSize),
			swatch: &c,
		})
	}
	return l
}

// withSettings returns a copy of l with buttons for the active tool's
// settings. Choices and switches cycle on click; numbers get - and +
// buttons around a plain label.
func (l layout) withSettings(settings []Setting) layout {
	out := l
	out.buttons = slices.Clone(l.buttons)
	d := &font.Drawer{Face: basicfont.Face7x13}
	x, y := l.settings.Min.X+gap, l.settings.Min.Y+gap
	add := func(text, action string) {
		w := d.MeasureString(text).Ceil() + 2*gap + 4
		out.buttons = append(out.buttons, button{
			label:  text,
			action: action,
			rect:   image.Rect(x, y, x+w, y+buttonHeight),
		})
		x += w + gap
	}
	for _, st := range settings {
		switch st.Kind {
		case params.KindNumber:
			add("-", "step:"+st.Key+":-1")
			add(st.Label+" "+st.Value, "")
			add("+", "step:"+st.Key+":+1")
		case params.KindColor:
			add(st.Label+" "+st.Value, "")
		default:
			add(st.Label+": "+st.Value, "cycle:"+st.Key)
		}
		x += gap
	}
	return out
}

func (l layout) buttonAt(p image.Point) (int, bool) {
	for i, b := range l.buttons {
		if p.In(b.rect) {
			return i, true
		}
	}
	return -1, false
}

// toEdit maps a window pixel to edit space.
func (l layout) toEdit(p image.Point) geom.Point {
	return geom.Pt(float64(p.X-l.canvas.Min.X), float64(p.Y-l.canvas.Min.Y))
}

// fitEdit returns the largest size with the aspect ratio of bg that fits in
// area, never enlarging bg.
func fitEdit(bg, area image.Point) image.Point {
	if bg.X <= 0 || bg.Y <= 0 || area.X <= 0 || area.Y <= 0 {
		return bg
	}
	z := min(1, float64(area.X)/float64(bg.X), float64(area.Y)/float64(bg.Y))
	return image.Pt(max(1, int(float64(bg.X)*z)), max(1, int(float64(bg.Y)*z)))
}

// windowSize is the initial window for a background of size bg.
func windowSize(bg image.Point, tools []string) image.Point {
	tw := toolbarWidth(tools)
	bars := statusHeight + settingsHeight
	edit := fitEdit(bg, image.Pt(maxWindowW-tw, maxWindowH-bars))
	return image.Pt(edit.X+tw, edit.Y+bars)
}
