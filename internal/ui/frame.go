package ui

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/shotmark/internal/theme"
)

// frame is everything needed to paint one window frame.
type frame struct {
	layout  layout
	view    *image.RGBA
	theme   *theme.Theme
	current string
	hover   int
	status  string
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func border(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}

func label(dst *image.RGBA, r image.Rectangle, s string, c color.RGBA) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13}
	ascent := basicfont.Face7x13.Metrics().Ascent.Ceil()
	y := r.Min.Y + (r.Dy()+ascent)/2 - 1
	d.Dot = fixed.P(r.Min.X+4, y)
	d.DrawString(s)
}

func drawFrame(dst *image.RGBA, f frame) {
	th := f.theme
	if th == nil {
		th = theme.Default()
	}
	l := f.layout
	fill(dst, dst.Bounds(), th.Background)
	if f.view != nil {
		draw.Draw(dst, l.canvas, f.view, image.Point{}, draw.Src)
	}

	fill(dst, l.toolbar, th.ToolbarBackground)
	fill(dst, l.settings, th.ToolbarBackground)
	for i, b := range l.buttons {
		if b.action == "" {
			label(dst, b.rect, b.label, th.Foreground)
			continue
		}
		if b.swatch != nil {
			fill(dst, b.rect, *b.swatch)
			border(dst, b.rect, th.ButtonBorder)
			continue
		}
		bg := th.ButtonBackground
		switch {
		case b.action == "tool:"+f.current:
			bg = th.ButtonActive
		case i == f.hover:
			bg = th.ButtonBackgroundHover
		}
		fill(dst, b.rect, bg)
		border(dst, b.rect, th.ButtonBorder)
		label(dst, b.rect, b.label, th.ButtonText)
	}

	fill(dst, l.status, th.ToolbarBackground)
	label(dst, l.status, f.status, th.Foreground)
}
