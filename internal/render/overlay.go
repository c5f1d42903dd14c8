package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/scene"
	"github.com/example/shotmark/internal/theme"
)

// HandleSize is the on-screen side length of a selection handle.
const HandleSize = 8

// Overlay is the editor chrome drawn over the canvas: selection frames,
// their handles and the marquee rectangle.
type Overlay struct {
	Selected []scene.Object
	// Marquee is the rubber band rectangle in edit space, if any.
	Marquee *geom.Rect
	Theme   *theme.Theme
}

// DrawOverlay paints ov onto dst using m to map edit space to dst pixels.
func DrawOverlay(dst *image.RGBA, ov Overlay, m geom.Matrix) {
	th := ov.Theme
	if th == nil {
		th = theme.Default()
	}
	for _, o := range ov.Selected {
		frame := m.ApplyRect(scene.Frame(o)).Image()
		dashedRect(dst, frame, 4, th.SelectionFrame, color.RGBA{255, 255, 255, 255})
		for _, h := range scene.Handles(o) {
			drawHandle(dst, m.Apply(h.Position), th)
		}
	}
	if ov.Marquee != nil {
		r := m.ApplyRect(*ov.Marquee).Image()
		draw.Draw(dst, r, image.NewUniform(th.MarqueeFill), image.Point{}, draw.Over)
		dashedRect(dst, r, 4, th.Marquee, color.RGBA{})
	}
}

// HandleRect is the screen rectangle of a handle centred on p.
func HandleRect(p geom.Point) image.Rectangle {
	hs := HandleSize / 2
	x, y := int(p.X+0.5), int(p.Y+0.5)
	return image.Rect(x-hs, y-hs, x+hs, y+hs)
}

func drawHandle(dst *image.RGBA, p geom.Point, th *theme.Theme) {
	r := HandleRect(p)
	draw.Draw(dst, r, image.NewUniform(th.HandleFill), image.Point{}, draw.Src)
	outline(dst, r, th.HandleBorder)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}

// dashedRect draws the outline of r alternating c1 and c2 every dash pixels.
// A zero-alpha c2 leaves the gaps untouched.
func dashedRect(dst *image.RGBA, r image.Rectangle, dash int, c1, c2 color.RGBA) {
	if r.Empty() {
		return
	}
	set := func(x, y, i int) {
		c := c1
		if (i/dash)%2 == 1 {
			if c2.A == 0 {
				return
			}
			c = c2
		}
		dst.SetRGBA(x, y, c)
	}
	i := 0
	for x := r.Min.X; x < r.Max.X; x++ {
		set(x, r.Min.Y, i)
		i++
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		set(r.Max.X-1, y, i)
		i++
	}
	for x := r.Max.X - 1; x >= r.Min.X; x-- {
		set(x, r.Max.Y-1, i)
		i++
	}
	for y := r.Max.Y - 1; y >= r.Min.Y; y-- {
		set(r.Min.X, y, i)
		i++
	}
}

// Checkerboard fills rect of dst with squares of the given size, used behind
// transparent regions of the canvas.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	rect = rect.Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}
