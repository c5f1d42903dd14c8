package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/scene"
)

// Patch composites p onto dst under the edit-to-destination transform m.
// When the transformed placement lines up with the patch's own pixel grid the
// image is copied unchanged; otherwise it is resampled.
func Patch(dst *image.RGBA, p *scene.Patch, m geom.Matrix) {
	if p.Image == nil || p.Image.Bounds().Empty() {
		return
	}
	target := m.ApplyRect(p.Placement())
	src := image.Image(p.Image)
	sb := p.Image.Bounds()
	at, exact := pixelAligned(target, sb.Size())
	if !exact {
		r := target.Image()
		if r.Empty() {
			return
		}
		src = imaging.Resize(p.Image, r.Dx(), r.Dy(), imaging.Linear)
		sb = src.Bounds()
		at = r.Min
	}
	rect := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	if op := clamp01(p.Paint.Opacity); op < 1 {
		mask := image.NewUniform(color.Alpha{A: uint8(op*255 + 0.5)})
		draw.DrawMask(dst, rect, src, sb.Min, mask, image.Point{}, draw.Over)
		return
	}
	draw.Draw(dst, rect, src, sb.Min, draw.Over)
}

// pixelAligned reports whether r starts on an integer pixel and has exactly
// size pixels.
func pixelAligned(r geom.Rect, size image.Point) (image.Point, bool) {
	const tol = 1e-3
	x, y := math.Round(r.Min.X), math.Round(r.Min.Y)
	if math.Abs(r.Min.X-x) > tol || math.Abs(r.Min.Y-y) > tol {
		return image.Point{}, false
	}
	if math.Abs(r.Width()-float64(size.X)) > tol || math.Abs(r.Height()-float64(size.Y)) > tol {
		return image.Point{}, false
	}
	return image.Pt(int(x), int(y)), true
}
