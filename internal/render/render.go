// Package render rasterizes scene objects onto RGBA buffers. Vector objects
// are drawn with gg; patches are composited directly so that a patch placed
// at background resolution is copied pixel for pixel.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/scene"
)

// Options control a render pass.
type Options struct {
	// Transform maps edit space to destination pixels.
	Transform geom.Matrix
	// Export skips objects flagged exclude-from-export.
	Export bool
}

// EditOptions draws edit-space objects 1:1.
func EditOptions() Options { return Options{Transform: geom.Identity()} }

// ExportOptions maps edit space to background pixels using s.
func ExportOptions(s geom.Scale) Options {
	return Options{Transform: geom.ScaleXY(s.X, s.Y), Export: true}
}

// Objects draws objs bottom to top onto dst.
func Objects(dst *image.RGBA, objs []scene.Object, opts Options) error {
	r := &rasterizer{dst: dst, m: opts.Transform}
	defer r.close()
	for _, o := range objs {
		if opts.Export && o.Base().ExcludeFromExport {
			continue
		}
		var err error
		switch v := o.(type) {
		case *scene.Patch:
			r.flush()
			Patch(dst, v, r.m)
		case *scene.Arrow:
			err = r.arrow(v)
		case *scene.Shape:
			err = r.shape(v)
		case *scene.Stroke:
			err = r.stroke(v)
		default:
			err = fmt.Errorf("render: unsupported object %T", o)
		}
		if err != nil {
			return err
		}
	}
	r.flush()
	return nil
}

// rasterizer batches consecutive vector objects into one gg context, which
// is composited onto dst before any patch is drawn so z-order is preserved.
type rasterizer struct {
	dst   *image.RGBA
	m     geom.Matrix
	dc    *gg.Context
	dirty bool
}

func (r *rasterizer) context() *gg.Context {
	if r.dc == nil {
		b := r.dst.Bounds()
		r.dc = gg.NewContext(b.Dx(), b.Dy())
	}
	r.dirty = true
	return r.dc
}

func (r *rasterizer) flush() {
	if !r.dirty {
		return
	}
	b := r.dst.Bounds()
	draw.Draw(r.dst, b, r.dc.Image(), image.Point{}, draw.Over)
	r.dc.Clear()
	r.dirty = false
}

func (r *rasterizer) close() {
	if r.dc != nil {
		_ = r.dc.Close()
		r.dc = nil
	}
}

// pt maps an edit-space point into context pixels.
func (r *rasterizer) pt(p geom.Point) geom.Point {
	p = r.m.Apply(p)
	b := r.dst.Bounds()
	return geom.Pt(p.X-float64(b.Min.X), p.Y-float64(b.Min.Y))
}

func (r *rasterizer) width(w float64) float64 {
	return w * math.Sqrt(math.Abs(r.m.Determinant()))
}

func setPaint(dc *gg.Context, c color.RGBA, opacity float64) {
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255*clamp01(opacity))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (r *rasterizer) arrow(a *scene.Arrow) error {
	dc := r.context()
	p := a.Paint
	start, _, end := a.WorldPoints()
	s, c, e := r.pt(start), r.pt(a.Control()), r.pt(end)
	w := r.width(p.Width)

	setPaint(dc, p.Color, p.Opacity)
	dc.SetLineWidth(w)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	if a.Dashed {
		dc.SetDash(w*3, w*2)
	}
	dc.MoveTo(s.X, s.Y)
	dc.QuadraticTo(c.X, c.Y, e.X, e.Y)
	err := dc.Stroke()
	dc.SetDash()
	if err != nil {
		return fmt.Errorf("arrow shaft: %w", err)
	}

	h := a.Head()
	l, t, rt := r.pt(h.Left), r.pt(h.Tip), r.pt(h.Right)
	dc.MoveTo(l.X, l.Y)
	dc.LineTo(t.X, t.Y)
	dc.LineTo(rt.X, rt.Y)
	dc.ClosePath()
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("arrow head: %w", err)
	}
	return nil
}

func (r *rasterizer) shape(s *scene.Shape) error {
	dc := r.context()
	p := s.Paint
	outline := func() {
		switch s.Shape {
		case scene.KindCircle, scene.KindEllipse:
			rx, ry := s.Radii()
			c := r.pt(s.Rect.Center())
			dc.DrawEllipse(c.X, c.Y, math.Abs(rx*r.m[0]), math.Abs(ry*r.m[3]))
		default:
			for i, v := range s.Vertices() {
				v = r.pt(v)
				if i == 0 {
					dc.MoveTo(v.X, v.Y)
				} else {
					dc.LineTo(v.X, v.Y)
				}
			}
			dc.ClosePath()
		}
	}
	if s.Fill != nil {
		outline()
		setPaint(dc, *s.Fill, p.Opacity)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("shape fill: %w", err)
		}
	}
	if p.Width <= 0 {
		return nil
	}
	outline()
	setPaint(dc, p.Color, p.Opacity)
	dc.SetLineWidth(r.width(p.Width))
	dc.SetLineJoin(gg.LineJoinMiter)
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("shape stroke: %w", err)
	}
	return nil
}

func (r *rasterizer) stroke(s *scene.Stroke) error {
	if len(s.Points) == 0 {
		return nil
	}
	dc := r.context()
	p := s.Paint
	w := r.width(p.Width)
	setPaint(dc, p.Color, p.Opacity)
	if len(s.Points) == 1 {
		c := r.pt(s.Points[0])
		dc.DrawCircle(c.X, c.Y, w/2)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("stroke dot: %w", err)
		}
		return nil
	}
	dc.SetLineWidth(w)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	first := r.pt(s.Points[0])
	dc.MoveTo(first.X, first.Y)
	for _, pt := range s.Points[1:] {
		pt = r.pt(pt)
		dc.LineTo(pt.X, pt.Y)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("stroke: %w", err)
	}
	return nil
}
