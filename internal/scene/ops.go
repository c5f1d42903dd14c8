package scene

import (
	"fmt"
	"math"

	"github.com/example/shotmark/internal/geom"
)

// curveSamples is the polyline resolution used for arrow hit-testing.
const curveSamples = 32

// minFrame is the smallest edge a scale handle can shrink an object to.
const minFrame = 2

// Handle is a draggable control point on a selected object.
type Handle struct {
	Name     string
	Position geom.Point
	// Drag moves the handle to p, updating the owning object.
	Drag func(p geom.Point)
}

// HitTest reports whether p touches o within tol edit pixels.
func HitTest(o Object, p geom.Point, tol float64) bool {
	if !o.Bounds().Inset(-tol).Contains(p) {
		return false
	}
	switch o := o.(type) {
	case *Arrow:
		reach := tol + o.Paint.Width/2
		if geom.DistanceToQuadratic(p, o.start, o.control, o.end, curveSamples) <= reach {
			return true
		}
		return geom.PointInPolygon(p, o.head.Points())
	case *Shape:
		return hitShape(o, p, tol)
	case *Stroke:
		reach := tol + o.Paint.Width/2
		if len(o.Points) == 1 {
			return o.Points[0].Distance(p) <= reach
		}
		for i := 1; i < len(o.Points); i++ {
			if geom.DistanceToSegment(p, o.Points[i-1], o.Points[i]) <= reach {
				return true
			}
		}
		return false
	case *Patch:
		return o.Opaque(p)
	}
	panic(fmt.Sprintf("scene: unhandled object %T", o))
}

func hitShape(s *Shape, p geom.Point, tol float64) bool {
	reach := tol + s.Paint.Width/2
	if s.Shape == KindCircle || s.Shape == KindEllipse {
		c := s.Rect.Center()
		rx, ry := s.Radii()
		if rx+reach <= 0 || ry+reach <= 0 {
			return false
		}
		dx := (p.X - c.X) / (rx + reach)
		dy := (p.Y - c.Y) / (ry + reach)
		return dx*dx+dy*dy <= 1
	}
	if geom.PointInPolygon(p, s.vertices) {
		return true
	}
	for i := range s.vertices {
		a, b := s.vertices[i], s.vertices[(i+1)%len(s.vertices)]
		if geom.DistanceToSegment(p, a, b) <= reach {
			return true
		}
	}
	return false
}

// Frame is the geometric box a scale handle resizes: the shape rectangle, the
// stroke path bounds, the patch placement or the arrow's curve bounds.
func Frame(o Object) geom.Rect {
	switch o := o.(type) {
	case *Arrow:
		return geom.CurveBounds(o.start, o.control, o.end)
	case *Shape:
		return o.Rect
	case *Stroke:
		return o.PathBounds()
	case *Patch:
		return o.Placement()
	}
	panic(fmt.Sprintf("scene: unhandled object %T", o))
}

// Translate moves o by d.
func Translate(o Object, d geom.Point) {
	Transform(o, geom.Translate(d.X, d.Y))
}

// Transform applies the affine map m to o. Shapes and patches stay axis
// aligned, so only translation and scale components are meaningful.
func Transform(o Object, m geom.Matrix) {
	switch o := o.(type) {
	case *Arrow:
		o.transform(m)
	case *Shape:
		o.SetRect(m.ApplyRect(o.Rect))
	case *Stroke:
		pts := make([]geom.Point, len(o.Points))
		for i, p := range o.Points {
			pts[i] = m.Apply(p)
		}
		o.SetPoints(pts)
	case *Patch:
		o.transform(m)
	default:
		panic(fmt.Sprintf("scene: unhandled object %T", o))
	}
}

// RotateOffset is how far above its frame a rotate handle sits.
const RotateOffset = 24

// Handles returns the manipulation handles of o. Arrows expose their world
// points; every other variant gets four corner scale handles that pin the
// opposite corner. Arrows and strokes also get a rotate handle.
func Handles(o Object) []Handle {
	switch o := o.(type) {
	case *Arrow:
		return append(o.Handles(), rotateHandle(o))
	case *Stroke:
		return append(cornerHandles(o), rotateHandle(o))
	}
	return cornerHandles(o)
}

// rotateHandle turns o about its frame centre as the handle moves around it.
// The centre is fixed when the handle is created so a drag does not drift.
func rotateHandle(o Object) Handle {
	f := Frame(o)
	c := f.Center()
	pos := geom.Pt(c.X, f.Min.Y-RotateOffset)
	prev := math.Atan2(pos.Y-c.Y, pos.X-c.X)
	return Handle{
		Name:     "rotate",
		Position: pos,
		Drag: func(p geom.Point) {
			if p == c {
				return
			}
			a := math.Atan2(p.Y-c.Y, p.X-c.X)
			Transform(o, geom.RotateAbout(c, a-prev))
			prev = a
		},
	}
}

func cornerHandles(o Object) []Handle {
	f := Frame(o)
	corners := f.Corners()
	names := [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}
	out := make([]Handle, 4)
	for i := range corners {
		fixed := corners[(i+2)%4]
		out[i] = Handle{
			Name:     names[i],
			Position: corners[i],
			Drag: func(p geom.Point) {
				target := geom.RectFromPoints(fixed, p)
				if target.Width() < minFrame || target.Height() < minFrame {
					target = geom.RectFromPoints(fixed, geom.Pt(
						fixed.X+math.Copysign(math.Max(math.Abs(p.X-fixed.X), minFrame), p.X-fixed.X),
						fixed.Y+math.Copysign(math.Max(math.Abs(p.Y-fixed.Y), minFrame), p.Y-fixed.Y),
					))
				}
				Transform(o, geom.RectToRect(Frame(o), target))
			},
		}
	}
	return out
}

// HandleAt returns the handle of o within tol of p.
func HandleAt(o Object, p geom.Point, tol float64) (Handle, bool) {
	for _, h := range Handles(o) {
		if h.Position.Distance(p) <= tol {
			return h, true
		}
	}
	return Handle{}, false
}
