package scene

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	"github.com/example/shotmark/internal/geom"
)

// ShapeKinds lists the primitive kinds in toolbar order.
func ShapeKinds() []Kind {
	return []Kind{
		KindRectangle, KindCircle, KindEllipse, KindTriangle, KindDiamond,
		KindPentagon, KindHexagon, KindStar, KindArrowPolygon,
	}
}

// IsShapeKind reports whether k names a shape primitive.
func IsShapeKind(k Kind) bool {
	return slices.Contains(ShapeKinds(), k)
}

// IsPolygonKind reports whether the vertices of k depend nonlinearly on the
// bounding rectangle, so a resize has to rebuild the object.
func IsPolygonKind(k Kind) bool {
	switch k {
	case KindTriangle, KindDiamond, KindPentagon, KindHexagon, KindStar, KindArrowPolygon:
		return true
	}
	return false
}

// Shape is a primitive drawn inside an axis-aligned rectangle.
type Shape struct {
	Common
	Shape Kind
	Rect  geom.Rect
	// Fill is nil for outline-only shapes.
	Fill *color.RGBA

	vertices []geom.Point
	bounds   geom.Rect
}

// NewShape creates a shape of kind k spanning r.
func NewShape(k Kind, r geom.Rect, p Paint, fill *color.RGBA) (*Shape, error) {
	if !IsShapeKind(k) {
		return nil, fmt.Errorf("unknown shape kind %q", k)
	}
	s := &Shape{Common: newCommon(p), Shape: k, Fill: fill}
	s.SetRect(r)
	return s, nil
}

func (s *Shape) Kind() Kind { return s.Shape }

// SetRect moves or resizes the shape and recomputes its outline.
func (s *Shape) SetRect(r geom.Rect) {
	s.Rect = geom.RectFromPoints(r.Min, r.Max)
	s.vertices = shapeVertices(s.Shape, s.Rect)
	s.bounds = s.Rect.Inset(-s.Paint.Width / 2)
}

func (s *Shape) Bounds() geom.Rect { return s.bounds }

// Vertices returns the closed outline for polygonal kinds including the
// rectangle, or nil for circles and ellipses.
func (s *Shape) Vertices() []geom.Point { return s.vertices }

// Radii returns the ellipse radii for circle and ellipse kinds.
func (s *Shape) Radii() (rx, ry float64) {
	rx, ry = s.Rect.Width()/2, s.Rect.Height()/2
	if s.Shape == KindCircle {
		r := math.Min(rx, ry)
		return r, r
	}
	return rx, ry
}

func (s *Shape) Clone() Object {
	c := *s
	c.vertices = slices.Clone(s.vertices)
	if s.Fill != nil {
		f := *s.Fill
		c.Fill = &f
	}
	return &c
}

func shapeVertices(k Kind, r geom.Rect) []geom.Point {
	c := r.Center()
	w, h := r.Width(), r.Height()
	switch k {
	case KindRectangle:
		corners := r.Corners()
		return corners[:]
	case KindTriangle:
		return []geom.Point{geom.Pt(c.X, r.Min.Y), r.Max, geom.Pt(r.Min.X, r.Max.Y)}
	case KindDiamond:
		return []geom.Point{geom.Pt(c.X, r.Min.Y), geom.Pt(r.Max.X, c.Y), geom.Pt(c.X, r.Max.Y), geom.Pt(r.Min.X, c.Y)}
	case KindPentagon:
		return regular(c, w/2, h/2, 5)
	case KindHexagon:
		return regular(c, w/2, h/2, 6)
	case KindStar:
		return star(c, w/2, h/2, 5, 0.5)
	case KindArrowPolygon:
		shaftTop := r.Min.Y + h*0.25
		shaftBottom := r.Min.Y + h*0.75
		neck := r.Min.X + w*0.6
		return []geom.Point{
			geom.Pt(r.Min.X, shaftTop), geom.Pt(neck, shaftTop), geom.Pt(neck, r.Min.Y),
			geom.Pt(r.Max.X, c.Y),
			geom.Pt(neck, r.Max.Y), geom.Pt(neck, shaftBottom), geom.Pt(r.Min.X, shaftBottom),
		}
	}
	return nil
}

// regular places n vertices on the ellipse inscribed in the box, first vertex
// pointing up.
func regular(c geom.Point, rx, ry float64, n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		a := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
		pts[i] = geom.Pt(c.X+rx*math.Cos(a), c.Y+ry*math.Sin(a))
	}
	return pts
}

func star(c geom.Point, rx, ry float64, points int, inner float64) []geom.Point {
	pts := make([]geom.Point, 2*points)
	for i := range pts {
		a := -math.Pi/2 + math.Pi*float64(i)/float64(points)
		f := 1.0
		if i%2 == 1 {
			f = inner
		}
		pts[i] = geom.Pt(c.X+rx*f*math.Cos(a), c.Y+ry*f*math.Sin(a))
	}
	return pts
}
