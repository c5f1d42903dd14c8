package scene

import (
	"math"

	"github.com/example/shotmark/internal/geom"
)

// Arrow is a quadratic curve with a filled head at its end. The three world
// points are the only source of truth; everything else is derived by
// RecalculateGeometry.
type Arrow struct {
	Common
	HeadLength float64
	Dashed     bool

	start, middle, end geom.Point

	control geom.Point
	head    geom.Head
	bounds  geom.Rect
	origin  geom.Point
	anchor  geom.Point
	local   [3]geom.Point
	shaft   Path
	tip     Path
}

// DefaultHeadLength scales the head with the stroke width.
func DefaultHeadLength(width float64) float64 {
	return math.Max(12, width*4)
}

// NewArrow creates an arrow from start to end with a straight shaft.
func NewArrow(start, end geom.Point, p Paint) *Arrow {
	a := &Arrow{Common: newCommon(p), HeadLength: DefaultHeadLength(p.Width)}
	a.SetWorldGeometry(start, end, nil)
	return a
}

func (a *Arrow) Kind() Kind { return KindArrow }

// SetWorldGeometry replaces the world points and recomputes all derived
// geometry. A nil middle places it halfway between start and end.
func (a *Arrow) SetWorldGeometry(start, end geom.Point, middle *geom.Point) {
	a.start, a.end = start, end
	if middle != nil {
		a.middle = *middle
	} else {
		a.middle = geom.Midpoint(start, end)
	}
	a.RecalculateGeometry()
}

// RecalculateGeometry derives, in order: control point, head, padded bounds,
// the local frame at the bounds' top-left, the local paths and the anchor at
// the bounds' centre. It must run after every world point change.
func (a *Arrow) RecalculateGeometry() {
	headLen := a.HeadLength
	if headLen <= 0 {
		headLen = DefaultHeadLength(a.Paint.Width)
	}
	a.control = geom.QuadraticControlPoint(a.start, a.middle, a.end)
	a.head = geom.ArrowHeadGeometry(a.start, a.control, a.end, headLen)

	b := geom.CurveBounds(a.start, a.control, a.end).Union(geom.BoundsOf(a.head.Points()...))
	a.bounds = b.Inset(-math.Max(a.Paint.Width, 1))
	a.origin = a.bounds.Min

	toLocal := func(p geom.Point) geom.Point { return p.Sub(a.origin) }
	a.local = [3]geom.Point{toLocal(a.start), toLocal(a.middle), toLocal(a.end)}
	a.shaft = Path{
		{Op: MoveTo, Pts: []geom.Point{a.local[0]}},
		{Op: QuadTo, Pts: []geom.Point{toLocal(a.control), a.local[2]}},
	}
	a.tip = Path{
		{Op: MoveTo, Pts: []geom.Point{toLocal(a.head.Left)}},
		{Op: LineTo, Pts: []geom.Point{a.local[2]}},
		{Op: LineTo, Pts: []geom.Point{toLocal(a.head.Right)}},
		{Op: Close},
	}
	a.anchor = a.bounds.Center()
}

// WorldPoints returns start, middle and end.
func (a *Arrow) WorldPoints() (start, middle, end geom.Point) {
	return a.start, a.middle, a.end
}

// Control is the derived quadratic control point.
func (a *Arrow) Control() geom.Point { return a.control }

// Head is the derived arrowhead.
func (a *Arrow) Head() geom.Head { return a.head }

func (a *Arrow) Bounds() geom.Rect { return a.bounds }

// Origin is the world position of the local frame.
func (a *Arrow) Origin() geom.Point { return a.origin }

// Anchor is the placement anchor at the centre of the bounds.
func (a *Arrow) Anchor() geom.Point { return a.anchor }

// ShaftPath and HeadPath are in local coordinates; add Origin to place them.
func (a *Arrow) ShaftPath() Path { return a.shaft }
func (a *Arrow) HeadPath() Path  { return a.tip }

// WorldFromLocal re-derives the world points from the anchor and the local
// points.
func (a *Arrow) WorldFromLocal() (start, middle, end geom.Point) {
	origin := a.anchor.Sub(geom.Pt(a.bounds.Width()/2, a.bounds.Height()/2))
	return a.local[0].Add(origin), a.local[1].Add(origin), a.local[2].Add(origin)
}

// Handles exposes the three world points as draggable handles.
func (a *Arrow) Handles() []Handle {
	return []Handle{
		{Name: "start", Position: a.start, Drag: func(p geom.Point) {
			m := a.middle
			a.SetWorldGeometry(p, a.end, &m)
		}},
		{Name: "middle", Position: a.middle, Drag: func(p geom.Point) {
			a.SetWorldGeometry(a.start, a.end, &p)
		}},
		{Name: "end", Position: a.end, Drag: func(p geom.Point) {
			m := a.middle
			a.SetWorldGeometry(a.start, p, &m)
		}},
	}
}

func (a *Arrow) transform(m geom.Matrix) {
	mid := m.Apply(a.middle)
	a.SetWorldGeometry(m.Apply(a.start), m.Apply(a.end), &mid)
}

func (a *Arrow) Clone() Object {
	c := *a
	c.shaft = a.shaft.clone()
	c.tip = a.tip.clone()
	return &c
}
