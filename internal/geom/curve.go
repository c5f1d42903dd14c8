package geom

import (
	"math"

	"github.com/gogpu/gg"
)

// HeadAngle is the angle between the arrow shaft tangent and each head wing.
const HeadAngle = math.Pi / 6

// QuadraticControlPoint returns the control point of the quadratic curve from
// start to end that passes through middle at t = 0.5.
func QuadraticControlPoint(start, middle, end Point) Point {
	return middle.Mul(2).Sub(start.Add(end).Mul(0.5))
}

// EvaluateQuadratic returns the point at t on the quadratic curve.
func EvaluateQuadratic(start, control, end Point, t float64) Point {
	return gg.NewQuadBez(start, control, end).Eval(t)
}

// CurveBounds returns the exact bounding box of the quadratic curve. Interior
// extrema are only taken where 0 < t < 1.
func CurveBounds(start, control, end Point) Rect {
	q := gg.NewQuadBez(start, control, end)
	r := RectFromPoints(start, end)
	for _, t := range q.Extrema() {
		p := q.Eval(t)
		r = r.Union(Rect{Min: p, Max: p})
	}
	return r
}

// Head holds the arrowhead triangle: the tip and the two wing points.
type Head struct {
	Tip   Point
	Left  Point
	Right Point
	Angle float64
}

// Points returns the head as a closed triangle, tip first.
func (h Head) Points() []Point {
	return []Point{h.Left, h.Tip, h.Right}
}

// ArrowHeadGeometry computes the arrowhead at end. The tangent comes from
// end - control and falls back to end - start when end and control nearly
// coincide, which happens for straight arrows dragged back on themselves.
func ArrowHeadGeometry(start, control, end Point, headLength float64) Head {
	dir := end.Sub(control)
	if dir.Length() < Epsilon {
		dir = end.Sub(start)
	}
	angle := math.Atan2(dir.Y, dir.X)
	wing := func(a float64) Point {
		return Point{
			X: end.X - headLength*math.Cos(a),
			Y: end.Y - headLength*math.Sin(a),
		}
	}
	return Head{
		Tip:   end,
		Left:  wing(angle - HeadAngle),
		Right: wing(angle + HeadAngle),
		Angle: angle,
	}
}

// DistanceToSegment returns the distance from p to the segment a-b.
func DistanceToSegment(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.LengthSquared()
	if l2 == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Distance(a.Add(ab.Mul(t)))
}

// DistanceToQuadratic approximates the distance from p to the curve by
// sampling it as a polyline.
func DistanceToQuadratic(p, start, control, end Point, segments int) float64 {
	if segments < 1 {
		segments = 1
	}
	best := math.Inf(1)
	prev := start
	for i := 1; i <= segments; i++ {
		next := EvaluateQuadratic(start, control, end, float64(i)/float64(segments))
		best = math.Min(best, DistanceToSegment(p, prev, next))
		prev = next
	}
	return best
}

// PointInPolygon reports whether p lies inside the closed polygon using the
// even-odd rule.
func PointInPolygon(p Point, poly []Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
