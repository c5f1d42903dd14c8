package scene

import (
	"slices"

	"github.com/example/shotmark/internal/geom"
)

// Stroke is a freehand ink polyline.
type Stroke struct {
	Common
	Points []geom.Point

	bounds geom.Rect
}

// NewStroke creates a stroke through pts.
func NewStroke(pts []geom.Point, p Paint) *Stroke {
	s := &Stroke{Common: newCommon(p)}
	s.SetPoints(pts)
	return s
}

func (s *Stroke) Kind() Kind { return KindStroke }

// SetPoints replaces the polyline.
func (s *Stroke) SetPoints(pts []geom.Point) {
	s.Points = slices.Clone(pts)
	s.recalc()
}

// Append extends the polyline, skipping a point equal to the last one.
func (s *Stroke) Append(p geom.Point) bool {
	if n := len(s.Points); n > 0 && geom.Near(s.Points[n-1], p, geom.Epsilon) {
		return false
	}
	s.Points = append(s.Points, p)
	s.recalc()
	return true
}

func (s *Stroke) recalc() {
	s.bounds = geom.BoundsOf(s.Points...).Inset(-s.Paint.Width / 2)
}

func (s *Stroke) Bounds() geom.Rect { return s.bounds }

// PathBounds is the bounding box of the points without stroke padding.
func (s *Stroke) PathBounds() geom.Rect { return geom.BoundsOf(s.Points...) }

func (s *Stroke) Clone() Object {
	c := *s
	c.Points = slices.Clone(s.Points)
	return &c
}
