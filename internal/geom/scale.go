package geom

import (
	"image"
	"math"
)

// Scale converts between edit space and background space. X and Y are
// backgroundSize / editSize on each axis.
type Scale struct {
	X, Y float64
}

// Unit is the identity scale used when edit space matches the background.
var Unit = Scale{X: 1, Y: 1}

// NewScale computes the factors for a background of size bg shown in an edit
// surface of size edit. Degenerate sizes yield Unit.
func NewScale(bg, edit image.Point) Scale {
	if bg.X <= 0 || bg.Y <= 0 || edit.X <= 0 || edit.Y <= 0 {
		return Unit
	}
	return Scale{X: float64(bg.X) / float64(edit.X), Y: float64(bg.Y) / float64(edit.Y)}
}

// Inverse returns the background-to-edit factors.
func (s Scale) Inverse() Scale {
	return Scale{X: 1 / s.X, Y: 1 / s.Y}
}

// ToBackground converts an edit-space rectangle to the background pixels it
// covers, rounding outward.
func (s Scale) ToBackground(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Min.X*s.X+Epsilon)), int(math.Floor(r.Min.Y*s.Y+Epsilon)),
		int(math.Ceil(r.Max.X*s.X-Epsilon)), int(math.Ceil(r.Max.Y*s.Y-Epsilon)),
	)
}

// ToEdit converts background pixels back to an edit-space rectangle.
func (s Scale) ToEdit(r image.Rectangle) Rect {
	return Rect{
		Min: Point{X: float64(r.Min.X) / s.X, Y: float64(r.Min.Y) / s.Y},
		Max: Point{X: float64(r.Max.X) / s.X, Y: float64(r.Max.Y) / s.Y},
	}
}

// Length converts an edit-space length using the larger axis factor. It
// suits isotropic quantities such as a blur radius; pen shapes must scale
// each axis separately.
func (s Scale) Length(v float64) float64 {
	return v * math.Max(s.X, s.Y)
}
