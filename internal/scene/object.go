// Package scene holds the retained annotation objects drawn over a
// screenshot, the ordered list that owns them and their persisted form.
package scene

import (
	"fmt"
	"image/color"

	"go.jetify.com/typeid/v2"

	"github.com/example/shotmark/internal/geom"
)

// Kind tags an object variant in the persisted format.
type Kind string

const (
	KindArrow  Kind = "arrow"
	KindStroke Kind = "stroke"
	KindPatch  Kind = "patch"

	KindRectangle    Kind = "rectangle"
	KindCircle       Kind = "circle"
	KindEllipse      Kind = "ellipse"
	KindTriangle     Kind = "triangle"
	KindDiamond      Kind = "diamond"
	KindPentagon     Kind = "pentagon"
	KindHexagon      Kind = "hexagon"
	KindStar         Kind = "star"
	KindArrowPolygon Kind = "arrow-polygon"
)

// PrefixObject is the typeid prefix of object ids.
const PrefixObject = "obj"

// NewID returns a fresh object id.
func NewID() string {
	return typeid.MustGenerate(PrefixObject).String()
}

// ValidateID checks that id is an object typeid.
func ValidateID(id string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid object id %q: %w", id, err)
	}
	if parsed.Prefix() != PrefixObject {
		return fmt.Errorf("expected prefix %q but got %q in id %q", PrefixObject, parsed.Prefix(), id)
	}
	return nil
}

// Paint is the stroke styling shared by every object.
type Paint struct {
	Color   color.RGBA
	Width   float64
	Opacity float64
}

// DefaultPaint is a 4px opaque red stroke.
func DefaultPaint() Paint {
	return Paint{Color: color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 0xff}, Width: 4, Opacity: 1}
}

// Common carries the attributes every object has.
type Common struct {
	ID    string
	Paint Paint

	Selectable         bool
	ExcludeFromHistory bool
	ExcludeFromExport  bool
}

func newCommon(p Paint) Common {
	if p.Opacity <= 0 || p.Opacity > 1 {
		p.Opacity = 1
	}
	return Common{ID: NewID(), Paint: p, Selectable: true}
}

// Base gives access to the shared attributes.
func (c *Common) Base() *Common { return c }

// MarkPreview flags the object as an in-progress preview that is neither
// recorded in history nor exported.
func (c *Common) MarkPreview() {
	c.ExcludeFromHistory = true
	c.ExcludeFromExport = true
	c.Selectable = false
}

// Finalize clears the preview flags.
func (c *Common) Finalize() {
	c.ExcludeFromHistory = false
	c.ExcludeFromExport = false
	c.Selectable = true
}

// Preview reports whether the object is an ephemeral preview.
func (c *Common) Preview() bool { return c.ExcludeFromHistory }

// Object is one of *Arrow, *Shape, *Stroke or *Patch. Behaviour that differs
// per variant lives in functions that switch over the concrete type.
type Object interface {
	Base() *Common
	Kind() Kind
	// Bounds is the cached edit-space bounding box including stroke width.
	Bounds() geom.Rect
	Clone() Object
	object()
}

func (*Arrow) object()  {}
func (*Shape) object()  {}
func (*Stroke) object() {}
func (*Patch) object()  {}
