package scene

import (
	"image"
	"image/draw"

	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
)

// Patch is a baked mosaic or blur image. Once created it is an opaque image
// object; the region or stroke that produced it is not kept.
type Patch struct {
	Common
	Effect effect.Kind
	// Image is stored at background resolution.
	Image *image.RGBA
	// Position is the edit-space top-left corner.
	Position geom.Point
	// ScaleX and ScaleY map image pixels to edit-space units.
	ScaleX, ScaleY float64
}

// NewPatch places a baked effect at its originating edit-space rectangle.
func NewPatch(k effect.Kind, b effect.Bake, scale geom.Scale) *Patch {
	inv := scale.Inverse()
	p := &Patch{
		Common:   newCommon(Paint{Opacity: 1}),
		Effect:   k,
		Image:    b.Image,
		Position: b.Placement.Min,
		ScaleX:   inv.X,
		ScaleY:   inv.Y,
	}
	return p
}

func (p *Patch) Kind() Kind { return KindPatch }

// Placement is the edit-space rectangle the image covers.
func (p *Patch) Placement() geom.Rect {
	size := p.Image.Bounds().Size()
	return geom.RectXYWH(p.Position.X, p.Position.Y, float64(size.X)*p.ScaleX, float64(size.Y)*p.ScaleY)
}

func (p *Patch) Bounds() geom.Rect { return p.Placement() }

// Opaque reports whether the image has a visible pixel under the edit-space
// point pt.
func (p *Patch) Opaque(pt geom.Point) bool {
	if !p.Placement().Contains(pt) || p.ScaleX == 0 || p.ScaleY == 0 {
		return false
	}
	b := p.Image.Bounds()
	x := b.Min.X + int((pt.X-p.Position.X)/p.ScaleX)
	y := b.Min.Y + int((pt.Y-p.Position.Y)/p.ScaleY)
	if !(image.Point{X: x, Y: y}).In(b) {
		return false
	}
	return p.Image.RGBAAt(x, y).A != 0
}

func (p *Patch) transform(m geom.Matrix) {
	r := m.ApplyRect(p.Placement())
	size := p.Image.Bounds().Size()
	p.Position = r.Min
	if size.X > 0 && size.Y > 0 {
		p.ScaleX = r.Width() / float64(size.X)
		p.ScaleY = r.Height() / float64(size.Y)
	}
}

func (p *Patch) Clone() Object {
	c := *p
	if p.Image != nil {
		img := image.NewRGBA(p.Image.Bounds())
		draw.Draw(img, img.Bounds(), p.Image, p.Image.Bounds().Min, draw.Src)
		c.Image = img
	}
	return &c
}
