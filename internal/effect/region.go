package effect

import (
	"image"
	"image/draw"
	"math"

	"github.com/example/shotmark/internal/geom"
)

// MinBrushPadding is the smallest brush width used when padding the sampled
// region around a brush stroke.
const MinBrushPadding = 4

// Options selects the filter and its strength in edit-space pixels.
type Options struct {
	Kind     Kind
	Strength int
}

// Bake is the output of an area or brush operation.
type Bake struct {
	// Image holds the filtered pixels at background resolution.
	Image *image.RGBA
	// Source is the background rectangle that was sampled.
	Source image.Rectangle
	// Placement is Source expressed in edit space.
	Placement geom.Rect
}

// Sample copies the pixels of bg inside r into a new zero-origin buffer.
// r is clipped to the raster bounds; the clipped rectangle is returned.
func Sample(bg image.Image, r image.Rectangle) (*image.RGBA, image.Rectangle) {
	r = r.Intersect(bg.Bounds())
	if r.Empty() {
		return nil, image.Rectangle{}
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), bg, r.Min, draw.Src)
	return out, r
}

// backgroundStrength converts an edit-space strength to background pixels.
// Mosaic blocks are never smaller than one pixel.
func backgroundStrength(opts Options, scale geom.Scale) int {
	s := int(math.Round(scale.Length(float64(opts.Strength))))
	if opts.Kind == KindMosaic && s < 1 {
		s = 1
	}
	return max(s, 0)
}

// Area filters the background under the edit-space rectangle rect.
func Area(bg image.Image, scale geom.Scale, rect geom.Rect, opts Options) (Bake, error) {
	if bg == nil || rect.Empty() {
		return Bake{}, ErrDegenerate
	}
	pixels, src := Sample(bg, scale.ToBackground(rect))
	if pixels == nil {
		return Bake{}, ErrDegenerate
	}
	out, err := Apply(opts.Kind, pixels, backgroundStrength(opts, scale))
	if err != nil {
		return Bake{}, err
	}
	return Bake{Image: out, Source: src, Placement: scale.ToEdit(src)}, nil
}

// Brush filters the background along an edit-space stroke of the given
// width. The whole padded bounding region is filtered and then masked to the
// stroke shape.
func Brush(bg image.Image, scale geom.Scale, path []geom.Point, width float64, opts Options) (Bake, error) {
	pts := dedupe(path)
	if bg == nil || len(pts) < 2 || width <= 0 {
		return Bake{}, ErrDegenerate
	}
	pad := math.Max(width, MinBrushPadding) / 2
	bounds := geom.BoundsOf(pts...).Inset(-pad)
	pixels, src := Sample(bg, scale.ToBackground(bounds))
	if pixels == nil {
		return Bake{}, ErrDegenerate
	}
	out, err := Apply(opts.Kind, pixels, backgroundStrength(opts, scale))
	if err != nil {
		return Bake{}, err
	}
	origin := scale.ToEdit(src).Min
	local := make([]geom.Point, len(pts))
	for i, p := range pts {
		local[i] = p.Sub(origin)
	}
	mask, err := StrokeMask(local, width, scale, src.Size())
	if err != nil {
		return Bake{}, err
	}
	return Bake{Image: ApplyMask(out, mask), Source: src, Placement: scale.ToEdit(src)}, nil
}

func dedupe(pts []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && geom.Near(out[len(out)-1], p, geom.Epsilon) {
			continue
		}
		out = append(out, p)
	}
	return out
}
