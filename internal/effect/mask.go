package effect

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"

	"github.com/example/shotmark/internal/geom"
)

// maskThreshold is the coverage at or above which a mask pixel keeps the
// filtered pixel.
const maskThreshold = 128

// StrokeMask rasterizes the polyline pts as a stroke of the given width with
// round caps and joins into a coverage buffer of size. Points and width are
// in edit units relative to the buffer origin; scale maps them to buffer
// pixels, so a pen under unequal axis factors becomes an ellipse.
func StrokeMask(pts []geom.Point, width float64, scale geom.Scale, size image.Point) (*image.Alpha, error) {
	if len(pts) < 2 || size.X <= 0 || size.Y <= 0 || scale.X <= 0 || scale.Y <= 0 {
		return nil, ErrDegenerate
	}
	// gg strokes with a round pen, so draw at the finer axis resolution and
	// resample the coarser axis afterwards.
	k := math.Max(scale.X, scale.Y)
	bw := max(1, int(math.Ceil(float64(size.X)*k/scale.X-geom.Epsilon)))
	bh := max(1, int(math.Ceil(float64(size.Y)*k/scale.Y-geom.Epsilon)))
	dc := gg.NewContext(bw, bh)
	defer func() { _ = dc.Close() }()
	dc.SetRGBA(1, 1, 1, 1)
	dc.SetLineWidth(width * k)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(pts[0].X*k, pts[0].Y*k)
	for _, p := range pts[1:] {
		dc.LineTo(p.X*k, p.Y*k)
	}
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("stroke mask: %w", err)
	}
	var img image.Image = dc.Image()
	if bw != size.X || bh != size.Y {
		img = imaging.Resize(img, size.X, size.Y, imaging.Linear)
	}
	return alphaOf(img), nil
}

func alphaOf(img image.Image) *image.Alpha {
	b := img.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Pix[y*out.Stride+x] = rgba.Pix[rgba.PixOffset(b.Min.X+x, b.Min.Y+y)+3]
			}
		}
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Pix[y*out.Stride+x] = uint8(a >> 8)
		}
	}
	return out
}

// ApplyMask keeps the pixels of src where mask is opaque and clears the rest.
// Coverage is thresholded so the patch edge stays crisp against the
// unfiltered background. src and mask must have the same size.
func ApplyMask(src *image.RGBA, mask *image.Alpha) *image.RGBA {
	out := clone(src)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	mb := mask.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var a uint8
			if x < mb.Dx() && y < mb.Dy() {
				a = mask.Pix[mask.PixOffset(mb.Min.X+x, mb.Min.Y+y)]
			}
			if a >= maskThreshold {
				continue
			}
			i := y*out.Stride + x*4
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 0, 0, 0, 0
		}
	}
	return out
}
