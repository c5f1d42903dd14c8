package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// ShadowOptions configures the drop shadow added around an exported image.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// ShadowResult is the image with its shadow. Offset is where the original
// top-left corner landed; it is non-zero only when the shadow extends above or
// left of the image.
type ShadowResult struct {
	Image  *image.RGBA
	Offset image.Point
}

// DefaultShadowOptions returns the shadow used by export -shadow.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  24,
		Offset:  image.Pt(16, 16),
		Opacity: 0.55,
	}
}

// ApplyShadow draws img over a blurred copy of its silhouette moved by
// opts.Offset. The result is zero-based and large enough for both. Zero
// opacity returns img itself.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	if img.Bounds().Empty() || opts.Opacity <= 0 {
		return ShadowResult{Image: img}
	}
	radius := max(opts.Radius, 0)
	src := img.Bounds()
	padded := src.Inset(-radius)
	shadow := padded.Add(opts.Offset)
	canvas := src.Union(shadow)
	shift := src.Min.Sub(canvas.Min)

	// The silhouette is the image's coverage in black, padded so the blur
	// has room to spread.
	sil := imaging.New(padded.Dx(), padded.Dy(), color.NRGBA{})
	for y := src.Min.Y; y < src.Max.Y; y++ {
		for x := src.Min.X; x < src.Max.X; x++ {
			if a := img.RGBAAt(x, y).A; a > 0 {
				sil.SetNRGBA(x-padded.Min.X, y-padded.Min.Y, color.NRGBA{A: a})
			}
		}
	}
	if radius > 0 {
		sil = imaging.Blur(sil, float64(radius)/2)
	}

	out := imaging.New(canvas.Dx(), canvas.Dy(), color.NRGBA{})
	out = imaging.Overlay(out, sil, shadow.Min.Sub(canvas.Min), min(opts.Opacity, 1))
	out = imaging.Overlay(out, img, shift, 1)

	dst := image.NewRGBA(out.Bounds())
	draw.Draw(dst, dst.Bounds(), out, image.Point{}, draw.Src)
	return ShadowResult{Image: dst, Offset: shift}
}
