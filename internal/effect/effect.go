// Package effect implements the pixel filters used to redact parts of a
// screenshot: mosaic and separable box blur, plus the region sampling and
// stroke masking that turn a user gesture into a baked patch.
package effect

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strings"
)

// Kind selects the filter applied to a region.
type Kind string

const (
	KindMosaic Kind = "mosaic"
	KindBlur   Kind = "blur"
)

// Kinds lists the supported filters in menu order.
func Kinds() []Kind { return []Kind{KindMosaic, KindBlur} }

// ParseKind accepts a filter name case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindMosaic, "pixelate":
		return KindMosaic, nil
	case KindBlur:
		return KindBlur, nil
	}
	return "", fmt.Errorf("unknown effect %q", s)
}

// ErrDegenerate is returned when the requested region or path cannot produce
// a patch: an empty rectangle, a region entirely outside the raster or a path
// with fewer than two distinct points.
var ErrDegenerate = errors.New("effect: degenerate region")

// Apply runs the filter of kind k over src. strength is the mosaic block
// size or the blur radius in pixels.
func Apply(k Kind, src *image.RGBA, strength int) (*image.RGBA, error) {
	switch k {
	case KindMosaic:
		return Mosaic(src, strength), nil
	case KindBlur:
		return Blur(src, strength), nil
	}
	return nil, fmt.Errorf("apply: unknown effect %q", k)
}

// clone copies src into a new zero-origin buffer.
func clone(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
