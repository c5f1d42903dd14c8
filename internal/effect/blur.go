package effect

import "image"

type axis int

const (
	horizontal axis = iota
	vertical
)

// Blur applies a separable box blur: a full horizontal pass followed by a
// full vertical pass over its output. Windows shrink at the edges instead of
// wrapping or padding. Radius 0 copies src.
func Blur(src *image.RGBA, radius int) *image.RGBA {
	dst := clone(src)
	if radius <= 0 {
		return dst
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	tmp := make([]uint8, len(dst.Pix))
	boxPass(tmp, dst.Pix, w, h, dst.Stride, 4, radius, horizontal)
	boxPass(dst.Pix, tmp, w, h, dst.Stride, 4, radius, vertical)
	return dst
}

// boxPass averages every channel over a window of radius pixels along one
// axis, using running prefix sums per line.
func boxPass(dst, src []uint8, w, h, stride, channels, radius int, dir axis) {
	lines, length := h, w
	if dir == vertical {
		lines, length = w, h
	}
	offset := func(line, i int) int {
		if dir == horizontal {
			return line*stride + i*channels
		}
		return i*stride + line*channels
	}
	prefix := make([]int, length+1)
	for line := 0; line < lines; line++ {
		for c := 0; c < channels; c++ {
			for i := 0; i < length; i++ {
				prefix[i+1] = prefix[i] + int(src[offset(line, i)+c])
			}
			for i := 0; i < length; i++ {
				i0 := max(i-radius, 0)
				i1 := min(i+radius, length-1)
				n := i1 - i0 + 1
				sum := prefix[i1+1] - prefix[i0]
				dst[offset(line, i)+c] = uint8((sum + n/2) / n)
			}
		}
	}
}
