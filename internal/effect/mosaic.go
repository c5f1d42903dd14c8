package effect

import "image"

// Mosaic replaces every block×block tile of src with the rounded mean of its
// pixels. Tiles on the right and bottom edges are clipped to the buffer. The
// result is a new zero-origin buffer; a block size of 1 or less copies src.
func Mosaic(src *image.RGBA, block int) *image.RGBA {
	dst := clone(src)
	if block <= 1 {
		return dst
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for by := 0; by < h; by += block {
		y1 := min(by+block, h)
		for bx := 0; bx < w; bx += block {
			x1 := min(bx+block, w)
			fillTile(dst, bx, by, x1, y1)
		}
	}
	return dst
}

func fillTile(img *image.RGBA, x0, y0, x1, y1 int) {
	var sum [4]int
	for y := y0; y < y1; y++ {
		row := y * img.Stride
		for x := x0; x < x1; x++ {
			i := row + x*4
			sum[0] += int(img.Pix[i])
			sum[1] += int(img.Pix[i+1])
			sum[2] += int(img.Pix[i+2])
			sum[3] += int(img.Pix[i+3])
		}
	}
	n := (x1 - x0) * (y1 - y0)
	var mean [4]uint8
	for c, s := range sum {
		mean[c] = uint8((s + n/2) / n)
	}
	for y := y0; y < y1; y++ {
		row := y * img.Stride
		for x := x0; x < x1; x++ {
			copy(img.Pix[row+x*4:row+x*4+4], mean[:])
		}
	}
}
