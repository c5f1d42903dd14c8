package effect

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/example/shotmark/internal/geom"
)

func noise(w, h int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.IntN(256))
	}
	return img
}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestMosaicBlockOneIsIdentity(t *testing.T) {
	src := noise(17, 9, 1)
	out := Mosaic(src, 1)
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Fatal("block size 1 changed pixels")
	}
	if out == src {
		t.Fatal("expected a new buffer")
	}
}

func TestMosaicInteriorBlocksUniform(t *testing.T) {
	const block = 4
	src := noise(23, 18, 2)
	out := Mosaic(src, block)
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds %v, want %v", out.Bounds(), src.Bounds())
	}
	for by := 0; by+block <= 18; by += block {
		for bx := 0; bx+block <= 23; bx += block {
			want := out.RGBAAt(bx, by)
			for y := by; y < by+block; y++ {
				for x := bx; x < bx+block; x++ {
					if got := out.RGBAAt(x, y); got != want {
						t.Fatalf("block (%d,%d) pixel (%d,%d) = %v, want %v", bx, by, x, y, got, want)
					}
				}
			}
		}
	}
}

func TestMosaicRoundedMeanWithClippedEdge(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 10, G: 0, B: 0, A: 255})
	src.SetRGBA(1, 0, color.RGBA{R: 11, G: 1, B: 0, A: 255})
	src.SetRGBA(2, 0, color.RGBA{R: 40, G: 7, B: 9, A: 255})
	out := Mosaic(src, 2)
	// first tile: mean of 10 and 11 rounds to 11, mean of 0 and 1 rounds to 1.
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 11, G: 1, B: 0, A: 255}) {
		t.Fatalf("tile 0 = %v", got)
	}
	if out.RGBAAt(1, 0) != out.RGBAAt(0, 0) {
		t.Fatal("tile 0 not uniform")
	}
	// clipped final column is a one-pixel tile.
	if got := out.RGBAAt(2, 0); got != (color.RGBA{R: 40, G: 7, B: 9, A: 255}) {
		t.Fatalf("edge tile = %v", got)
	}
}

func TestBlurRadiusZeroIsIdentity(t *testing.T) {
	src := noise(12, 7, 3)
	if out := Blur(src, 0); !bytes.Equal(out.Pix, src.Pix) {
		t.Fatal("radius 0 changed pixels")
	}
}

func TestBlurKeepsDimensions(t *testing.T) {
	for _, r := range []int{1, 3, 50} {
		src := noise(13, 5, 4)
		if out := Blur(src, r); out.Bounds() != src.Bounds() {
			t.Fatalf("radius %d: bounds %v", r, out.Bounds())
		}
	}
}

func TestBlurConstantColour(t *testing.T) {
	c := color.RGBA{R: 90, G: 30, B: 200, A: 255}
	out := Blur(uniform(19, 11, c), 5)
	for y := 0; y < 11; y++ {
		for x := 0; x < 19; x++ {
			if got := out.RGBAAt(x, y); got != c {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, c)
			}
		}
	}
}

func TestBlurClampedWindow(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	for x, v := range []uint8{0, 30, 60, 90} {
		src.SetRGBA(x, 0, color.RGBA{R: v, A: 255})
	}
	out := Blur(src, 1)
	// edge windows shrink: (0+30)/2, (0+30+60)/3, (30+60+90)/3, (60+90)/2
	want := []uint8{15, 30, 60, 75}
	for x, w := range want {
		if got := out.RGBAAt(x, 0).R; got != w {
			t.Fatalf("x=%d: got %d want %d", x, got, w)
		}
	}
}

func TestBlurIsSeparable(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	src.SetRGBA(1, 1, color.RGBA{R: 90, A: 90})
	out := Blur(src, 1)
	// horizontal pass spreads 90 over the middle row as 45,30,45; the vertical
	// pass then averages each column.
	if got := out.RGBAAt(1, 1).R; got != 10 {
		t.Fatalf("centre = %d, want 10", got)
	}
	if got := out.RGBAAt(0, 0).R; got != 23 {
		t.Fatalf("corner = %d, want 23", got)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Blur "); err != nil || k != KindBlur {
		t.Fatalf("got %q %v", k, err)
	}
	if _, err := ParseKind("sharpen"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAreaRejectsDegenerate(t *testing.T) {
	bg := uniform(100, 100, color.RGBA{A: 255})
	tests := []struct {
		name string
		rect geom.Rect
	}{
		{"zero size", geom.RectXYWH(10, 10, 0, 20)},
		{"outside", geom.RectXYWH(200, 200, 30, 30)},
		{"negative side", geom.RectXYWH(-50, -50, 20, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Area(bg, geom.Unit, tt.rect, Options{Kind: KindMosaic, Strength: 8})
			if !errors.Is(err, ErrDegenerate) {
				t.Fatalf("err = %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestAreaConvertsToBackgroundSpace(t *testing.T) {
	bg := noise(200, 100, 5)
	scale := geom.NewScale(image.Pt(200, 100), image.Pt(100, 50))
	b, err := Area(bg, scale, geom.RectXYWH(10, 10, 20, 10), Options{Kind: KindBlur, Strength: 0})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != image.Rect(20, 20, 60, 40) {
		t.Fatalf("source = %v", b.Source)
	}
	if b.Image.Bounds().Size() != b.Source.Size() {
		t.Fatalf("image size %v", b.Image.Bounds().Size())
	}
	if b.Placement != geom.RectXYWH(10, 10, 20, 10) {
		t.Fatalf("placement = %+v", b.Placement)
	}
	// radius 0 blur leaves the sampled pixels untouched.
	if got, want := b.Image.RGBAAt(0, 0), bg.RGBAAt(20, 20); got != want {
		t.Fatalf("sample origin %v, want %v", got, want)
	}
}

func TestAreaClipsToRaster(t *testing.T) {
	bg := uniform(50, 50, color.RGBA{R: 1, A: 255})
	b, err := Area(bg, geom.Unit, geom.RectXYWH(40, 40, 30, 30), Options{Kind: KindMosaic, Strength: 4})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != image.Rect(40, 40, 50, 50) {
		t.Fatalf("source = %v", b.Source)
	}
}

func TestBrushRejectsShortPath(t *testing.T) {
	bg := uniform(50, 50, color.RGBA{A: 255})
	paths := [][]geom.Point{
		nil,
		{geom.Pt(5, 5)},
		{geom.Pt(5, 5), geom.Pt(5, 5)},
	}
	for _, p := range paths {
		if _, err := Brush(bg, geom.Unit, p, 10, Options{Kind: KindMosaic, Strength: 4}); !errors.Is(err, ErrDegenerate) {
			t.Fatalf("path %v: err = %v", p, err)
		}
	}
}

func TestBrushMosaicOverUniformBackground(t *testing.T) {
	c := color.RGBA{R: 200, G: 40, B: 70, A: 255}
	bg := uniform(100, 100, c)
	path := []geom.Point{geom.Pt(20, 50), geom.Pt(80, 50)}
	b, err := Brush(bg, geom.Unit, path, 20, Options{Kind: KindMosaic, Strength: 6})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != image.Rect(10, 40, 90, 60) {
		t.Fatalf("source = %v", b.Source)
	}
	opaque := 0
	w, h := b.Image.Rect.Dx(), b.Image.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := b.Image.RGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			opaque++
			if px != c {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, px, c)
			}
		}
	}
	if opaque == 0 {
		t.Fatal("patch is empty")
	}
	// centre of the stroke is kept, the corners fall outside the round caps.
	if b.Image.RGBAAt(40, 10).A == 0 {
		t.Fatal("stroke centre dropped")
	}
	if b.Image.RGBAAt(0, 0).A != 0 || b.Image.RGBAAt(w-1, h-1).A != 0 {
		t.Fatal("corner outside the stroke kept")
	}
}

// coverage returns the fraction of opaque pixels in img.
func coverage(img *image.RGBA) float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.RGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y).A != 0 {
				n++
			}
		}
	}
	return float64(n) / float64(w*h)
}

func TestBrushPenFollowsEachAxis(t *testing.T) {
	// 400x100 shown at 100x100: one edit unit is 4 pixels wide and 1 tall.
	bg := uniform(400, 100, color.RGBA{R: 10, G: 200, B: 90, A: 255})
	scale := geom.NewScale(image.Pt(400, 100), image.Pt(100, 100))
	path := []geom.Point{geom.Pt(20, 50), geom.Pt(80, 50)}
	b, err := Brush(bg, scale, path, 10, Options{Kind: KindMosaic, Strength: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source != image.Rect(60, 45, 340, 55) {
		t.Fatalf("source = %v", b.Source)
	}
	// the cap is an ellipse 20px wide and 5px tall around (20,5).
	if b.Image.RGBAAt(4, 0).A != 0 {
		t.Fatal("round pen of the larger factor used at the cap")
	}
	if b.Image.RGBAAt(2, 5).A == 0 || b.Image.RGBAAt(140, 0).A == 0 || b.Image.RGBAAt(140, 9).A == 0 {
		t.Fatal("stroke body missing")
	}
	if c := coverage(b.Image); c >= 0.99 || c < 0.9 {
		t.Fatalf("coverage = %.3f", c)
	}
}

func TestApplyMaskThreshold(t *testing.T) {
	src := uniform(3, 1, color.RGBA{R: 9, A: 255})
	mask := image.NewAlpha(image.Rect(0, 0, 3, 1))
	mask.Pix[0], mask.Pix[1], mask.Pix[2] = 255, 127, 128
	out := ApplyMask(src, mask)
	if out.RGBAAt(0, 0).A != 255 || out.RGBAAt(1, 0).A != 0 || out.RGBAAt(2, 0).A != 255 {
		t.Fatalf("pix = %v", out.Pix)
	}
}
