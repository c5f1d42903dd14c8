package surface

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/example/shotmark/internal/render"
	"github.com/example/shotmark/internal/theme"
)

// MergeWithBackground renders the serialized scene over the background at
// background resolution and returns the flattened image. Previews are not
// part of the result.
func (s *Surface) MergeWithBackground() (*image.RGBA, error) {
	if !s.active && s.bg == nil {
		return nil, ErrInactive
	}
	data, err := s.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	d, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	b := s.bg.Bounds()
	dst := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Draw(dst, dst.Bounds(), s.bg, b.Min, draw.Src)
	if err := render.Objects(dst, d.Objects, render.ExportOptions(s.scale)); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return dst, nil
}

// View renders the edit-space picture: the background scaled to the edit
// size, every object including previews, and the selection overlay.
func (s *Surface) View(th *theme.Theme) (*image.RGBA, error) {
	if !s.active {
		return nil, ErrInactive
	}
	dst := image.NewRGBA(image.Rectangle{Max: s.editSize})
	if th == nil {
		th = theme.Default()
	}
	render.Checkerboard(dst, dst.Bounds(), 8, th.CheckerLight, th.CheckerDark)
	b := s.bg.Bounds()
	if b.Size() == s.editSize {
		draw.Draw(dst, dst.Bounds(), s.bg, b.Min, draw.Over)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), s.bg, b, draw.Over, nil)
	}
	opts := render.EditOptions()
	if err := render.Objects(dst, s.scene.Objects(), opts); err != nil {
		return nil, err
	}
	render.DrawOverlay(dst, render.Overlay{Selected: s.Selected(), Marquee: s.marquee, Theme: th}, opts.Transform)
	return dst, nil
}
