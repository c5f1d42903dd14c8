package tools

import (
	"errors"
	"image/color"

	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/scene"
	"github.com/example/shotmark/internal/surface"
)

// stroking accumulates pointer positions into a preview polyline.
type stroking struct {
	preview *scene.Stroke
}

func (s *stroking) begin(ed Editor, p geom.Point, paint scene.Paint) {
	s.cancel(ed)
	s.preview = scene.NewStroke([]geom.Point{p}, paint)
	ed.AddPreview(s.preview)
}

func (s *stroking) extend(ed Editor, p geom.Point) {
	if s.preview == nil {
		return
	}
	if s.preview.Append(p) {
		ed.Modified(s.preview, scene.ChangeContinuous, "draw")
	}
}

// end removes the preview and returns the accumulated points.
func (s *stroking) end(ed Editor) (*scene.Stroke, bool) {
	st := s.preview
	if st == nil {
		return nil, false
	}
	s.preview = nil
	ed.Discard(st)
	return st, true
}

func (s *stroking) cancel(ed Editor) {
	if s.preview != nil {
		ed.Discard(s.preview)
		s.preview = nil
	}
}

// Ink draws freehand strokes.
type Ink struct {
	ed     Editor
	params paramWatch
	s      stroking
}

func NewInk(ed Editor, src params.Source) *Ink {
	return &Ink{ed: ed, params: paramWatch{src: src, tool: params.ToolInk}}
}

func (t *Ink) Name() string       { return params.ToolInk }
func (t *Ink) Mode() surface.Mode { return surface.ModeFreehand }

func (t *Ink) Activate() error {
	if err := requireBackground(t.ed, t.Name()); err != nil {
		return err
	}
	t.params.start()
	return nil
}

func (t *Ink) Deactivate() {
	t.s.cancel(t.ed)
	t.params.stop()
}

func (t *Ink) PointerDown(p geom.Point) { t.s.begin(t.ed, p, t.params.paint()) }
func (t *Ink) PointerMove(p geom.Point) { t.s.extend(t.ed, p) }

func (t *Ink) PointerUp(p geom.Point) {
	t.s.extend(t.ed, p)
	st, ok := t.s.end(t.ed)
	if !ok {
		return
	}
	if len(st.Points) < 2 {
		logging.For("tools").Debug("stroke too short, discarded")
		return
	}
	t.ed.AddPath(st)
}

// previewTint colours the brush preview of the effect tool.
var previewTint = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}

// Effect redacts parts of the background with mosaic or blur, either inside
// a dragged rectangle or along a brush stroke.
type Effect struct {
	ed     Editor
	params paramWatch

	// area mode
	dragging bool
	start    geom.Point
	rect     geom.Rect

	// brush mode
	s stroking
}

func NewEffect(ed Editor, src params.Source) *Effect {
	return &Effect{ed: ed, params: paramWatch{src: src, tool: params.ToolEffect}}
}

func (t *Effect) Name() string       { return params.ToolEffect }
func (t *Effect) Mode() surface.Mode { return surface.ModeFreehand }

func (t *Effect) Activate() error {
	if err := requireBackground(t.ed, t.Name()); err != nil {
		return err
	}
	t.params.start()
	return nil
}

func (t *Effect) Deactivate() {
	t.cancel()
	t.params.stop()
}

func (t *Effect) cancel() {
	if t.dragging {
		t.dragging = false
		t.ed.SetMarquee(nil)
	}
	t.s.cancel(t.ed)
}

func (t *Effect) brushMode() bool {
	return t.params.values.String(params.KeyMode) == params.ModeBrush
}

func (t *Effect) brushWidth() float64 {
	return t.params.values.Float(params.KeyBrush, 20)
}

func (t *Effect) options() (effect.Options, error) {
	k, err := effect.ParseKind(t.params.values.String(params.KeyEffect))
	if err != nil {
		return effect.Options{}, err
	}
	return effect.Options{Kind: k, Strength: t.params.values.Int(params.KeyStrength, 10)}, nil
}

func (t *Effect) PointerDown(p geom.Point) {
	t.cancel()
	if t.brushMode() {
		t.s.begin(t.ed, p, scene.Paint{Color: previewTint, Width: t.brushWidth(), Opacity: 0.4})
		return
	}
	t.dragging = true
	t.start = p
	t.rect = geom.RectFromPoints(p, p)
	r := t.rect
	t.ed.SetMarquee(&r)
}

func (t *Effect) PointerMove(p geom.Point) {
	if t.s.preview != nil {
		t.s.extend(t.ed, p)
		return
	}
	if !t.dragging {
		return
	}
	t.rect = geom.RectFromPoints(t.start, p)
	r := t.rect
	t.ed.SetMarquee(&r)
}

func (t *Effect) PointerUp(p geom.Point) {
	log := logging.For("tools")
	opts, err := t.options()
	if err != nil {
		log.Error("effect", "err", err)
		t.cancel()
		return
	}
	if t.s.preview != nil {
		t.s.extend(t.ed, p)
		st, _ := t.s.end(t.ed)
		patch, err := t.ed.BakeBrush(st.Points, t.brushWidth(), opts)
		if t.abandoned(err) {
			return
		}
		t.ed.AddPath(patch)
		return
	}
	if !t.dragging {
		return
	}
	t.PointerMove(p)
	t.dragging = false
	t.ed.SetMarquee(nil)
	patch, err := t.ed.BakeArea(t.rect, opts)
	if t.abandoned(err) {
		return
	}
	t.ed.Add(patch)
}

// abandoned reports whether the bake produced nothing. Degenerate regions are
// routine and only logged at debug level.
func (t *Effect) abandoned(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, effect.ErrDegenerate):
		logging.For("tools").Debug("effect region degenerate, nothing baked")
	default:
		logging.For("tools").Error("effect bake failed", "err", err)
	}
	return true
}
