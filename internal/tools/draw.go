package tools

import (
	"image/color"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/scene"
	"github.com/example/shotmark/internal/surface"
)

// gesture is the press-drag-release state shared by the drawing tools.
type gesture struct {
	active  bool
	start   geom.Point
	preview scene.Object
}

func (g *gesture) reset(ed Editor) {
	if g.preview != nil {
		ed.Discard(g.preview)
	}
	*g = gesture{}
}

// finish keeps the preview when the gesture travelled at least minDrag and
// discards it otherwise. It returns the kept object.
func (g *gesture) finish(ed Editor, end geom.Point, minDrag float64) scene.Object {
	o := g.preview
	start := g.start
	*g = gesture{}
	if o == nil {
		return nil
	}
	if start.Distance(end) < minDrag {
		ed.Discard(o)
		logging.For("tools").Debug("gesture too short, discarded", "kind", o.Kind())
		return nil
	}
	ed.Finalize(o)
	return o
}

// Arrow draws curved arrows. The curve starts straight; its middle is moved
// afterwards with the selection tool's middle handle.
type Arrow struct {
	ed      Editor
	params  paramWatch
	minDrag float64
	done    Handoff
	g       gesture
}

func NewArrow(ed Editor, src params.Source, minDrag float64, done Handoff) *Arrow {
	return &Arrow{ed: ed, params: paramWatch{src: src, tool: params.ToolArrow}, minDrag: minDrag, done: done}
}

func (t *Arrow) Name() string       { return params.ToolArrow }
func (t *Arrow) Mode() surface.Mode { return surface.ModeDraw }

func (t *Arrow) Activate() error {
	if err := requireBackground(t.ed, t.Name()); err != nil {
		return err
	}
	t.params.start()
	return nil
}

func (t *Arrow) Deactivate() {
	t.g.reset(t.ed)
	t.params.stop()
}

func (t *Arrow) PointerDown(p geom.Point) {
	t.g.reset(t.ed)
	a := scene.NewArrow(p, p, t.params.paint())
	a.Dashed = t.params.values.Bool(params.KeyDashed, false)
	if head := t.params.values.Float(params.KeyHead, 0); head > 0 {
		a.HeadLength = head
		a.RecalculateGeometry()
	}
	t.g = gesture{active: true, start: p, preview: a}
	t.ed.AddPreview(a)
}

func (t *Arrow) PointerMove(p geom.Point) {
	if !t.g.active {
		return
	}
	a := t.g.preview.(*scene.Arrow)
	a.SetWorldGeometry(t.g.start, p, nil)
	t.ed.Modified(a, scene.ChangeContinuous, "draw arrow")
}

func (t *Arrow) PointerUp(p geom.Point) {
	if !t.g.active {
		return
	}
	t.PointerMove(p)
	if o := t.g.finish(t.ed, p, t.minDrag); o != nil && t.done != nil {
		t.done(o)
	}
}

// Shape draws rectangles, ellipses and polygons from a fixed start corner to
// the pointer.
type Shape struct {
	ed      Editor
	params  paramWatch
	minDrag float64
	done    Handoff
	g       gesture
}

func NewShape(ed Editor, src params.Source, minDrag float64, done Handoff) *Shape {
	return &Shape{ed: ed, params: paramWatch{src: src, tool: params.ToolShape}, minDrag: minDrag, done: done}
}

func (t *Shape) Name() string       { return params.ToolShape }
func (t *Shape) Mode() surface.Mode { return surface.ModeDraw }

func (t *Shape) Activate() error {
	if err := requireBackground(t.ed, t.Name()); err != nil {
		return err
	}
	t.params.start()
	return nil
}

func (t *Shape) Deactivate() {
	t.g.reset(t.ed)
	t.params.stop()
}

func (t *Shape) kind() scene.Kind {
	k := scene.Kind(t.params.values.String(params.KeyKind))
	if !scene.IsShapeKind(k) {
		return scene.KindRectangle
	}
	return k
}

func (t *Shape) build(r geom.Rect) (*scene.Shape, error) {
	var fill *color.RGBA
	if t.params.values.Bool(params.KeyFill, false) {
		c := t.params.values.Color(params.KeyFillColor, t.params.paint().Color)
		fill = &c
	}
	return scene.NewShape(t.kind(), r, t.params.paint(), fill)
}

func (t *Shape) PointerDown(p geom.Point) {
	t.g.reset(t.ed)
	s, err := t.build(geom.RectFromPoints(p, p))
	if err != nil {
		logging.For("tools").Error("shape", "err", err)
		return
	}
	t.g = gesture{active: true, start: p, preview: s}
	t.ed.AddPreview(s)
}

func (t *Shape) PointerMove(p geom.Point) {
	if !t.g.active {
		return
	}
	r := geom.RectFromPoints(t.g.start, p)
	old := t.g.preview.(*scene.Shape)
	if scene.IsPolygonKind(old.Shape) {
		s, err := t.build(r)
		if err != nil {
			return
		}
		t.ed.ReplacePreview(old, s)
		t.g.preview = s
		return
	}
	old.SetRect(r)
	t.ed.Modified(old, scene.ChangeContinuous, "draw "+string(old.Shape))
}

func (t *Shape) PointerUp(p geom.Point) {
	if !t.g.active {
		return
	}
	t.PointerMove(p)
	if o := t.g.finish(t.ed, p, t.minDrag); o != nil && t.done != nil {
		t.done(o)
	}
}
