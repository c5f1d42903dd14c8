package tools

import (
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/scene"
	"github.com/example/shotmark/internal/surface"
)

type dragKind int

const (
	dragNone dragKind = iota
	dragMove
	dragHandle
	dragMarquee
)

// Select picks objects by click or marquee, moves the selection by dragging
// and reshapes a single selected object through its handles.
type Select struct {
	ed Editor

	drag   dragKind
	start  geom.Point
	last   geom.Point
	target scene.Object
	handle scene.Handle
}

func NewSelect(ed Editor) *Select { return &Select{ed: ed} }

func (t *Select) Name() string       { return params.ToolSelect }
func (t *Select) Mode() surface.Mode { return surface.ModeSelect }

// Activate never fails: selecting needs no background.
func (t *Select) Activate() error { return nil }

func (t *Select) Deactivate() {
	if t.drag == dragMarquee {
		t.ed.SetMarquee(nil)
	}
	*t = Select{ed: t.ed}
}

func (t *Select) PointerDown(p geom.Point) {
	t.start, t.last = p, p
	t.drag = dragNone
	if sel := t.ed.Selected(); len(sel) == 1 {
		if h, ok := scene.HandleAt(sel[0], p, HitTolerance); ok {
			t.drag, t.target, t.handle = dragHandle, sel[0], h
			return
		}
	}
	if hit := t.ed.HitTest(p, HitTolerance); hit != nil {
		if !t.ed.IsSelected(hit) {
			t.ed.Select(hit)
		}
		t.drag = dragMove
		return
	}
	t.ed.ClearSelection()
	t.drag = dragMarquee
	r := geom.RectFromPoints(p, p)
	t.ed.SetMarquee(&r)
}

func (t *Select) PointerMove(p geom.Point) {
	switch t.drag {
	case dragHandle:
		t.handle.Drag(p)
		t.ed.Modified(t.target, scene.ChangeContinuous, "reshape "+string(t.target.Kind()))
	case dragMove:
		d := p.Sub(t.last)
		if d.X == 0 && d.Y == 0 {
			return
		}
		for _, o := range t.ed.Selected() {
			scene.Translate(o, d)
			t.ed.Modified(o, scene.ChangeContinuous, "move "+string(o.Kind()))
		}
	case dragMarquee:
		r := geom.RectFromPoints(t.start, p)
		t.ed.SetMarquee(&r)
	}
	t.last = p
}

func (t *Select) PointerUp(p geom.Point) {
	t.PointerMove(p)
	if t.drag == dragMarquee {
		r := geom.RectFromPoints(t.start, p)
		t.ed.SetMarquee(nil)
		if !r.Empty() {
			t.ed.Select(t.ed.Within(r)...)
		}
	}
	t.drag = dragNone
	t.target = nil
	t.handle = scene.Handle{}
}
