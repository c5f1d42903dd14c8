package tools

import (
	"fmt"
	"slices"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/scene"
)

// Toolbox owns the tools of one editing session and routes pointer events
// to the active one.
type Toolbox struct {
	ed       Editor
	tools    map[string]Tool
	order    []string
	current  Tool
	minDrag  float64
	onSwitch func(Tool)
}

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithMinDrag sets the smallest drawing gesture that creates an object.
func WithMinDrag(d float64) Option {
	return func(tb *Toolbox) {
		if d >= 0 {
			tb.minDrag = d
		}
	}
}

// WithSwitchHandler is called after the active tool changes.
func WithSwitchHandler(fn func(Tool)) Option {
	return func(tb *Toolbox) { tb.onSwitch = fn }
}

// New builds a toolbox with the built-in tools registered. No tool is active
// until Switch is called.
func New(ed Editor, src params.Source, opts ...Option) *Toolbox {
	tb := &Toolbox{ed: ed, tools: map[string]Tool{}, minDrag: DefaultMinDrag}
	for _, o := range opts {
		o(tb)
	}
	tb.Register(NewSelect(ed))
	tb.Register(NewArrow(ed, src, tb.minDrag, tb.handoff))
	tb.Register(NewShape(ed, src, tb.minDrag, tb.handoff))
	tb.Register(NewInk(ed, src))
	tb.Register(NewEffect(ed, src))
	return tb
}

// Register adds t, replacing a tool with the same name.
func (tb *Toolbox) Register(t Tool) {
	if _, ok := tb.tools[t.Name()]; !ok {
		tb.order = append(tb.order, t.Name())
	}
	tb.tools[t.Name()] = t
}

// Names lists the registered tools in registration order.
func (tb *Toolbox) Names() []string { return slices.Clone(tb.order) }

// Current returns the active tool, or nil.
func (tb *Toolbox) Current() Tool { return tb.current }

// Switch activates the named tool. Pending history is flushed and previews
// are removed before the old tool is deactivated. If the new tool fails to
// activate the old one stays active.
func (tb *Toolbox) Switch(name string) error {
	next, ok := tb.tools[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if next == tb.current {
		return nil
	}
	if err := next.Activate(); err != nil {
		return err
	}
	tb.ed.FlushHistory()
	tb.ed.RemovePreviews()
	tb.ed.SetMarquee(nil)
	if tb.current != nil {
		tb.current.Deactivate()
	}
	tb.current = next
	tb.ed.SetMode(next.Mode())
	logging.For("tools").Debug("tool switched", "tool", name)
	if tb.onSwitch != nil {
		tb.onSwitch(next)
	}
	return nil
}

// Deactivate abandons the current gesture and leaves no tool active.
func (tb *Toolbox) Deactivate() {
	if tb.current == nil {
		return
	}
	tb.ed.FlushHistory()
	tb.ed.RemovePreviews()
	tb.ed.SetMarquee(nil)
	tb.current.Deactivate()
	tb.current = nil
}

func (tb *Toolbox) PointerDown(p geom.Point) {
	if tb.current != nil {
		tb.current.PointerDown(p)
	}
}

func (tb *Toolbox) PointerMove(p geom.Point) {
	if tb.current != nil {
		tb.current.PointerMove(p)
	}
}

func (tb *Toolbox) PointerUp(p geom.Point) {
	if tb.current != nil {
		tb.current.PointerUp(p)
	}
}

// Undo abandons the current gesture and steps back in history.
func (tb *Toolbox) Undo() error {
	tb.cancelGesture()
	return tb.ed.Undo()
}

// Redo abandons the current gesture and steps forward in history.
func (tb *Toolbox) Redo() error {
	tb.cancelGesture()
	return tb.ed.Redo()
}

// DeleteSelected removes the selection and returns how many objects went.
func (tb *Toolbox) DeleteSelected() int {
	tb.cancelGesture()
	return tb.ed.DeleteSelected()
}

// SelectAll switches to the selection tool and selects everything.
func (tb *Toolbox) SelectAll() error {
	if err := tb.Switch(params.ToolSelect); err != nil {
		return err
	}
	tb.ed.SelectAll()
	return nil
}

func (tb *Toolbox) cancelGesture() {
	if tb.current != nil {
		tb.current.Deactivate()
		if err := tb.current.Activate(); err != nil {
			logging.For("tools").Warn("reactivation failed", "tool", tb.current.Name(), "err", err)
		}
	}
	tb.ed.SetMarquee(nil)
}

// handoff selects a freshly drawn object with the selection tool.
func (tb *Toolbox) handoff(o scene.Object) {
	if err := tb.Switch(params.ToolSelect); err != nil {
		logging.For("tools").Warn("handoff failed", "err", err)
		return
	}
	tb.ed.Select(o)
}
