// Package tools turns pointer gestures into scene edits. Each tool is
// constructed with the surface it edits and the parameter source it reads;
// the Toolbox switches between them and routes events to the active one.
package tools

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/params"
	"github.com/example/shotmark/internal/scene"
	"github.com/example/shotmark/internal/surface"
)

const (
	// DefaultMinDrag is the smallest start-to-end distance, in edit pixels,
	// that turns a drawing gesture into an object.
	DefaultMinDrag = 10
	// HitTolerance is the pointer slop used for hit-testing and handles.
	HitTolerance = 6
)

var (
	ErrUnknownTool = errors.New("tools: unknown tool")
	// ErrNoBackground is returned when a tool is activated before the
	// surface has a background raster.
	ErrNoBackground = errors.New("tools: background unavailable")
)

// Editor is the part of the edit surface the tools use. *surface.Surface
// implements it.
type Editor interface {
	Active() bool
	Background() image.Image
	SetMode(surface.Mode)

	Add(scene.Object)
	AddPath(scene.Object)
	AddPreview(scene.Object)
	ReplacePreview(old, o scene.Object)
	Finalize(scene.Object)
	Discard(scene.Object)
	RemovePreviews()
	Modified(o scene.Object, c scene.Change, description string)

	HitTest(p geom.Point, tol float64) scene.Object
	Within(r geom.Rect) []scene.Object
	Select(objs ...scene.Object)
	SelectAll()
	ClearSelection()
	Selected() []scene.Object
	IsSelected(scene.Object) bool
	DeleteSelected() int
	SetMarquee(*geom.Rect)

	BakeArea(r geom.Rect, opts effect.Options) (*scene.Patch, error)
	BakeBrush(path []geom.Point, width float64, opts effect.Options) (*scene.Patch, error)

	FlushHistory()
	Undo() error
	Redo() error
}

var _ Editor = (*surface.Surface)(nil)

// Tool handles pointer gestures in edit-space coordinates.
type Tool interface {
	Name() string
	Mode() surface.Mode
	// Activate reads the tool's parameters and starts listening for changes.
	// A failed activation leaves nothing behind.
	Activate() error
	// Deactivate abandons any gesture in progress.
	Deactivate()
	PointerDown(p geom.Point)
	PointerMove(p geom.Point)
	PointerUp(p geom.Point)
}

// requireBackground fails activation when the surface cannot be edited yet.
func requireBackground(ed Editor, tool string) error {
	if ed.Active() && ed.Background() != nil {
		return nil
	}
	logging.For("tools").Error("activation aborted", "tool", tool, "err", ErrNoBackground)
	return fmt.Errorf("activate %s: %w", tool, ErrNoBackground)
}

// paramWatch keeps a tool's copy of its parameters current.
type paramWatch struct {
	src    params.Source
	tool   string
	values params.Values
	unsub  func()
}

func (w *paramWatch) start() {
	w.values = w.src.Values(w.tool)
	w.unsub = w.src.Subscribe(w.tool, func(v params.Values) { w.values = v })
}

func (w *paramWatch) stop() {
	if w.unsub != nil {
		w.unsub()
		w.unsub = nil
	}
}

func (w *paramWatch) paint() scene.Paint {
	def := scene.DefaultPaint()
	return scene.Paint{
		Color:   w.values.Color(params.KeyColor, def.Color),
		Width:   w.values.Float(params.KeyWidth, def.Width),
		Opacity: w.values.Float(params.KeyOpacity, def.Opacity),
	}
}

// Handoff receives a freshly drawn object.
type Handoff func(scene.Object)
