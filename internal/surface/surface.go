// Package surface owns the annotation scene of one editing session: the
// object list, the edit and background coordinate spaces, selection, the
// interaction mode and the history that records it all.
package surface

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/scene"
)

var (
	// ErrInactive is returned when the surface has no background yet.
	ErrInactive = errors.New("surface: not activated")
)

// BackgroundSource supplies the native resolution image being annotated.
type BackgroundSource interface {
	Background() (image.Image, error)
}

// BackgroundFunc adapts a function to BackgroundSource.
type BackgroundFunc func() (image.Image, error)

func (f BackgroundFunc) Background() (image.Image, error) { return f() }

// Mode is the interaction mode of the surface.
type Mode int

const (
	ModeSelect Mode = iota
	ModeDraw
	ModeFreehand
)

func (m Mode) String() string {
	switch m {
	case ModeSelect:
		return "select"
	case ModeDraw:
		return "draw"
	case ModeFreehand:
		return "freehand"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Surface is the editing session. All methods must be called from the
// goroutine that runs the scheduler's callbacks.
type Surface struct {
	sched    deferred.Scheduler
	scene    *scene.Scene
	registry *scene.Registry
	history  *history.Manager

	bg       image.Image
	editSize image.Point
	scale    geom.Scale
	active   bool

	// quiet suppresses history tracking while the scene is replaced.
	quiet bool

	mode      Mode
	selection []string
	marquee   *geom.Rect

	onChange func()
}

// Option configures a Surface.
type Option func(*surfaceOptions)

type surfaceOptions struct {
	registry    *scene.Registry
	historyOpts []history.Option
	onChange    func()
}

// WithRegistry sets the variant registry used to decode snapshots.
func WithRegistry(r *scene.Registry) Option {
	return func(o *surfaceOptions) { o.registry = r }
}

// WithHistory passes options to the history manager.
func WithHistory(opts ...history.Option) Option {
	return func(o *surfaceOptions) { o.historyOpts = append(o.historyOpts, opts...) }
}

// WithChangeHandler is called after anything visible changes.
func WithChangeHandler(fn func()) Option {
	return func(o *surfaceOptions) { o.onChange = fn }
}

// New returns an inactive surface. Deferred work such as snapshot debouncing
// and snapshot reloads runs on sched.
func New(sched deferred.Scheduler, opts ...Option) *Surface {
	o := surfaceOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = scene.NewRegistry()
	}
	s := &Surface{
		sched:    sched,
		scene:    scene.New(),
		registry: o.registry,
		scale:    geom.Unit,
		onChange: o.onChange,
	}
	s.history = history.New(sched, append(o.historyOpts, history.WithChangeHandler(s.changed))...)
	s.scene.Subscribe(s)
	return s
}

// Activate loads the background from src and starts a session with an edit
// space of editSize. A zero editSize uses the background's own size.
func (s *Surface) Activate(src BackgroundSource, editSize image.Point) error {
	log := logging.For("surface")
	if src == nil {
		log.Error("activation aborted", "err", "no background source")
		return fmt.Errorf("activate: %w", ErrInactive)
	}
	bg, err := src.Background()
	if err != nil {
		log.Error("activation aborted", "err", err)
		return fmt.Errorf("activate: %w", err)
	}
	if bg == nil || bg.Bounds().Empty() {
		log.Error("activation aborted", "err", "empty background")
		return fmt.Errorf("activate: empty background: %w", ErrInactive)
	}
	if s.active {
		s.Deactivate()
	}
	s.bg = bg
	if editSize.X <= 0 || editSize.Y <= 0 {
		editSize = bg.Bounds().Size()
	}
	s.editSize = editSize
	s.scale = geom.NewScale(bg.Bounds().Size(), editSize)
	s.active = true
	s.mode = ModeSelect
	if err := s.history.Attach(s); err != nil {
		s.active = false
		return fmt.Errorf("activate: %w", err)
	}
	log.Debug("activated", "background", bg.Bounds().Size(), "edit", editSize, "scale", s.scale)
	s.changed()
	return nil
}

// Deactivate flushes pending history, removes previews and detaches. The
// scene itself is kept so it can still be exported.
func (s *Surface) Deactivate() {
	if !s.active {
		return
	}
	s.history.FlushPending()
	s.RemovePreviews()
	s.history.Detach()
	s.selection = nil
	s.active = false
	s.changed()
}

// Active reports whether a background is loaded.
func (s *Surface) Active() bool { return s.active }

// Resize changes the edit space size. Objects are rescaled so they keep
// covering the same background pixels.
func (s *Surface) Resize(editSize image.Point) {
	if !s.active || editSize.X <= 0 || editSize.Y <= 0 || editSize == s.editSize {
		return
	}
	m := canvasTransform(s.editSize, editSize)
	for _, o := range s.scene.Objects() {
		scene.Transform(o, m)
	}
	s.editSize = editSize
	s.scale = geom.NewScale(s.bg.Bounds().Size(), editSize)
	logging.For("surface").Debug("resized", "edit", editSize, "scale", s.scale)
	s.changed()
}

func canvasTransform(from, to image.Point) geom.Matrix {
	return geom.ScaleXY(float64(to.X)/float64(from.X), float64(to.Y)/float64(from.Y))
}

// Background returns the background raster, or nil before activation.
func (s *Surface) Background() image.Image { return s.bg }

// EditSize is the size of the edit space.
func (s *Surface) EditSize() image.Point { return s.editSize }

// Scale converts between edit and background space.
func (s *Surface) Scale() geom.Scale { return s.scale }

// Mode returns the interaction mode.
func (s *Surface) Mode() Mode { return s.mode }

// SetMode changes the interaction mode. Leaving select mode clears the
// selection.
func (s *Surface) SetMode(m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	if m != ModeSelect {
		s.selection = nil
	}
	s.changed()
}

// History exposes the history manager.
func (s *Surface) History() *history.Manager { return s.history }

// Undo flushes pending edits and restores the previous snapshot.
func (s *Surface) Undo() error {
	s.RemovePreviews()
	return s.history.Undo()
}

// Redo restores the next snapshot.
func (s *Surface) Redo() error {
	s.RemovePreviews()
	return s.history.Redo()
}

// FlushHistory commits any pending debounced snapshot.
func (s *Surface) FlushHistory() { s.history.FlushPending() }

// Objects returns the scene in paint order.
func (s *Surface) Objects() []scene.Object { return s.scene.Objects() }

// Len is the number of objects, previews included.
func (s *Surface) Len() int { return s.scene.Len() }

// Find returns the object with id, or nil.
func (s *Surface) Find(id string) scene.Object { return s.scene.Find(id) }

// HitTest returns the top-most selectable object at p.
func (s *Surface) HitTest(p geom.Point, tol float64) scene.Object {
	return s.scene.HitTest(p, tol)
}

// Within returns the selectable objects inside r.
func (s *Surface) Within(r geom.Rect) []scene.Object { return s.scene.Within(r) }

// Add appends a finished object and records it.
func (s *Surface) Add(o scene.Object) {
	o.Base().Finalize()
	s.scene.Add(o, scene.ChangeStructural)
	s.changed()
}

// AddPath appends a finished freehand object and records it.
func (s *Surface) AddPath(o scene.Object) {
	o.Base().Finalize()
	s.scene.Add(o, scene.ChangePathCompleted)
	s.changed()
}

// AddPreview appends o as an ephemeral preview that is neither recorded nor
// exported.
func (s *Surface) AddPreview(o scene.Object) {
	o.Base().MarkPreview()
	s.scene.Add(o, scene.ChangeStructural)
	s.changed()
}

// ReplacePreview swaps the preview old for the new preview o, keeping its
// position in the stack.
func (s *Surface) ReplacePreview(old, o scene.Object) {
	o.Base().MarkPreview()
	if old == nil || s.scene.Index(old.Base().ID) < 0 {
		s.AddPreview(o)
		return
	}
	s.scene.Swap(old.Base().ID, o)
	s.changed()
}

// Finalize turns the preview o into a permanent object and records it
// immediately.
func (s *Surface) Finalize(o scene.Object) {
	if s.scene.Index(o.Base().ID) < 0 {
		s.Add(o)
		return
	}
	o.Base().Finalize()
	s.scene.Modified(o, scene.ChangeStructural, "add "+string(o.Kind()))
	s.changed()
}

// Discard removes the preview o without recording anything.
func (s *Surface) Discard(o scene.Object) {
	if o == nil {
		return
	}
	s.scene.Remove(o.Base().ID)
	s.changed()
}

// RemovePreviews drops every preview object.
func (s *Surface) RemovePreviews() {
	previews := s.scene.Previews()
	for _, o := range previews {
		s.scene.Remove(o.Base().ID)
	}
	if len(previews) > 0 {
		s.changed()
	}
}

// Remove deletes the object with id.
func (s *Surface) Remove(id string) bool {
	_, ok := s.scene.Remove(id)
	if ok {
		s.selection = slices.DeleteFunc(s.selection, func(sel string) bool { return sel == id })
		s.changed()
	}
	return ok
}

// Modified reports an in-place change to o. Continuous changes are
// debounced into one history entry.
func (s *Surface) Modified(o scene.Object, c scene.Change, description string) {
	s.scene.Modified(o, c, description)
	s.changed()
}

// BakeArea filters the background under the edit-space rectangle r.
// Degenerate regions return effect.ErrDegenerate.
func (s *Surface) BakeArea(r geom.Rect, opts effect.Options) (*scene.Patch, error) {
	if !s.active {
		return nil, ErrInactive
	}
	bake, err := effect.Area(s.bg, s.scale, r, opts)
	if err != nil {
		return nil, err
	}
	return scene.NewPatch(opts.Kind, bake, s.scale), nil
}

// BakeBrush filters the background under a brush stroke through path.
func (s *Surface) BakeBrush(path []geom.Point, width float64, opts effect.Options) (*scene.Patch, error) {
	if !s.active {
		return nil, ErrInactive
	}
	bake, err := effect.Brush(s.bg, s.scale, path, width, opts)
	if err != nil {
		return nil, err
	}
	return scene.NewPatch(opts.Kind, bake, s.scale), nil
}

func (s *Surface) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
