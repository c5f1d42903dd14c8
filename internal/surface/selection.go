package surface

import (
	"slices"

	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/scene"
)

// Select replaces the selection with the given objects. Non-selectable and
// unknown objects are skipped. Selecting switches to select mode.
func (s *Surface) Select(objs ...scene.Object) {
	s.selection = s.selection[:0]
	for _, o := range objs {
		if o == nil || !o.Base().Selectable || s.scene.Index(o.Base().ID) < 0 {
			continue
		}
		if !slices.Contains(s.selection, o.Base().ID) {
			s.selection = append(s.selection, o.Base().ID)
		}
	}
	s.mode = ModeSelect
	s.changed()
}

// SelectAll selects every selectable object.
func (s *Surface) SelectAll() {
	var objs []scene.Object
	for _, o := range s.scene.Objects() {
		if o.Base().Selectable {
			objs = append(objs, o)
		}
	}
	s.Select(objs...)
}

// ClearSelection deselects everything.
func (s *Surface) ClearSelection() {
	if len(s.selection) == 0 {
		return
	}
	s.selection = nil
	s.changed()
}

// Selected returns the selected objects in paint order.
func (s *Surface) Selected() []scene.Object {
	var out []scene.Object
	for _, o := range s.scene.Objects() {
		if slices.Contains(s.selection, o.Base().ID) {
			out = append(out, o)
		}
	}
	return out
}

// IsSelected reports whether o is selected.
func (s *Surface) IsSelected(o scene.Object) bool {
	return o != nil && slices.Contains(s.selection, o.Base().ID)
}

// DeleteSelected removes the selected objects as a single history entry.
func (s *Surface) DeleteSelected() int {
	sel := s.Selected()
	if len(sel) == 0 {
		return 0
	}
	s.history.FlushPending()
	s.quiet = true
	for _, o := range sel {
		s.scene.Remove(o.Base().ID)
	}
	s.quiet = false
	s.selection = nil
	desc := "delete " + string(sel[0].Kind())
	if len(sel) > 1 {
		desc = "delete selection"
	}
	s.history.Track(history.Structural, desc)
	s.changed()
	return len(sel)
}

// SetMarquee shows r as the rubber band rectangle; nil hides it.
func (s *Surface) SetMarquee(r *geom.Rect) {
	if r == nil && s.marquee == nil {
		return
	}
	s.marquee = r
	s.changed()
}

// Marquee returns the rubber band rectangle, if one is shown.
func (s *Surface) Marquee() *geom.Rect { return s.marquee }

// liveSelection drops ids that are no longer in the scene.
func (s *Surface) liveSelection() []string {
	return slices.DeleteFunc(s.selection, func(id string) bool { return s.scene.Index(id) < 0 })
}
