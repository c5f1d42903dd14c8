package scene

import (
	"slices"

	"github.com/example/shotmark/internal/geom"
)

// Change classifies a mutation for history tracking.
type Change int

const (
	// ChangeStructural is an add or remove.
	ChangeStructural Change = iota
	// ChangeContinuous is a move, scale or handle drag still in progress.
	ChangeContinuous
	// ChangePathCompleted is a finished freehand path.
	ChangePathCompleted
)

func (c Change) String() string {
	switch c {
	case ChangeStructural:
		return "structural"
	case ChangeContinuous:
		return "continuous"
	case ChangePathCompleted:
		return "path-completed"
	}
	return "unknown"
}

// Listener receives scene events.
type Listener interface {
	ObjectAdded(o Object, c Change)
	ObjectRemoved(o Object)
	ObjectModified(o Object, c Change, description string)
}

// Scene is the ordered object list. Slice order is paint order; the last
// object is on top.
type Scene struct {
	objects   []Object
	listeners []Listener
}

// New returns an empty scene.
func New() *Scene { return &Scene{} }

// Subscribe registers l for add, remove and modify events.
func (s *Scene) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Add appends o on top of the scene.
func (s *Scene) Add(o Object, c Change) {
	s.objects = append(s.objects, o)
	for _, l := range s.listeners {
		l.ObjectAdded(o, c)
	}
}

// Remove deletes the object with id.
func (s *Scene) Remove(id string) (Object, bool) {
	i := s.Index(id)
	if i < 0 {
		return nil, false
	}
	o := s.objects[i]
	s.objects = slices.Delete(s.objects, i, i+1)
	for _, l := range s.listeners {
		l.ObjectRemoved(o)
	}
	return o, true
}

// Swap puts o in place of the object with id, keeping its stack position.
func (s *Scene) Swap(id string, o Object) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	old := s.objects[i]
	s.objects[i] = o
	for _, l := range s.listeners {
		l.ObjectRemoved(old)
		l.ObjectAdded(o, ChangeStructural)
	}
	return true
}

// Modified announces that o changed in place.
func (s *Scene) Modified(o Object, c Change, description string) {
	for _, l := range s.listeners {
		l.ObjectModified(o, c, description)
	}
}

// Replace swaps the whole content, announcing every removal and addition.
func (s *Scene) Replace(objs []Object) {
	for len(s.objects) > 0 {
		s.Remove(s.objects[len(s.objects)-1].Base().ID)
	}
	for _, o := range objs {
		s.Add(o, ChangeStructural)
	}
}

// Objects returns a copy of the object list in paint order.
func (s *Scene) Objects() []Object { return slices.Clone(s.objects) }

// Len is the number of objects, previews included.
func (s *Scene) Len() int { return len(s.objects) }

// Index returns the position of id or -1.
func (s *Scene) Index(id string) int {
	return slices.IndexFunc(s.objects, func(o Object) bool { return o.Base().ID == id })
}

// Find returns the object with id.
func (s *Scene) Find(id string) Object {
	if i := s.Index(id); i >= 0 {
		return s.objects[i]
	}
	return nil
}

// HitTest returns the top-most selectable object under p.
func (s *Scene) HitTest(p geom.Point, tol float64) Object {
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		if o.Base().Selectable && HitTest(o, p, tol) {
			return o
		}
	}
	return nil
}

// Within returns the selectable objects whose bounds overlap r, bottom first.
func (s *Scene) Within(r geom.Rect) []Object {
	var out []Object
	for _, o := range s.objects {
		if o.Base().Selectable && o.Bounds().Overlaps(r) {
			out = append(out, o)
		}
	}
	return out
}

// Previews returns the ephemeral preview objects.
func (s *Scene) Previews() []Object {
	var out []Object
	for _, o := range s.objects {
		if o.Base().Preview() {
			out = append(out, o)
		}
	}
	return out
}
