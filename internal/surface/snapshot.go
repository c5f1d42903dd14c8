package surface

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/scene"
)

// ObjectAdded records structural additions. Previews are ignored until they
// are finalized.
func (s *Surface) ObjectAdded(o scene.Object, c scene.Change) {
	if s.quiet || o.Base().ExcludeFromHistory {
		return
	}
	s.history.Track(mutation(c), "add "+string(o.Kind()))
}

// ObjectRemoved records deletions.
func (s *Surface) ObjectRemoved(o scene.Object) {
	if s.quiet || o.Base().ExcludeFromHistory {
		return
	}
	s.history.Track(history.Structural, "delete "+string(o.Kind()))
}

// ObjectModified records in-place edits.
func (s *Surface) ObjectModified(o scene.Object, c scene.Change, description string) {
	if s.quiet || o.Base().ExcludeFromHistory {
		return
	}
	s.history.Track(mutation(c), description)
}

func mutation(c scene.Change) history.Mutation {
	switch c {
	case scene.ChangeContinuous:
		return history.Continuous
	case scene.ChangePathCompleted:
		return history.PathCompleted
	}
	return history.Structural
}

// Snapshot serializes every non-preview object together with the edit size.
func (s *Surface) Snapshot() ([]byte, error) {
	var objs []scene.Object
	for _, o := range s.scene.Objects() {
		if !o.Base().ExcludeFromHistory {
			objs = append(objs, o)
		}
	}
	data, err := scene.EncodeDocument(scene.Document{Canvas: s.editSize, Objects: objs})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the scene with snapshot on the next scheduler turn and
// reports the outcome to done. An unregistered object type causes one
// registry refresh and one retry.
func (s *Surface) Restore(snapshot []byte, done func(error)) {
	s.sched.AfterFunc(0, func() {
		d, err := s.decode(snapshot)
		if err != nil {
			done(err)
			return
		}
		s.load(d)
		done(nil)
	})
}

func (s *Surface) decode(snapshot []byte) (scene.Document, error) {
	d, err := s.registry.DecodeDocument(snapshot)
	if errors.Is(err, scene.ErrUnregistered) {
		logging.For("surface").Warn("unregistered object type, refreshing registry", "err", err)
		s.registry.Refresh()
		d, err = s.registry.DecodeDocument(snapshot)
	}
	if err != nil {
		return scene.Document{}, fmt.Errorf("restore: %w", err)
	}
	return d, nil
}

// load installs d, rescaling it if it was recorded at another edit size.
func (s *Surface) load(d scene.Document) {
	if d.Canvas.X > 0 && d.Canvas.Y > 0 && s.editSize.X > 0 && s.editSize.Y > 0 && d.Canvas != s.editSize {
		m := canvasTransform(d.Canvas, s.editSize)
		for _, o := range d.Objects {
			scene.Transform(o, m)
		}
	}
	s.quiet = true
	s.scene.Replace(d.Objects)
	s.quiet = false
	s.selection = s.liveSelection()
	s.changed()
}

// Load replaces the scene with a persisted document, recording the result
// as one structural history entry.
func (s *Surface) Load(data []byte) error {
	d, err := s.decode(data)
	if err != nil {
		return err
	}
	s.history.FlushPending()
	s.RemovePreviews()
	s.load(d)
	s.history.RequestSnapshot("load", history.SnapshotOptions{Immediate: true})
	return nil
}

// Save serializes the scene for persistence. It is the same format used by
// history snapshots.
func (s *Surface) Save() ([]byte, error) { return s.Snapshot() }

// CanvasOf returns the edit size recorded in a persisted document.
func (s *Surface) CanvasOf(data []byte) (image.Point, error) {
	d, err := s.decode(data)
	return d.Canvas, err
}
