package surface

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/example/shotmark/internal/deferred"
	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
	"github.com/example/shotmark/internal/history"
	"github.com/example/shotmark/internal/scene"
)

var teal = color.RGBA{R: 20, G: 140, B: 130, A: 255}

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func staticSource(img image.Image) BackgroundSource {
	return BackgroundFunc(func() (image.Image, error) { return img, nil })
}

func newSurface(t *testing.T, bg image.Image, edit image.Point, opts ...Option) (*Surface, *deferred.Manual) {
	t.Helper()
	sched := deferred.NewManual()
	s := New(sched, opts...)
	if err := s.Activate(staticSource(bg), edit); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	return s, sched
}

func arrow() *scene.Arrow {
	return scene.NewArrow(geom.Pt(10, 10), geom.Pt(60, 10), scene.DefaultPaint())
}

func TestActivateFailureLeavesSurfaceInactive(t *testing.T) {
	s := New(deferred.NewManual())
	boom := errors.New("no screen")
	err := s.Activate(BackgroundFunc(func() (image.Image, error) { return nil, boom }), image.Pt(10, 10))
	if !errors.Is(err, boom) {
		t.Fatalf("Activate = %v", err)
	}
	if s.Active() || s.History().Attached() {
		t.Fatal("surface active after failed activation")
	}
	if _, err := s.BakeArea(geom.RectXYWH(0, 0, 5, 5), effect.Options{Kind: effect.KindMosaic, Strength: 2}); !errors.Is(err, ErrInactive) {
		t.Fatalf("BakeArea = %v", err)
	}
}

func TestActivateComputesScale(t *testing.T) {
	s, _ := newSurface(t, uniform(200, 100, teal), image.Pt(100, 50))
	if s.Scale() != (geom.Scale{X: 2, Y: 2}) {
		t.Fatalf("scale = %+v", s.Scale())
	}
	s2, _ := newSurface(t, uniform(30, 20, teal), image.Point{})
	if s2.EditSize() != image.Pt(30, 20) || s2.Scale() != geom.Unit {
		t.Fatalf("default edit size %v scale %+v", s2.EditSize(), s2.Scale())
	}
}

func TestUndoRedoThroughSurface(t *testing.T) {
	s, sched := newSurface(t, uniform(100, 100, teal), image.Point{})
	a := arrow()
	mid := geom.Pt(35, -20)
	a.SetWorldGeometry(geom.Pt(10, 10), geom.Pt(60, 10), &mid)
	s.Add(a)
	if got := len(s.History().Entries()); got != 2 {
		t.Fatalf("entries = %d", got)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !s.History().Loading() {
		t.Fatal("reload should be pending until the scheduler runs")
	}
	sched.Advance(0)
	if s.Len() != 0 || s.History().Loading() {
		t.Fatalf("after undo len %d loading %v", s.Len(), s.History().Loading())
	}

	if err := s.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	sched.Advance(0)
	objs := s.Objects()
	if len(objs) != 1 {
		t.Fatalf("after redo len %d", len(objs))
	}
	got, ok := objs[0].(*scene.Arrow)
	if !ok || got.ID != a.ID {
		t.Fatalf("restored %T %v", objs[0], objs[0].Base().ID)
	}
	gs, gm, ge := got.WorldPoints()
	if gs != geom.Pt(10, 10) || gm != mid || ge != geom.Pt(60, 10) {
		t.Fatalf("world points %v %v %v", gs, gm, ge)
	}
	if len(s.History().Entries()) != 2 {
		t.Fatal("reload recorded history")
	}
}

func TestUndoAtStartFails(t *testing.T) {
	s, sched := newSurface(t, uniform(10, 10, teal), image.Point{})
	if err := s.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Fatalf("Undo = %v", err)
	}
	sched.Flush()
	if s.Len() != 0 {
		t.Fatal("scene changed")
	}
}

func TestPreviewLifecycle(t *testing.T) {
	s, _ := newSurface(t, uniform(100, 100, teal), image.Point{})
	a := arrow()
	s.AddPreview(a)
	if len(s.History().Entries()) != 1 {
		t.Fatal("preview was recorded")
	}
	if snap, _ := s.Snapshot(); len(decodeObjects(t, snap)) != 0 {
		t.Fatal("preview in snapshot")
	}
	s.Finalize(a)
	if len(s.History().Entries()) != 2 || a.Preview() {
		t.Fatal("finalize did not record the object")
	}

	b := arrow()
	s.AddPreview(b)
	s.RemovePreviews()
	if s.Len() != 1 || len(s.History().Entries()) != 2 {
		t.Fatalf("len %d entries %d", s.Len(), len(s.History().Entries()))
	}
}

func TestReplacePreviewKeepsOrder(t *testing.T) {
	s, _ := newSurface(t, uniform(100, 100, teal), image.Point{})
	s.Add(arrow())
	first, _ := scene.NewShape(scene.KindStar, geom.RectXYWH(0, 0, 10, 10), scene.DefaultPaint(), nil)
	second, _ := scene.NewShape(scene.KindStar, geom.RectXYWH(0, 0, 20, 20), scene.DefaultPaint(), nil)
	s.AddPreview(first)
	s.ReplacePreview(first, second)
	objs := s.Objects()
	if len(objs) != 2 || objs[1] != scene.Object(second) || !second.Preview() {
		t.Fatal("preview not replaced in place")
	}
	if len(s.History().Entries()) != 2 {
		t.Fatal("preview replacement recorded")
	}
}

func TestContinuousEditsCoalesce(t *testing.T) {
	s, sched := newSurface(t, uniform(100, 100, teal), image.Point{})
	a := arrow()
	s.Add(a)
	for i := 0; i < 6; i++ {
		scene.Translate(a, geom.Pt(1, 0))
		s.Modified(a, scene.ChangeContinuous, "move arrow")
		sched.Advance(30 * time.Millisecond)
	}
	sched.Advance(history.DefaultDebounce)
	entries := s.History().Entries()
	if len(entries) != 3 || entries[2].Description != "move arrow" {
		t.Fatalf("entries = %d", len(entries))
	}
}

func TestRestoreRefreshesRegistryOnce(t *testing.T) {
	reg := scene.NewRegistry()
	s, sched := newSurface(t, uniform(100, 100, teal), image.Point{}, WithRegistry(reg))
	s.Add(arrow())
	s.Add(arrow())
	reg.Unregister(scene.KindArrow)
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	sched.Advance(0)
	if s.Len() != 1 || s.History().Cursor() != 1 {
		t.Fatalf("len %d cursor %d", s.Len(), s.History().Cursor())
	}
}

func TestFailedRestoreRollsBack(t *testing.T) {
	reg := scene.NewRegistry()
	var reported error
	s, sched := newSurface(t, uniform(100, 100, teal), image.Point{},
		WithRegistry(reg),
		WithHistory(history.WithErrorHandler(func(err error) { reported = err })))
	s.Add(scene.NewStroke([]geom.Point{geom.Pt(1, 1), geom.Pt(5, 5)}, scene.DefaultPaint()))
	s.Add(arrow())
	boom := errors.New("corrupt stroke")
	reg.Register(scene.KindStroke, func(json.RawMessage) (scene.Object, error) { return nil, boom })

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	sched.Advance(0)
	if !errors.Is(reported, boom) {
		t.Fatalf("reported = %v", reported)
	}
	if s.History().Cursor() != 2 || s.Len() != 2 || s.History().Loading() {
		t.Fatalf("cursor %d len %d", s.History().Cursor(), s.Len())
	}
}

func TestBrushMosaicOverUniformBackground(t *testing.T) {
	s, _ := newSurface(t, uniform(200, 100, teal), image.Pt(100, 50))
	path := []geom.Point{geom.Pt(20, 25), geom.Pt(70, 25)}
	p, err := s.BakeBrush(path, 20, effect.Options{Kind: effect.KindMosaic, Strength: 6})
	if err != nil {
		t.Fatalf("BakeBrush: %v", err)
	}
	b := p.Image.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := p.Image.RGBAAt(x, y); c.A != 0 && c != teal {
				t.Fatalf("patch pixel (%d,%d) = %+v", x, y, c)
			}
		}
	}
	s.Add(p)
	out, err := s.MergeWithBackground()
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("bounds %v", out.Bounds())
	}
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if c := out.RGBAAt(x, y); c != teal {
				t.Fatalf("merged (%d,%d) = %+v", x, y, c)
			}
		}
	}
}

func TestBakeAreaRejectsDegenerate(t *testing.T) {
	s, _ := newSurface(t, uniform(40, 40, teal), image.Point{})
	opts := effect.Options{Kind: effect.KindBlur, Strength: 3}
	if _, err := s.BakeArea(geom.RectXYWH(5, 5, 0, 10), opts); !errors.Is(err, effect.ErrDegenerate) {
		t.Fatalf("zero width = %v", err)
	}
	if _, err := s.BakeArea(geom.RectXYWH(100, 100, 10, 10), opts); !errors.Is(err, effect.ErrDegenerate) {
		t.Fatalf("outside = %v", err)
	}
	if s.Len() != 0 || len(s.History().Entries()) != 1 {
		t.Fatal("degenerate bake changed the scene")
	}
}

func TestMergeExcludesPreviews(t *testing.T) {
	s, _ := newSurface(t, uniform(50, 50, teal), image.Point{})
	red := color.RGBA{R: 255, A: 255}
	sh, _ := scene.NewShape(scene.KindRectangle, geom.RectXYWH(10, 10, 20, 20), scene.Paint{Color: red, Opacity: 1}, &red)
	s.AddPreview(sh)
	out, err := s.MergeWithBackground()
	if err != nil {
		t.Fatal(err)
	}
	if out.RGBAAt(20, 20) != teal {
		t.Fatal("preview exported")
	}
	view, err := s.View(nil)
	if err != nil {
		t.Fatal(err)
	}
	if view.RGBAAt(20, 20) == teal {
		t.Fatal("preview missing from the view")
	}
}

func TestResizeRescalesObjects(t *testing.T) {
	s, sched := newSurface(t, uniform(200, 200, teal), image.Pt(100, 100))
	sh, _ := scene.NewShape(scene.KindRectangle, geom.RectXYWH(10, 10, 20, 20), scene.DefaultPaint(), nil)
	s.Add(sh)
	s.Resize(image.Pt(200, 200))
	if s.Scale() != geom.Unit || sh.Rect != geom.RectXYWH(20, 20, 40, 40) {
		t.Fatalf("scale %+v rect %+v", s.Scale(), sh.Rect)
	}
	s.Add(arrow())
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	sched.Advance(0)
	objs := s.Objects()
	if len(objs) != 1 {
		t.Fatalf("len %d", len(objs))
	}
	if r := objs[0].(*scene.Shape).Rect; r != geom.RectXYWH(20, 20, 40, 40) {
		t.Fatalf("restored rect %+v not in the new edit space", r)
	}
}

func TestSelectionAndDelete(t *testing.T) {
	s, sched := newSurface(t, uniform(100, 100, teal), image.Point{})
	a, b := arrow(), arrow()
	s.Add(a)
	s.Add(b)
	s.SelectAll()
	if len(s.Selected()) != 2 {
		t.Fatal("select all")
	}
	if n := s.DeleteSelected(); n != 2 {
		t.Fatalf("deleted %d", n)
	}
	entries := s.History().Entries()
	if len(entries) != 4 || entries[3].Description != "delete selection" {
		t.Fatalf("entries %d", len(entries))
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	sched.Advance(0)
	if s.Len() != 2 {
		t.Fatalf("undo delete len %d", s.Len())
	}
}

func TestSaveLoad(t *testing.T) {
	s, _ := newSurface(t, uniform(100, 100, teal), image.Point{})
	s.Add(arrow())
	data, err := s.Save()
	if err != nil {
		t.Fatal(err)
	}
	other, _ := newSurface(t, uniform(100, 100, teal), image.Pt(50, 50))
	if err := other.Load(data); err != nil {
		t.Fatal(err)
	}
	if other.Len() != 1 || len(other.History().Entries()) != 2 {
		t.Fatalf("len %d entries %d", other.Len(), len(other.History().Entries()))
	}
	start, _, end := other.Objects()[0].(*scene.Arrow).WorldPoints()
	if start != geom.Pt(5, 5) || end != geom.Pt(30, 5) {
		t.Fatalf("loaded arrow not rescaled: %v %v", start, end)
	}
	if canvas, err := other.CanvasOf(data); err != nil || canvas != image.Pt(100, 100) {
		t.Fatalf("canvas %v err %v", canvas, err)
	}
}

func TestDeactivateRemovesPreviews(t *testing.T) {
	s, _ := newSurface(t, uniform(100, 100, teal), image.Point{})
	s.Add(arrow())
	s.AddPreview(arrow())
	s.Deactivate()
	if s.Len() != 1 || s.History().Attached() || s.Active() {
		t.Fatal("deactivate left state behind")
	}
}

func decodeObjects(t *testing.T, data []byte) []scene.Object {
	t.Helper()
	objs, err := scene.NewRegistry().Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	return objs
}
