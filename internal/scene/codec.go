package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"github.com/example/shotmark/internal/effect"
	"github.com/example/shotmark/internal/geom"
)

// FormatVersion is the persisted scene format version.
const FormatVersion = 1

var (
	// ErrUnregistered matches decode failures caused by an object type with
	// no registered decoder.
	ErrUnregistered = errors.New("scene: unregistered object type")
	// ErrUnsupportedVersion is returned for documents newer than this build.
	ErrUnsupportedVersion = errors.New("scene: unsupported format version")
)

// UnregisteredError names the object type that had no decoder.
type UnregisteredError struct {
	Type Kind
}

func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("scene: no decoder registered for object type %q", e.Type)
}

func (e *UnregisteredError) Is(target error) bool { return target == ErrUnregistered }

type document struct {
	Version int               `json:"version"`
	Canvas  *sizeRecord       `json:"canvas,omitempty"`
	Objects []json.RawMessage `json:"objects"`
}

type sizeRecord struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Document is a scene together with the edit-space size its geometry was
// recorded in. A zero Canvas means the size is unknown.
type Document struct {
	Canvas  image.Point
	Objects []Object
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toPoint(p geom.Point) point { return point{X: p.X, Y: p.Y} }
func (p point) pt() geom.Point   { return geom.Pt(p.X, p.Y) }

type commonRecord struct {
	Type    Kind    `json:"type"`
	ID      string  `json:"id"`
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Opacity float64 `json:"opacity"`
}

type arrowRecord struct {
	commonRecord
	Start      point   `json:"start"`
	Middle     point   `json:"middle"`
	End        point   `json:"end"`
	HeadLength float64 `json:"headLength"`
	Dashed     bool    `json:"dashed,omitempty"`
}

type rectRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type shapeRecord struct {
	commonRecord
	Rect rectRecord `json:"rect"`
	Fill *string    `json:"fill"`
}

type strokeRecord struct {
	commonRecord
	Points [][2]float64 `json:"points"`
}

type patchRecord struct {
	commonRecord
	Effect   effect.Kind `json:"effect"`
	Position point       `json:"position"`
	ScaleX   float64     `json:"scaleX"`
	ScaleY   float64     `json:"scaleY"`
	Image    []byte      `json:"image"`
}

func commonOf(o Object) commonRecord {
	c := o.Base()
	rec := commonRecord{Type: o.Kind(), ID: c.ID, Width: c.Paint.Width, Opacity: c.Paint.Opacity}
	if _, ok := o.(*Patch); !ok {
		rec.Color = FormatColor(c.Paint.Color)
	}
	return rec
}

// Encode serializes objs as a tagged object list. Arrows store their world
// points and style only.
func Encode(objs []Object) ([]byte, error) {
	return EncodeDocument(Document{Objects: objs})
}

// EncodeDocument serializes d, recording its canvas size when known.
func EncodeDocument(d Document) ([]byte, error) {
	doc := struct {
		Version int         `json:"version"`
		Canvas  *sizeRecord `json:"canvas,omitempty"`
		Objects []any       `json:"objects"`
	}{Version: FormatVersion, Objects: make([]any, 0, len(d.Objects))}
	if d.Canvas.X > 0 && d.Canvas.Y > 0 {
		doc.Canvas = &sizeRecord{W: d.Canvas.X, H: d.Canvas.Y}
	}
	for i, o := range d.Objects {
		rec, err := record(o)
		if err != nil {
			return nil, fmt.Errorf("encode object %d: %w", i, err)
		}
		doc.Objects = append(doc.Objects, rec)
	}
	return json.Marshal(doc)
}

func record(o Object) (any, error) {
	switch o := o.(type) {
	case *Arrow:
		return arrowRecord{
			commonRecord: commonOf(o),
			Start:        toPoint(o.start),
			Middle:       toPoint(o.middle),
			End:          toPoint(o.end),
			HeadLength:   o.HeadLength,
			Dashed:       o.Dashed,
		}, nil
	case *Shape:
		rec := shapeRecord{
			commonRecord: commonOf(o),
			Rect:         rectRecord{X: o.Rect.Min.X, Y: o.Rect.Min.Y, W: o.Rect.Width(), H: o.Rect.Height()},
		}
		if o.Fill != nil {
			f := FormatColor(*o.Fill)
			rec.Fill = &f
		}
		return rec, nil
	case *Stroke:
		pts := make([][2]float64, len(o.Points))
		for i, p := range o.Points {
			pts[i] = [2]float64{p.X, p.Y}
		}
		return strokeRecord{commonRecord: commonOf(o), Points: pts}, nil
	case *Patch:
		var buf bytes.Buffer
		if err := png.Encode(&buf, o.Image); err != nil {
			return nil, fmt.Errorf("encode patch image: %w", err)
		}
		return patchRecord{
			commonRecord: commonOf(o),
			Effect:       o.Effect,
			Position:     toPoint(o.Position),
			ScaleX:       o.ScaleX,
			ScaleY:       o.ScaleY,
			Image:        buf.Bytes(),
		}, nil
	}
	return nil, fmt.Errorf("unhandled object %T", o)
}

// DecodeFunc rebuilds one object from its record.
type DecodeFunc func(raw json.RawMessage) (Object, error)

// Registry maps object type tags to decoders.
type Registry struct {
	mu       sync.RWMutex
	decoders map[Kind]DecodeFunc
}

// NewRegistry returns a registry with every built-in variant registered.
func NewRegistry() *Registry {
	r := &Registry{decoders: map[Kind]DecodeFunc{}}
	r.Refresh()
	return r
}

// Refresh (re)registers the built-in decoders, keeping any extra ones.
func (r *Registry) Refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[KindArrow] = decodeArrow
	r.decoders[KindStroke] = decodeStroke
	r.decoders[KindPatch] = decodePatch
	for _, k := range ShapeKinds() {
		r.decoders[k] = decodeShape
	}
}

// Register installs fn for k, replacing any previous decoder.
func (r *Registry) Register(k Kind, fn DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[k] = fn
}

// Unregister removes the decoder for k.
func (r *Registry) Unregister(k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.decoders, k)
}

func (r *Registry) lookup(k Kind) (DecodeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[k]
	return fn, ok
}

// Decode parses a serialized scene. Every object is rebuilt from its stored
// source fields; derived geometry is recomputed.
func (r *Registry) Decode(data []byte) ([]Object, error) {
	d, err := r.DecodeDocument(data)
	return d.Objects, err
}

// DecodeDocument is Decode that also returns the recorded canvas size.
func (r *Registry) DecodeDocument(data []byte) (Document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode scene: %w", err)
	}
	if doc.Version > FormatVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	var d Document
	if doc.Canvas != nil {
		d.Canvas = image.Pt(doc.Canvas.W, doc.Canvas.H)
	}
	out := make([]Object, 0, len(doc.Objects))
	for i, raw := range doc.Objects {
		var head struct {
			Type Kind `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return Document{}, fmt.Errorf("decode object %d: %w", i, err)
		}
		fn, ok := r.lookup(head.Type)
		if !ok {
			return Document{}, &UnregisteredError{Type: head.Type}
		}
		o, err := fn(raw)
		if err != nil {
			return Document{}, fmt.Errorf("decode %s object %d: %w", head.Type, i, err)
		}
		out = append(out, o)
	}
	d.Objects = out
	return d, nil
}

func (c commonRecord) common() (Common, error) {
	if err := ValidateID(c.ID); err != nil {
		return Common{}, err
	}
	p := Paint{Width: c.Width, Opacity: c.Opacity}
	if c.Color != "" {
		col, err := ParseColor(c.Color)
		if err != nil {
			return Common{}, err
		}
		p.Color = col
	}
	com := newCommon(p)
	com.ID = c.ID
	return com, nil
}

func decodeArrow(raw json.RawMessage) (Object, error) {
	var rec arrowRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	com, err := rec.common()
	if err != nil {
		return nil, err
	}
	a := &Arrow{Common: com, HeadLength: rec.HeadLength, Dashed: rec.Dashed}
	mid := rec.Middle.pt()
	a.SetWorldGeometry(rec.Start.pt(), rec.End.pt(), &mid)
	return a, nil
}

func decodeShape(raw json.RawMessage) (Object, error) {
	var rec shapeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	com, err := rec.common()
	if err != nil {
		return nil, err
	}
	var fill *color.RGBA
	if rec.Fill != nil {
		c, err := ParseColor(*rec.Fill)
		if err != nil {
			return nil, err
		}
		fill = &c
	}
	s, err := NewShape(rec.Type, geom.RectXYWH(rec.Rect.X, rec.Rect.Y, rec.Rect.W, rec.Rect.H), com.Paint, fill)
	if err != nil {
		return nil, err
	}
	s.Common = com
	return s, nil
}

func decodeStroke(raw json.RawMessage) (Object, error) {
	var rec strokeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	com, err := rec.common()
	if err != nil {
		return nil, err
	}
	pts := make([]geom.Point, len(rec.Points))
	for i, p := range rec.Points {
		pts[i] = geom.Pt(p[0], p[1])
	}
	s := &Stroke{Common: com}
	s.SetPoints(pts)
	return s, nil
}

func decodePatch(raw json.RawMessage) (Object, error) {
	var rec patchRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	com, err := rec.common()
	if err != nil {
		return nil, err
	}
	if _, err := effect.ParseKind(string(rec.Effect)); err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(rec.Image))
	if err != nil {
		return nil, fmt.Errorf("decode patch image: %w", err)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	if rec.ScaleX <= 0 || rec.ScaleY <= 0 {
		return nil, fmt.Errorf("invalid patch scale %vx%v", rec.ScaleX, rec.ScaleY)
	}
	return &Patch{
		Common:   com,
		Effect:   rec.Effect,
		Image:    rgba,
		Position: rec.Position.pt(),
		ScaleX:   rec.ScaleX,
		ScaleY:   rec.ScaleY,
	}, nil
}
