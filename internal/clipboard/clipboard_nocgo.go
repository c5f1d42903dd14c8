//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"slices"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/example/shotmark/internal/logging"
)

// Without cgo the clipboard speaks the X selection protocol itself. The
// process owns CLIPBOARD through an unmapped window and answers
// SelectionRequest events on its own connection.

// readTimeout bounds the wait for the selection owner to convert.
var readTimeout = 3 * time.Second

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if initErr = checkDisplay(); initErr != nil {
			return
		}
		owner, initErr = newSelectionOwner()
	})
	return initErr
}

type atomSet struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	utf8      xproto.Atom
	textPlain xproto.Atom
	png       xproto.Atom
	transfer  xproto.Atom
}

// content is what the process currently offers: one payload published
// under each of targets with property type typ.
type content struct {
	data    []byte
	typ     xproto.Atom
	targets []xproto.Atom
}

func textContent(a atomSet, text []byte) content {
	return content{data: text, typ: a.utf8, targets: []xproto.Atom{a.utf8, xproto.AtomString, a.textPlain}}
}

func imageContent(a atomSet, encoded []byte) content {
	return content{data: encoded, typ: a.png, targets: []xproto.Atom{a.png}}
}

// reply resolves a request for target. ok is false when the request must be
// refused with a None property.
func (c content) reply(a atomSet, target xproto.Atom) (typ xproto.Atom, format byte, payload []byte, ok bool) {
	if target == a.targets {
		offered := []xproto.Atom{a.targets}
		if len(c.data) > 0 {
			offered = append(offered, c.targets...)
		}
		return xproto.AtomAtom, 32, atomBytes(offered), true
	}
	if len(c.data) == 0 || !slices.Contains(c.targets, target) {
		return 0, 0, nil, false
	}
	return c.typ, 8, c.data, true
}

func atomBytes(atoms []xproto.Atom) []byte {
	buf := make([]byte, len(atoms)*4)
	for i, a := range atoms {
		xgb.Put32(buf[i*4:], uint32(a))
	}
	return buf
}

type selectionOwner struct {
	conn  *xgb.Conn
	win   xproto.Window
	atoms atomSet

	mu      sync.Mutex
	current content
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	win, err := hiddenWindow(conn, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		conn.Close()
		return nil, err
	}
	atoms, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, win)
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{conn: conn, win: win, atoms: atoms}
	go o.serve()
	return o, nil
}

func hiddenWindow(conn *xgb.Conn, mask uint32) (xproto.Window, error) {
	setup := xproto.Setup(conn)
	if setup == nil {
		return 0, errors.New("X setup unavailable")
	}
	scr := setup.DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, fmt.Errorf("window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, 0, win, scr.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{mask}).Check()
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}
	return win, nil
}

func internAtoms(conn *xgb.Conn) (atomSet, error) {
	names := []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png", "SHOTMARK_SELECTION"}
	atoms := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atomSet{}, fmt.Errorf("intern %s: %w", name, err)
		}
		atoms[i] = reply.Atom
	}
	return atomSet{
		clipboard: atoms[0],
		targets:   atoms[1],
		utf8:      atoms[2],
		textPlain: atoms[3],
		png:       atoms[4],
		transfer:  atoms[5],
	}, nil
}

func (o *selectionOwner) publish(c content) error {
	o.mu.Lock()
	o.current = c
	o.mu.Unlock()
	err := xproto.SetSelectionOwnerChecked(o.conn, o.win, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("take clipboard: %w", err)
	}
	return nil
}

func (o *selectionOwner) serve() {
	log := logging.For("clipboard")
	for {
		ev, err := o.conn.WaitForEvent()
		switch {
		case ev == nil && err == nil:
			return
		case err != nil:
			log.Debug("x event", "err", err)
			continue
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			log.Debug("clipboard content replaced by another client")
			o.mu.Lock()
			o.current = content{}
			o.mu.Unlock()
		}
	}
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	o.mu.Lock()
	c := o.current
	o.mu.Unlock()

	property := e.Property
	if property == xproto.AtomNone {
		// obsolete clients name the target as the property
		property = e.Target
	}
	if typ, format, payload, ok := c.reply(o.atoms, e.Target); ok {
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, typ, format,
			uint32(len(payload)/int(format/8)), payload)
	} else {
		property = xproto.AtomNone
	}
	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// read converts the clipboard to target on a fresh connection so the
// owner's own event loop can answer when this process holds the selection.
func (o *selectionOwner) read(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect X server: %w", err)
	}
	defer conn.Close()
	win, err := hiddenWindow(conn, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, win)

	err = xproto.ConvertSelectionChecked(conn, win, o.atoms.clipboard, target, o.atoms.transfer, xproto.TimeCurrentTime).Check()
	if err != nil {
		return nil, fmt.Errorf("convert selection: %w", err)
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := o.awaitTransfer(conn, win)
		done <- result{data, err}
	}()
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(readTimeout):
		return nil, fmt.Errorf("clipboard owner did not answer within %s", readTimeout)
	}
}

func (o *selectionOwner) awaitTransfer(conn *xgb.Conn, win xproto.Window) ([]byte, error) {
	for {
		ev, err := conn.WaitForEvent()
		if ev == nil && err == nil {
			return nil, errors.New("X connection closed")
		}
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok || e.Requestor != win {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, errors.New("clipboard target unavailable")
		}
		reply, perr := xproto.GetProperty(conn, true, win, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, fmt.Errorf("read selection: %w", perr)
		}
		return slices.Clone(reply.Value), nil
	}
}

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return owner.publish(imageContent(owner.atoms, buf.Bytes()))
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data, err := owner.read(owner.atoms.png)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("clipboard does not contain image data")
	}
	return png.Decode(bytes.NewReader(data))
}

// WriteText writes text data to the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.publish(textContent(owner.atoms, []byte(text)))
}

// ReadText returns UTF-8 text data from the clipboard, falling back to the
// legacy STRING target.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	data, err := owner.read(owner.atoms.utf8)
	if err != nil {
		if data, err = owner.read(xproto.AtomString); err != nil {
			return "", err
		}
	}
	data = bytes.TrimSuffix(data, []byte{0})
	if len(data) == 0 {
		return "", errors.New("clipboard does not contain text data")
	}
	return string(data), nil
}
