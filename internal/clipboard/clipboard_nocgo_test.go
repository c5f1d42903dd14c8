//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var testAtoms = atomSet{clipboard: 100, targets: 101, utf8: 102, textPlain: 103, png: 104, transfer: 105}

func decodeAtoms(b []byte) []xproto.Atom {
	out := make([]xproto.Atom, len(b)/4)
	for i := range out {
		out[i] = xproto.Atom(xgb.Get32(b[i*4:]))
	}
	return out
}

func TestTextContentReply(t *testing.T) {
	c := textContent(testAtoms, []byte(`{"version":1}`))
	for _, target := range []xproto.Atom{testAtoms.utf8, xproto.AtomString, testAtoms.textPlain} {
		typ, format, payload, ok := c.reply(testAtoms, target)
		if !ok || typ != testAtoms.utf8 || format != 8 || !bytes.Equal(payload, c.data) {
			t.Fatalf("target %d: %d %d %q %v", target, typ, format, payload, ok)
		}
	}
	if _, _, _, ok := c.reply(testAtoms, testAtoms.png); ok {
		t.Fatal("text content answered an image request")
	}
}

func TestTargetsListsOfferedFormats(t *testing.T) {
	c := imageContent(testAtoms, []byte{0x89, 'P', 'N', 'G'})
	typ, format, payload, ok := c.reply(testAtoms, testAtoms.targets)
	if !ok || typ != xproto.AtomAtom || format != 32 {
		t.Fatalf("targets reply %d %d %v", typ, format, ok)
	}
	got := decodeAtoms(payload)
	if len(got) != 2 || got[0] != testAtoms.targets || got[1] != testAtoms.png {
		t.Fatalf("targets = %v", got)
	}

	_, _, payload, ok = content{}.reply(testAtoms, testAtoms.targets)
	if got := decodeAtoms(payload); !ok || len(got) != 1 {
		t.Fatalf("empty clipboard targets = %v", got)
	}
	if _, _, _, ok := (content{}).reply(testAtoms, testAtoms.utf8); ok {
		t.Fatal("empty clipboard answered a text request")
	}
}
