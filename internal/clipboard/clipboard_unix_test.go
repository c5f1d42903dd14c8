//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"sync"
	"testing"
)

func resetInit() {
	initOnce = sync.Once{}
	initErr = nil
}

func TestEnsureInitWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	resetInit()
	t.Cleanup(resetInit)

	err := WriteText("hello world")
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
	if _, err := ReadScene(); !errors.Is(err, errNoDisplay) {
		t.Fatalf("ReadScene = %v", err)
	}
}

func TestWriteSceneRejectsInvalidDocument(t *testing.T) {
	if err := WriteScene([]byte("{not json")); !errors.Is(err, ErrNoScene) {
		t.Fatalf("WriteScene = %v", err)
	}
}
