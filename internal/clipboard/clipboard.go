// Package clipboard copies flattened screenshots and scene documents to the
// system clipboard and reads them back.
package clipboard

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

var (
	// ErrNoScene is returned when the clipboard text is not a scene document.
	ErrNoScene = errors.New("clipboard does not contain a scene")
	// ErrUnsupported is returned when this build has no clipboard backend.
	ErrUnsupported = errors.New("clipboard not supported")

	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func checkDisplay() error {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return errNoDisplay
	}
	return nil
}

// WriteScene places a serialized scene on the clipboard as text so it can be
// pasted into another editor session.
func WriteScene(doc []byte) error {
	if !json.Valid(doc) {
		return ErrNoScene
	}
	return WriteText(string(doc))
}

// ReadScene returns a scene previously copied with WriteScene.
func ReadScene() ([]byte, error) {
	text, err := ReadText()
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") || !json.Valid([]byte(text)) {
		return nil, ErrNoScene
	}
	return []byte(text), nil
}
