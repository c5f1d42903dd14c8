//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"golang.design/x/clipboard"

	"github.com/example/shotmark/internal/logging"
)

var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		if initErr = checkDisplay(); initErr == nil {
			initErr = clipboard.Init()
		}
	})
	return initErr
}

func write(f clipboard.Format, data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	replaced := clipboard.Write(f, data)
	go func() {
		<-replaced
		logging.For("clipboard").Debug("clipboard content replaced by another client")
	}()
	return nil
}

func read(f clipboard.Format, what string) ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data := clipboard.Read(f)
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain %s data", what)
	}
	return data, nil
}

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return write(clipboard.FmtImage, buf.Bytes())
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	data, err := read(clipboard.FmtImage, "image")
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(data))
}

// WriteText writes text data to the clipboard.
func WriteText(text string) error {
	return write(clipboard.FmtText, []byte(text))
}

// ReadText returns UTF-8 text data from the clipboard.
func ReadText() (string, error) {
	data, err := read(clipboard.FmtText, "text")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
