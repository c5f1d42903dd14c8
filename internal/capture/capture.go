// Package capture provides the background rasters the editor annotates:
// desktop screenshots taken through the XDG portal, image files, clipboard
// images and images already in memory.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/example/shotmark/internal/clipboard"
	"github.com/example/shotmark/internal/surface"
)

var (
	errNoMonitors = errors.New("no monitors available")
	// ErrCancelled is returned when the user dismisses the portal dialog.
	ErrCancelled = errors.New("screenshot cancelled")
	// ErrUnsupported is returned on hosts without a screenshot backend.
	ErrUnsupported = errors.New("not supported on this platform")
)

// Options tunes a portal screenshot.
type Options struct {
	Interactive   bool
	IncludeCursor bool
}

// MonitorInfo describes an individual monitor in the display layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

var (
	portalScreenshotFn = portalScreenshot
	listMonitorsFn     = listMonitors
)

// ListMonitors retrieves all monitors from the X server's RandR extension.
func ListMonitors() ([]MonitorInfo, error) {
	return listMonitorsFn()
}

// FindMonitor resolves a monitor selector against the provided list. The
// selector is "primary", an index (optionally prefixed with #) or part of
// the output name.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	if selector == "" {
		return monitors[0], nil
	}
	sel := strings.TrimSpace(selector)
	lower := strings.ToLower(sel)
	if lower == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	lower = strings.TrimPrefix(lower, "#")
	if idx, err := strconv.Atoi(lower); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), lower) {
			return mon, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}

// Screen captures the desktop when the editor activates. A non-empty
// Display crops the capture to that monitor.
type Screen struct {
	Display string
	Options Options
}

var _ surface.BackgroundSource = Screen{}

func (s Screen) Background() (image.Image, error) {
	img, err := portalScreenshotFn(s.Options)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	if s.Display == "" {
		return img, nil
	}
	monitors, err := ListMonitors()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	monitor, err := FindMonitor(monitors, s.Display)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return cropToRect(img, monitor.Rect)
}

// File reads the background from an image file. PNG, JPEG, GIF, TIFF and
// BMP are recognised.
type File string

func (f File) Background() (image.Image, error) {
	img, err := imaging.Open(string(f), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open background: %w", err)
	}
	return toRGBA(img), nil
}

// Clipboard takes the background from an image on the clipboard.
type Clipboard struct{}

func (Clipboard) Background() (image.Image, error) {
	img, err := clipboard.ReadImage()
	if err != nil {
		return nil, fmt.Errorf("paste background: %w", err)
	}
	return toRGBA(img), nil
}

// Static serves an image that is already decoded.
type Static struct{ Image image.Image }

func (s Static) Background() (image.Image, error) {
	if s.Image == nil {
		return nil, errors.New("no image")
	}
	return s.Image, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
