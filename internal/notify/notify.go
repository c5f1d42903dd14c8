// Package notify sends desktop notifications when a screenshot is captured,
// saved or copied.
package notify

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kelseyhightower/envconfig"

	"github.com/example/shotmark/internal/logging"
	"github.com/example/shotmark/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture emits a notification when a capture completes.
	EventCapture Event = "capture"
	// EventSave emits a notification when an image is persisted to disk.
	EventSave Event = "save"
	// EventCopy emits a notification when data is copied to the clipboard.
	EventCopy Event = "copy"
)

// Preferences describes the notification title and the body template of
// each event. Templates take one %s for the event detail.
type Preferences struct {
	Title   string `envconfig:"NOTIFY_TITLE" default:"shotmark"`
	Capture string `envconfig:"NOTIFY_CAPTURE_TEXT" default:"Captured %s"`
	Save    string `envconfig:"NOTIFY_SAVE_TEXT" default:"Saved %s"`
	Copy    string `envconfig:"NOTIFY_COPY_TEXT" default:"Copied %s to clipboard"`
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title:   "shotmark",
		Capture: "Captured %s",
		Save:    "Saved %s",
		Copy:    "Copied %s to clipboard",
	}
}

// LoadPreferences reads the title and templates from prefixed environment
// variables such as SHOTMARK_NOTIFY_TITLE.
func LoadPreferences(prefix string) (Preferences, error) {
	var p Preferences
	if err := envconfig.Process(prefix, &p); err != nil {
		return DefaultPreferences(), fmt.Errorf("notification preferences: %w", err)
	}
	return p, nil
}

func (p Preferences) template(event Event) string {
	switch event {
	case EventCapture:
		return p.Capture
	case EventSave:
		return p.Save
	case EventCopy:
		return p.Copy
	}
	return ""
}

// Sender delivers one notification.
type Sender func(title, body string, opts platform.Options) error

// Notifier sends OS-level notifications for the enabled events.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
}

// New creates a Notifier that delivers through the host platform.
func New(prefs Preferences) *Notifier {
	return NewWithSender(prefs, platform.Notify)
}

// NewWithSender creates a Notifier that delivers through send.
func NewWithSender(prefs Preferences, send Sender) *Notifier {
	return &Notifier{prefs: prefs, enabled: make(map[Event]bool), send: send}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Capture sends a capture notification with an optional image preview.
func (n *Notifier) Capture(detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			logging.For("notify").Warn("notification preview", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventCapture, detail, opts)
}

// Save sends a save notification including the written filename when available.
func (n *Notifier) Save(path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, statErr := os.Stat(abs); statErr == nil {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "image"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	template := strings.TrimSpace(n.prefs.template(event))
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		logging.For("notify").Warn("notification failed", "event", event, "err", err)
	}
}

// previewSize bounds the thumbnail attached to capture notifications.
const previewSize = 256

// createPreview writes a thumbnail of img to a temporary PNG. The returned
// cleanup removes it.
func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "shotmark-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.For("notify").Warn("remove preview", "err", err)
		}
	}
	thumb := imaging.Fit(img, previewSize, previewSize, imaging.Box)
	err = imaging.Encode(f, thumb, imaging.PNG)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("preview: %w", err)
	}
	return path, cleanup, nil
}
