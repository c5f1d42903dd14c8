//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/godbus/dbus/v5"

	"github.com/example/shotmark/internal/logging"
)

const (
	portalDest      = "org.freedesktop.portal.Desktop"
	portalPath      = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	screenshotCall  = "org.freedesktop.portal.Screenshot.Screenshot"
	requestResponse = "org.freedesktop.portal.Request.Response"
)

// portalTimeout bounds the wait for the portal's Response signal. The
// interactive dialog waits on the user, so it gets longer.
var portalTimeout = func(o Options) time.Duration {
	if o.Interactive {
		return 5 * time.Minute
	}
	return 30 * time.Second
}

var portalHandleToken = func() string {
	return fmt.Sprintf("shotmark_%d", time.Now().UnixNano())
}

func portalScreenshot(o Options) (*image.RGBA, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("portal: session bus: %w", err)
	}
	defer conn.Close()

	// Subscribe before the call so a fast portal cannot answer before we
	// listen.
	signals := make(chan *dbus.Signal, 4)
	conn.Signal(signals)
	match := []dbus.MatchOption{
		dbus.WithMatchInterface("org.freedesktop.portal.Request"),
		dbus.WithMatchMember("Response"),
	}
	if err := conn.AddMatchSignal(match...); err != nil {
		return nil, fmt.Errorf("portal: subscribe: %w", err)
	}
	defer conn.RemoveMatchSignal(match...)

	var handle dbus.ObjectPath
	call := conn.Object(portalDest, portalPath).Call(screenshotCall, 0, "", portalScreenshotOptions(o))
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("portal: screenshot request: %w", err)
	}
	logging.For("capture").Debug("portal request", "handle", handle)

	timeout := time.NewTimer(portalTimeout(o))
	defer timeout.Stop()
	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return nil, errors.New("portal: connection closed before response")
			}
			if sig.Path == handle && sig.Name == requestResponse {
				return screenshotFromResponse(sig.Body)
			}
		case <-timeout.C:
			return nil, fmt.Errorf("portal: no response after %s", portalTimeout(o))
		}
	}
}

// screenshotFromResponse decodes the (code, results) body of a Response
// signal. Code 1 means the user cancelled; 2 means the request failed.
func screenshotFromResponse(body []any) (*image.RGBA, error) {
	if len(body) < 2 {
		return nil, errors.New("portal: malformed response")
	}
	if code, _ := body[0].(uint32); code != 0 {
		return nil, fmt.Errorf("portal: %w (response %d)", ErrCancelled, code)
	}
	results, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("portal: unexpected results %T", body[1])
	}
	raw, _ := results["uri"].Value().(string)
	if raw == "" {
		return nil, errors.New("portal: response has no uri")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("portal: unusable uri %q", raw)
	}
	return takeScreenshotFile(u.Path)
}

// takeScreenshotFile decodes the portal's temporary file and removes it.
func takeScreenshotFile(path string) (*image.RGBA, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.For("capture").Warn("remove portal screenshot", "path", path, "err", err)
		}
	}()
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("portal: %w", err)
	}
	return toRGBA(img), nil
}

func portalScreenshotOptions(o Options) map[string]dbus.Variant {
	cursor := "hidden"
	if o.IncludeCursor {
		cursor = "embedded"
	}
	return map[string]dbus.Variant{
		"handle_token": dbus.MakeVariant(portalHandleToken()),
		"interactive":  dbus.MakeVariant(o.Interactive),
		"modal":        dbus.MakeVariant(o.Interactive),
		"cursor_mode":  dbus.MakeVariant(cursor),
	}
}
