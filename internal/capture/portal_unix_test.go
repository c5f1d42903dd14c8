//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"errors"
	"image"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/godbus/dbus/v5"
)

func TestPortalScreenshotOptions(t *testing.T) {
	prevToken := portalHandleToken
	portalHandleToken = func() string { return "test-token" }
	t.Cleanup(func() { portalHandleToken = prevToken })

	tests := []struct {
		name       string
		opts       Options
		wantCursor string
	}{
		{name: "defaults", opts: Options{}, wantCursor: "hidden"},
		{name: "interactive with cursor", opts: Options{Interactive: true, IncludeCursor: true}, wantCursor: "embedded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			values := portalScreenshotOptions(tc.opts)

			if got := boolVariant(t, values, "interactive"); got != tc.opts.Interactive {
				t.Fatalf("interactive = %v, want %v", got, tc.opts.Interactive)
			}
			if got := boolVariant(t, values, "modal"); got != tc.opts.Interactive {
				t.Fatalf("modal = %v, want %v", got, tc.opts.Interactive)
			}
			if got := stringVariant(t, values, "cursor_mode"); got != tc.wantCursor {
				t.Fatalf("cursor_mode = %q, want %q", got, tc.wantCursor)
			}
			if got := stringVariant(t, values, "handle_token"); got != "test-token" {
				t.Fatalf("handle_token = %q, want %q", got, "test-token")
			}
			if len(values) != 4 {
				t.Fatalf("expected 4 options, got %d", len(values))
			}
		})
	}
}

func TestScreenshotFromResponse(t *testing.T) {
	if _, err := screenshotFromResponse([]any{uint32(1), map[string]dbus.Variant{}}); !errors.Is(err, ErrCancelled) {
		t.Fatalf("cancelled response = %v", err)
	}
	if _, err := screenshotFromResponse([]any{uint32(0), map[string]dbus.Variant{}}); err == nil {
		t.Fatal("response without uri accepted")
	}
	if _, err := screenshotFromResponse([]any{uint32(0)}); err == nil {
		t.Fatal("short response accepted")
	}
	remote := map[string]dbus.Variant{"uri": dbus.MakeVariant("https://example.com/a.png")}
	if _, err := screenshotFromResponse([]any{uint32(0), remote}); err == nil {
		t.Fatal("non-file uri accepted")
	}
}

func TestScreenshotFromResponseReadsAndRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Screenshot from today.png")
	if err := imaging.Save(image.NewRGBA(image.Rect(0, 0, 7, 5)), path); err != nil {
		t.Fatal(err)
	}
	uri := (&url.URL{Scheme: "file", Path: path}).String()
	img, err := screenshotFromResponse([]any{uint32(0), map[string]dbus.Variant{"uri": dbus.MakeVariant(uri)}})
	if err != nil {
		t.Fatalf("screenshotFromResponse: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 7, 5) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("portal file left behind: %v", err)
	}
}

func boolVariant(t *testing.T, values map[string]dbus.Variant, key string) bool {
	t.Helper()
	variant, ok := values[key]
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	v, ok := variant.Value().(bool)
	if !ok {
		t.Fatalf("key %q value is %T, want bool", key, variant.Value())
	}
	return v
}

func stringVariant(t *testing.T, values map[string]dbus.Variant, key string) string {
	t.Helper()
	variant, ok := values[key]
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	v, ok := variant.Value().(string)
	if !ok {
		t.Fatalf("key %q value is %T, want string", key, variant.Value())
	}
	return v
}
