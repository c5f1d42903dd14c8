//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"fmt"
	"image"
)

func listMonitors() ([]MonitorInfo, error) {
	return nil, fmt.Errorf("list monitors: %w", ErrUnsupported)
}

func portalScreenshot(Options) (*image.RGBA, error) {
	return nil, fmt.Errorf("portal screenshot: %w", ErrUnsupported)
}
