//go:build !linux && !darwin && !windows

package platform

import "github.com/example/shotmark/internal/logging"

// Notify logs the notification; there is no notification service here.
func Notify(title, body string, _ Options) error {
	logging.For("notify").Debug("notification dropped", "title", title, "body", body)
	return nil
}
