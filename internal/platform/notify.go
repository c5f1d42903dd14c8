// Package platform delivers desktop notifications through the host's
// notification service.
package platform

import "time"

// DefaultExpire is how long a notification stays up when Options.Expire is
// zero. Hosts that manage their own timeouts ignore it.
const DefaultExpire = 5 * time.Second

// Options describes how a single notification is displayed.
type Options struct {
	// IconPath is an image file shown with the notification where supported.
	IconPath string
	Expire   time.Duration
}

func (o Options) expire() time.Duration {
	if o.Expire <= 0 {
		return DefaultExpire
	}
	return o.Expire
}
