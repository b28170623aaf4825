package pool

import (
	"fmt"
	"time"

	"github.com/entrhq/pagelens/pkg/driver"
)

// UnsupportedBrowserError is returned when a configuration names a browser
// kind outside the supported set.
type UnsupportedBrowserError struct {
	Kind driver.Kind
}

func (e *UnsupportedBrowserError) Error() string {
	return fmt.Sprintf("unsupported browser kind %q (supported: chrome, firefox, edge)", e.Kind)
}

// CapacityExceededError is returned when the pool is at its ceiling and no
// idle instance could be reclaimed.
type CapacityExceededError struct {
	Max int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("browser pool at capacity (%d instances)", e.Max)
}

// AvailabilityTimeoutError is returned when GetBrowser waited its full
// deadline without any instance becoming available.
type AvailabilityTimeoutError struct {
	Waited time.Duration
}

func (e *AvailabilityTimeoutError) Error() string {
	return fmt.Sprintf("no browser instance became available within %s", e.Waited)
}
