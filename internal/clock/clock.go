// Package clock provides an injectable time source so components that sign
// or validate time-bounded credentials never read the raw system clock, and
// machines with clock drift still issue valid tokens.
package clock

import (
	"fmt"
	"net/http"
	"time"
)

// Clock yields the current time for anything timestamp-dependent.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local system time directly.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// OffsetClock applies a fixed drift correction to the system time. The
// offset is resolved once at process startup; the system clock itself is
// never mutated.
type OffsetClock struct {
	offset time.Duration
}

// NewOffsetClock creates a clock shifted by offset.
func NewOffsetClock(offset time.Duration) *OffsetClock {
	return &OffsetClock{offset: offset}
}

// Now implements Clock.
func (c *OffsetClock) Now() time.Time {
	return time.Now().Add(c.offset)
}

// Offset returns the drift correction being applied.
func (c *OffsetClock) Offset() time.Duration {
	return c.offset
}

// driftThreshold is the smallest drift worth correcting. Below this the
// system clock is trusted as-is.
const driftThreshold = 30 * time.Second

// Detect measures local clock drift against a trusted HTTP time source by
// reading the Date header of a HEAD response. It returns a SystemClock when
// drift is negligible or the probe fails, and an OffsetClock otherwise.
func Detect(url string, timeout time.Duration) (Clock, error) {
	remote, err := fetchRemoteTime(url, timeout)
	if err != nil {
		return SystemClock{}, fmt.Errorf("time source unreachable: %w", err)
	}

	drift := remote.Sub(time.Now())
	if drift < driftThreshold && drift > -driftThreshold {
		return SystemClock{}, nil
	}

	return NewOffsetClock(drift), nil
}

func fetchRemoteTime(url string, timeout time.Duration) (time.Time, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Head(url)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	dateHeader := resp.Header.Get("Date")
	if dateHeader == "" {
		return time.Time{}, fmt.Errorf("no Date header in response")
	}

	return http.ParseTime(dateHeader)
}
