// Package timing paces frames to the rate of the real console.
package timing

import (
	"time"

	"github.com/valerio/go-ugba/ugba/addr"
)

// Limiter controls the frame rate of the host loop.
type Limiter interface {
	// WaitForNextFrame blocks until the next frame is due. It returns
	// immediately when the loop is behind schedule.
	WaitForNextFrame()

	// Reset drops the accumulated schedule, used after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that never waits, for headless runs.
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Reset()            {}

// CyclesPerFrame is the number of CPU cycles in one frame (228 lines).
const CyclesPerFrame = addr.CyclesPerFrame

// TargetFPS is the refresh rate of the LCD, about 59.73 Hz.
func TargetFPS() float64 {
	return float64(addr.ClockHz) / float64(CyclesPerFrame)
}

// FrameDuration returns the duration of one frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}

// New returns the limiter named by kind: "adaptive", "ticker" or "none".
func New(kind string) (Limiter, bool) {
	switch kind {
	case "adaptive", "":
		return NewAdaptiveLimiter(), true
	case "ticker":
		return NewTickerLimiter(), true
	case "none":
		return NewNoOpLimiter(), true
	}
	return nil, false
}
