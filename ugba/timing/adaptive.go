package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter sleeps for most of the wait and spins for the last
// millisecond. Falling more than maxLag behind restarts the schedule.
type AdaptiveLimiter struct {
	frameTime time.Duration
	next      time.Time
	frames    int64
	start     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

const (
	spinThreshold = 2 * time.Millisecond
	maxLag        = 5 * time.Millisecond
)

func NewAdaptiveLimiter() *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		frameTime: FrameDuration(),
		now:       time.Now,
		sleep:     time.Sleep,
	}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	wait := a.next.Sub(now)

	switch {
	case wait >= spinThreshold:
		a.sleep(wait - time.Millisecond)
		fallthrough
	case wait > 0:
		for a.now().Before(a.next) {
		}
	case wait < -maxLag:
		slog.Debug("Frame pacing behind schedule", "lag", -wait)
		a.next = now
	}

	a.next = a.next.Add(a.frameTime)
	a.frames++

	if a.frames%60 == 0 {
		elapsed := a.now().Sub(a.start)
		if elapsed > 0 {
			slog.Debug("Frame pacing", "fps", float64(a.frames)/elapsed.Seconds(), "target", TargetFPS())
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.next = a.now()
	a.start = a.next
	a.frames = 0
}
