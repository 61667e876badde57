package timing

import "time"

// TickerLimiter waits on a time.Ticker. Less precise than AdaptiveLimiter
// but it never spins.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{ticker: time.NewTicker(FrameDuration())}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the ticker.
func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
