package framepace

import (
	"context"
	"time"
)

// Hz60Frame is the frame period of a 60Hz display.
const Hz60Frame time.Duration = time.Duration(int64(time.Second) / 60)

// FrameClock is a source of discrete frame boundary signals at a nominal
// cadence. NextTick blocks until the next boundary (or ctx is done) and
// returns ticks with strictly increasing Index and NominalTime. A missed
// external timing signal is simply not-yet-arrived, never an error.
type FrameClock interface {
	NextTick(ctx context.Context) (FrameTick, error)
}

// TickerClock is the real-deployment clock: it paces frame boundaries with a
// time.Ticker at a fixed frame period. The tick with Index i carries
// NominalTime (i+1)*frameTime, counted from clock creation.
type TickerClock struct {
	frameTime time.Duration
	ticker    *time.Ticker
	index     int
}

// NewTickerClock creates a started clock. frameTime must be positive.
func NewTickerClock(frameTime time.Duration) (*TickerClock, error) {
	if frameTime <= 0 {
		return nil, wrapPacingError(nil, TokenClock, "frameTime can't be lte 0")
	}
	return &TickerClock{
		frameTime: frameTime,
		ticker:    time.NewTicker(frameTime),
	}, nil
}

// NextTick waits for the next boundary. Only one goroutine may call it.
func (c *TickerClock) NextTick(ctx context.Context) (FrameTick, error) {
	select {
	case <-ctx.Done():
		return FrameTick{}, ctx.Err()
	case <-c.ticker.C:
		tick := FrameTick{
			Index:       c.index,
			NominalTime: time.Duration(c.index+1) * c.frameTime,
		}
		c.index++
		return tick, nil
	}
}

// Stop releases the underlying ticker. NextTick must not be called after.
func (c *TickerClock) Stop() {
	c.ticker.Stop()
}

// ManualClock is a deterministic clock for tests and replay: the controlling
// loop supplies each boundary explicitly and NextTick suspends until one is
// supplied.
type ManualClock struct {
	ch chan FrameTick
}

// NewManualClock creates a manual clock.
func NewManualClock() *ManualClock {
	return &ManualClock{ch: make(chan FrameTick)}
}

// Tick hands one boundary to the waiting driver. It blocks until the driver
// accepts it, which makes interleavings deterministic in tests.
func (c *ManualClock) Tick(t FrameTick) {
	c.ch <- t
}

// NextTick waits for a supplied boundary.
func (c *ManualClock) NextTick(ctx context.Context) (FrameTick, error) {
	select {
	case <-ctx.Done():
		return FrameTick{}, ctx.Err()
	case tick := <-c.ch:
		return tick, nil
	}
}
