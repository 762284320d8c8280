package framepace

import (
	"time"
)

// Generator gives the delivery time of the i-th simulated input event.
// Times are unitless: they only need to share a unit with the frame period.
type Generator func(i int) int64

// SimConfig describes a synthetic input trace to run against a Scheduler.
//
// The trace must decompose as
//
//	delivery(i) = j*FrameTime + BaseLatency + random
//
// with 0 <= BaseLatency, 0 <= random < FrameTime, where j is the frame index
// the event would land on with no latency at all. The jitter-free schedule
// must put at least one event in every frame window it spans.
type SimConfig struct {
	NumEvents   int
	FrameTime   int64
	BaseLatency int64
	Delivery    Generator
	// Smoothing selects the scheduler's dispatch policy.
	Smoothing bool
}

// SimResult is what a simulation run observed.
type SimResult struct {
	// ConsumedAtFrame has one entry per frame that applied at least one
	// event: the cumulative consumed count as of that frame.
	ConsumedAtFrame []int64
	// TicksExecuted counts every frame boundary fired, empty ones too.
	TicksExecuted int
	// EmptyFrames counts ticks that applied no events.
	EmptyFrames int
	// MaxEmptyStreak is the longest run of consecutive empty ticks.
	MaxEmptyStreak int
}

// FramesDrawn is the number of frames that consumed at least one event.
func (r SimResult) FramesDrawn() int {
	return len(r.ConsumedAtFrame)
}

// ValidateTrace checks that the configured trace satisfies the latency
// decomposition SimConfig documents. The pacing guarantees are only claimed
// under these assumptions, so simulations reject traces that break them
// rather than reporting meaningless results.
func ValidateTrace(cfg SimConfig) error {
	if cfg.FrameTime <= 0 {
		return wrapPacingError(nil, TokenScheduler, "FrameTime can't be lte 0")
	}
	if cfg.Delivery == nil {
		return wrapPacingError(nil, TokenScheduler, "a Delivery generator is required")
	}
	if cfg.BaseLatency < 0 {
		return wrapPacingError(nil, TokenScheduler, "BaseLatency can't be negative")
	}

	// continuousFrames is the number of leading frame windows known to hold
	// at least one event in the jitter-free schedule.
	continuousFrames := int64(0)
	for i := 0; i < cfg.NumEvents; i++ {
		d := cfg.Delivery(i)
		// j is the frame index of event i if there were no latency.
		j := (d - cfg.BaseLatency) / cfg.FrameTime
		if j == continuousFrames {
			continuousFrames++
		}
		random := d - j*cfg.FrameTime - cfg.BaseLatency
		if random < 0 || random >= cfg.FrameTime {
			return wrapPacingError(nil, TokenScheduler,
				"event %d has random latency %d outside [0, %d)", i, random, cfg.FrameTime)
		}
		// The jitter-free schedule may not skip a frame window.
		if j >= continuousFrames {
			return wrapPacingError(nil, TokenScheduler,
				"event %d would land on frame %d, skipping frame %d", i, j, continuousFrames)
		}
	}
	return nil
}

// Simulate drives a fresh Scheduler through the trace with a single
// deterministic loop: at each boundary t = j*FrameTime it delivers every
// event with delivery(i) <= t, then fires the tick. After the last delivery
// it keeps ticking until the scheduler holds nothing back, so an event held
// by the smoothing policy still lands.
func Simulate(cfg SimConfig) (SimResult, error) {
	if err := ValidateTrace(cfg); err != nil {
		return SimResult{}, err
	}

	var res SimResult
	consumed := int64(0)
	willDrawNewFrame := true
	streak := 0

	sched, err := NewScheduler(Options{
		FrameTime: time.Duration(cfg.FrameTime),
		ApplyEvent: func(payload interface{}) {
			consumed++
			if willDrawNewFrame {
				willDrawNewFrame = false
				res.ConsumedAtFrame = append(res.ConsumedAtFrame, consumed)
			} else {
				res.ConsumedAtFrame[len(res.ConsumedAtFrame)-1] = consumed
			}
		},
		OnFrameDrawn: func(tick FrameTick, applied int) {
			willDrawNewFrame = true
			if applied == 0 {
				streak++
				if streak > res.MaxEmptyStreak {
					res.MaxEmptyStreak = streak
				}
				res.EmptyFrames++
			} else {
				streak = 0
			}
		},
		Smoothing: cfg.Smoothing,
	})
	if err != nil {
		return SimResult{}, err
	}

	j := 0
	for i := 0; i < cfg.NumEvents; j++ {
		t := int64(j) * cfg.FrameTime
		for i < cfg.NumEvents && cfg.Delivery(i) <= t {
			sched.OnEventArrival(Event{
				ArrivalTime: time.Duration(cfg.Delivery(i)),
				Payload:     i,
			})
			i++
		}
		sched.OnFrameTick(FrameTick{Index: j, NominalTime: time.Duration(t)})
	}
	for sched.HasCarry() || sched.Pending() > 0 {
		sched.OnFrameTick(FrameTick{
			Index:       j,
			NominalTime: time.Duration(int64(j) * cfg.FrameTime),
		})
		j++
	}
	res.TicksExecuted = j

	return res, nil
}
