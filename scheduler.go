// Package framepace implements an input-event to frame pacing scheduler: it
// buffers asynchronously arriving input events, folds them into frames at a
// fixed display cadence, and bounds both event staleness and frame
// scheduling slack under jittery delivery.
package framepace

import (
	"sync/atomic"
	"time"
)

// Options configures a Scheduler.
type Options struct {
	// FrameTime is the nominal frame period. Required, positive.
	FrameTime time.Duration

	// ApplyEvent is invoked once per consumed event, in arrival order,
	// against the external application state. Required.
	ApplyEvent func(payload interface{})

	// OnFrameDrawn is invoked once per executed frame tick with the number
	// of events applied in that frame, zero included. Optional.
	OnFrameDrawn func(tick FrameTick, applied int)

	// RequestFrame is invoked exactly once per Idle -> FrameRequested
	// transition, letting the environment arm its vsync-equivalent signal.
	// Repeated arrivals while a frame is already requested are coalesced
	// and do not re-invoke it. Optional.
	RequestFrame func()

	// Observer receives pacing measurements. Optional.
	Observer Observer

	// Smoothing selects the dispatch policy that spreads bursty arrivals
	// one per frame instead of applying every due event at its tick. See
	// smoothDispatch.
	Smoothing bool
}

// Scheduler is the pacing policy engine. Event arrivals append to the queue
// and coalesce into a single frame request; each frame tick drains the queue
// up to the tick's nominal time and applies events through the configured
// dispatch policy. Arrivals and ticks may come from different goroutines;
// neither ever blocks.
type Scheduler struct {
	opts  Options
	queue *EventQueue
	disp  dispatchPolicy
	obs   Observer

	// frameRequested is the Idle/FrameRequested coalescing flag. The
	// transition into FrameRequested is a compare-and-set so concurrent
	// arrivals request at most one frame.
	frameRequested atomic.Bool

	eventsConsumed       atomic.Int64
	framesDrawn          atomic.Int64
	lastFrameHadNewEvent atomic.Bool
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts Options) (*Scheduler, error) {
	if opts.FrameTime <= 0 {
		return nil, wrapPacingError(nil, TokenScheduler, "FrameTime can't be lte 0")
	}
	if opts.ApplyEvent == nil {
		return nil, wrapPacingError(nil, TokenScheduler, "ApplyEvent is required")
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	var disp dispatchPolicy = immediateDispatch{}
	if opts.Smoothing {
		disp = &smoothDispatch{}
	}
	return &Scheduler{
		opts:  opts,
		queue: NewEventQueue(),
		disp:  disp,
		obs:   opts.Observer,
	}, nil
}

// OnEventArrival buffers one input event and requests a redraw if none is
// pending. It never blocks and never forces an immediate frame.
func (s *Scheduler) OnEventArrival(e Event) {
	s.queue.Push(e)
	s.obs.EventQueued(s.queue.Len())
	s.requestFrame()
}

// OnFrameTick executes one frame boundary: it drains every event with
// ArrivalTime <= tick.NominalTime (boundary-equal events included), applies
// them per the dispatch policy, and reports the frame even when it applied
// nothing. A scheduled frame always executes once reached; that is what
// keeps the worst-case deferral at one frame period instead of letting
// frames be skipped.
func (s *Scheduler) OnFrameTick(tick FrameTick) {
	// The requested frame is now executing; arrivals from here on need a
	// fresh request.
	s.frameRequested.Store(false)

	due := s.queue.DrainUpTo(tick.NominalTime)
	applied := s.disp.run(due, func(e Event) {
		s.obs.EventApplied(tick.NominalTime - e.ArrivalTime)
		s.opts.ApplyEvent(e.Payload)
	})

	s.eventsConsumed.Add(int64(applied))
	s.framesDrawn.Add(1)
	s.lastFrameHadNewEvent.Store(applied > 0)
	s.obs.FrameDrawn(tick, applied, s.queue.Len())
	if s.opts.OnFrameDrawn != nil {
		s.opts.OnFrameDrawn(tick, applied)
	}

	// A held-back event needs one more frame even if no new input arrives.
	if s.disp.hasCarry() {
		s.requestFrame()
	}
}

func (s *Scheduler) requestFrame() {
	if s.frameRequested.CompareAndSwap(false, true) {
		if s.opts.RequestFrame != nil {
			s.opts.RequestFrame()
		}
	}
}

// FrameRequested reports whether a frame request is latched and not yet
// serviced by a tick.
func (s *Scheduler) FrameRequested() bool {
	return s.frameRequested.Load()
}

// EventsConsumed returns the total number of events applied so far.
func (s *Scheduler) EventsConsumed() int64 {
	return s.eventsConsumed.Load()
}

// FramesDrawn returns the total number of executed frame ticks.
func (s *Scheduler) FramesDrawn() int64 {
	return s.framesDrawn.Load()
}

// Pending returns the number of events queued but not yet consumed.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// LastFrameHadNewEvent reports whether the most recent frame applied at
// least one event.
func (s *Scheduler) LastFrameHadNewEvent() bool {
	return s.lastFrameHadNewEvent.Load()
}

// HasCarry reports whether the dispatch policy is holding an event for the
// next frame. Always false without smoothing. Call it from the frame-driver
// context: policy state is not synchronized with arrivals.
func (s *Scheduler) HasCarry() bool {
	return s.disp.hasCarry()
}

// FrameTime returns the configured nominal frame period.
func (s *Scheduler) FrameTime() time.Duration {
	return s.opts.FrameTime
}
