package framepace

// dispatchPolicy decides, at each frame tick, how the events drained for that
// tick are applied. run must invoke apply in arrival order and return the
// number of events applied for the tick.
type dispatchPolicy interface {
	run(due []Event, apply func(Event)) int
	// hasCarry reports whether the policy is holding an event back for the
	// next frame, meaning one more tick is needed even without new input.
	hasCarry() bool
}

// immediateDispatch applies every due event at the tick that drained it. An
// event is therefore applied at the first tick whose nominal time is at or
// after its arrival.
type immediateDispatch struct{}

func (immediateDispatch) run(due []Event, apply func(Event)) int {
	for _, e := range due {
		apply(e)
	}
	return len(due)
}

func (immediateDispatch) hasCarry() bool { return false }

// smoothDispatch spreads bursty arrivals across frames: when more than one
// event becomes due while a dispatch is already in flight, the most recent
// one is held back and applied at the start of the next frame window. With
// delivery jitter under one frame period this turns "miss half the frames"
// into "miss at most one frame", at the cost of delaying an event by at most
// one frame period.
type smoothDispatch struct {
	inFlight bool
	pending  *Event
	carry    *Event
}

func (d *smoothDispatch) run(due []Event, apply func(Event)) int {
	applied := 0

	// An event held at the previous boundary opens this frame window.
	if d.carry != nil {
		apply(*d.carry)
		applied++
		d.carry = nil
	}

	for i := range due {
		e := due[i]
		if d.inFlight {
			// Too fast: a dispatch is still unacknowledged by a frame.
			// Flush the previously stashed event and stash this one.
			if d.pending != nil {
				apply(*d.pending)
				applied++
			}
			d.pending = &e
		} else {
			apply(e)
			applied++
			d.inFlight = true
		}
	}

	// Frame boundary: release a stashed event into the next window, or
	// settle if nothing is waiting.
	if d.inFlight {
		if d.pending != nil {
			d.carry = d.pending
			d.pending = nil
		} else {
			d.inFlight = false
		}
	}
	return applied
}

func (d *smoothDispatch) hasCarry() bool { return d.carry != nil }
