package framepace

import (
	"time"
)

// Event is a single input sample that has arrived but not yet been folded
// into a frame. ArrivalTime is expressed on the same timeline as the frame
// clock's nominal times; Payload is opaque to the pacing core.
type Event struct {
	ArrivalTime time.Duration
	Payload     interface{}
}

// FrameTick is one frame boundary. Index starts at zero and increases by one
// per boundary; NominalTime increases by exactly one frame period per tick.
type FrameTick struct {
	Index       int
	NominalTime time.Duration
}
