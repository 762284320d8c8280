package framepace

import (
	"time"
)

// PacingSample is a point-in-time measure of scheduler health, published on
// the Runner heartbeat channel.
type PacingSample struct {
	FramesDrawn    int64
	EventsConsumed int64
	QueueDepth     int
	// FrameSpacing is the observed interval between executed frames.
	FrameSpacingMean   time.Duration
	FrameSpacingStdDev time.Duration
	// EventWait is how long consumed events sat queued, measured against
	// the nominal time of the frame that consumed them.
	EventWaitMean   time.Duration
	EventWaitStdDev time.Duration
}
