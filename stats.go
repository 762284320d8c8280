package framepace

import (
	"math"
	"sync"
	"time"
)

const paceSampleCount = 100

type statWindow struct {
	samples  []time.Duration
	curIndex int
}

func newStatWindow(samples int) statWindow {
	return statWindow{
		samples:  make([]time.Duration, samples),
		curIndex: 0,
	}
}

func (w *statWindow) AddSample(sample time.Duration) {
	w.samples[w.curIndex] = sample
	w.curIndex = (w.curIndex + 1) % len(w.samples)
}

func (w *statWindow) Report() (mean, stdDev time.Duration) {
	sum := time.Duration(0)
	varNumerator := time.Duration(0)
	for _, s := range w.samples {
		sum += s
	}
	mean = sum / time.Duration(len(w.samples))
	for _, s := range w.samples {
		varNumerator += (s - mean) * (s - mean)
	}
	stdDev = time.Duration(int64(math.Sqrt(float64(varNumerator) / float64(len(w.samples)))))
	return
}

// paceProfile tracks frame cadence and event wait over sliding windows. It
// doubles as an Observer so the Runner can feed it from the scheduler's
// callbacks while the heartbeat goroutine reads it.
type paceProfile struct {
	mu sync.Mutex
	// frameWindow is the spacing between executed frames.
	frameWindow statWindow
	// waitWindow is how long consumed events sat queued.
	waitWindow statWindow
	lastFrame time.Time
	depth     int
}

func newPaceProfile(samples int) *paceProfile {
	return &paceProfile{
		frameWindow: newStatWindow(samples),
		waitWindow:  newStatWindow(samples),
		lastFrame:   time.Now(),
	}
}

func (p *paceProfile) EventQueued(depth int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.depth = depth
}

func (p *paceProfile) EventApplied(wait time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waitWindow.AddSample(wait)
}

func (p *paceProfile) FrameDrawn(tick FrameTick, applied, depth int) {
	now := time.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameWindow.AddSample(now.Sub(p.lastFrame))
	p.lastFrame = now
	p.depth = depth
}

// Sample snapshots the profile into a PacingSample. Counter fields are left
// for the caller to fill in from the scheduler.
func (p *paceProfile) Sample() PacingSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := PacingSample{QueueDepth: p.depth}
	s.FrameSpacingMean, s.FrameSpacingStdDev = p.frameWindow.Report()
	s.EventWaitMean, s.EventWaitStdDev = p.waitWindow.Report()
	return s
}
