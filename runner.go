package framepace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type runnerState int

const (
	runnerInit runnerState = iota
	runnerRun  runnerState = iota
	runnerStop runnerState = iota
)

// RunnerOptions configures the concurrent deployment loop.
type RunnerOptions struct {
	// Logger receives lifecycle and heartbeat logs. Defaults to a no-op.
	Logger *zerolog.Logger
	// HeartbeatEvery is the pacing sample publish interval. Defaults to
	// one second.
	HeartbeatEvery time.Duration
}

// Runner wires a Scheduler to a FrameClock and runs the frame-driver side of
// the pacing loop. Producers call Deliver from any goroutine; the driver
// goroutine waits for coalesced frame requests, blocks in the clock for the
// next boundary, and executes the tick. A second goroutine publishes pacing
// samples on the heartbeat channel.
type Runner struct {
	clock   FrameClock
	sched   *Scheduler
	logger  zerolog.Logger
	pulseAt time.Duration
	profile *paceProfile

	mu       sync.Mutex
	curState runnerState
	err      error
	paused   bool
	cancel   context.CancelFunc

	done      chan struct{}
	heartbeat chan PacingSample

	// wake carries coalesced frame requests from producers to the driver.
	// Capacity one: the scheduler's Idle/FrameRequested flag already
	// guarantees at most a single outstanding request.
	wake chan struct{}
}

// NewRunner creates a Runner and its Scheduler. The scheduler options are
// taken as for NewScheduler; RequestFrame and Observer are chained, not
// replaced, so callers can still hook both.
func NewRunner(clock FrameClock, opts Options, ropts RunnerOptions) (*Runner, error) {
	if clock == nil {
		return nil, wrapPacingError(nil, TokenRunner, "a FrameClock is required")
	}

	r := &Runner{
		clock:     clock,
		logger:    zerolog.Nop(),
		pulseAt:   time.Second,
		profile:   newPaceProfile(paceSampleCount),
		done:      make(chan struct{}),
		heartbeat: make(chan PacingSample),
		wake:      make(chan struct{}, 1),
	}
	if ropts.Logger != nil {
		r.logger = *ropts.Logger
	}
	if ropts.HeartbeatEvery > 0 {
		r.pulseAt = ropts.HeartbeatEvery
	}

	userRequest := opts.RequestFrame
	opts.RequestFrame = func() {
		select {
		case r.wake <- struct{}{}:
		default:
		}
		if userRequest != nil {
			userRequest()
		}
	}
	if opts.Observer != nil {
		opts.Observer = fanoutObserver{r.profile, opts.Observer}
	} else {
		opts.Observer = r.profile
	}

	sched, err := NewScheduler(opts)
	if err != nil {
		return nil, err
	}
	r.sched = sched
	return r, nil
}

// Scheduler returns the owned pacing scheduler.
func (r *Runner) Scheduler() *Scheduler {
	return r.sched
}

// Deliver buffers one input event, requesting a frame if none is pending.
// Safe from any goroutine; never blocks. Events delivered after Stop are
// dropped.
func (r *Runner) Deliver(payload interface{}, arrival time.Duration) {
	r.mu.Lock()
	stopped := r.curState == runnerStop
	r.mu.Unlock()
	if stopped {
		return
	}
	r.sched.OnEventArrival(Event{ArrivalTime: arrival, Payload: payload})
}

// Heartbeat returns the channel on which pacing samples are published at the
// configured interval. Samples are dropped if no one is listening.
func (r *Runner) Heartbeat() <-chan PacingSample {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heartbeat
}

// Done returns a chan that closes when the runner has stopped.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stop halts the runner and sets Err().
func (r *Runner) Stop(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.curState == runnerStop {
		return
	}
	r.curState = runnerStop
	r.err = err
	close(r.done)
	if r.cancel != nil {
		r.cancel()
	}
	r.logger.Info().Err(err).Msg("pacing runner stopped")
}

// Err returns the reason the runner stopped, if it stopped with an error.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Pause makes the driver ignore frame requests. Events keep queuing and the
// request stays latched in the scheduler, so Resume picks up where delivery
// left off.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume re-enables frame driving and re-arms the wake if a request latched
// while paused.
func (r *Runner) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
	if r.sched.FrameRequested() {
		select {
		case r.wake <- struct{}{}:
		default:
		}
	}
}

func (r *Runner) isPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Start launches the frame driver and heartbeat goroutines. This call does
// not block. Restarting a stopped runner silently fails, as does starting
// twice.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.curState != runnerInit {
		return wrapPacingError(nil, TokenRunner, "Runner is already running or is done")
	}
	r.curState = runnerRun

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return r.driveFrames(ctx) })
	group.Go(func() error { return r.pulse(ctx) })
	go func() {
		err := group.Wait()
		r.Stop(err)
		close(r.heartbeat)
	}()

	r.logger.Info().Dur("frame_time", r.sched.FrameTime()).Msg("pacing runner started")
	return nil
}

// driveFrames is the frame-driver actor: it sleeps until a frame has been
// requested, waits out the next boundary in the clock, and executes the tick.
func (r *Runner) driveFrames(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.wake:
		}
		if r.isPaused() {
			continue
		}
		tick, err := r.clock.NextTick(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return wrapPacingError(err, TokenClock, "frame clock failed")
		}
		r.sched.OnFrameTick(tick)
	}
}

func (r *Runner) pulse(ctx context.Context) error {
	heartTick := time.NewTicker(r.pulseAt)
	defer heartTick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartTick.C:
			sample := r.profile.Sample()
			sample.FramesDrawn = r.sched.FramesDrawn()
			sample.EventsConsumed = r.sched.EventsConsumed()
			select {
			case r.heartbeat <- sample:
			default: // Throw it away if no one is listening.
			}
			r.logger.Debug().
				Int64("frames_drawn", sample.FramesDrawn).
				Int64("events_consumed", sample.EventsConsumed).
				Int("queue_depth", sample.QueueDepth).
				Dur("frame_spacing_mean", sample.FrameSpacingMean).
				Dur("event_wait_mean", sample.EventWaitMean).
				Msg("pacing heartbeat")
		}
	}
}
