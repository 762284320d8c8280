package framepace

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives pacing measurements as the scheduler makes them. All
// methods are called from the arrival or frame-driver goroutine and must not
// block.
type Observer interface {
	// EventQueued reports the queue depth after an arrival.
	EventQueued(depth int)
	// EventApplied reports how long a consumed event sat queued, measured
	// against the nominal time of the frame that consumed it.
	EventApplied(wait time.Duration)
	// FrameDrawn reports an executed frame tick, its applied count, and
	// the queue depth left behind.
	FrameDrawn(tick FrameTick, applied, depth int)
}

type nopObserver struct{}

func (nopObserver) EventQueued(int)                {}
func (nopObserver) EventApplied(time.Duration)     {}
func (nopObserver) FrameDrawn(FrameTick, int, int) {}

// fanoutObserver forwards measurements to several observers.
type fanoutObserver []Observer

func (f fanoutObserver) EventQueued(depth int) {
	for _, o := range f {
		o.EventQueued(depth)
	}
}

func (f fanoutObserver) EventApplied(wait time.Duration) {
	for _, o := range f {
		o.EventApplied(wait)
	}
}

func (f fanoutObserver) FrameDrawn(tick FrameTick, applied, depth int) {
	for _, o := range f {
		o.FrameDrawn(tick, applied, depth)
	}
}

// PrometheusObserver exports pacing measurements as Prometheus metrics.
type PrometheusObserver struct {
	eventsQueued   prometheus.Counter
	eventsApplied  prometheus.Counter
	framesDrawn    prometheus.Counter
	emptyFrames    prometheus.Counter
	queueDepth     prometheus.Gauge
	eventWait      prometheus.Histogram
}

// NewPrometheusObserver registers the pacing metrics on reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		eventsQueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "framepace_events_queued_total",
			Help: "Input events buffered for a future frame.",
		}),
		eventsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "framepace_events_applied_total",
			Help: "Input events folded into a frame.",
		}),
		framesDrawn: factory.NewCounter(prometheus.CounterOpts{
			Name: "framepace_frames_drawn_total",
			Help: "Executed frame ticks.",
		}),
		emptyFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "framepace_empty_frames_total",
			Help: "Executed frame ticks that applied no events.",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "framepace_queue_depth",
			Help: "Events queued but not yet consumed.",
		}),
		eventWait: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "framepace_event_wait_seconds",
			Help:    "Time consumed events sat queued, by nominal frame time.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

func (p *PrometheusObserver) EventQueued(depth int) {
	p.eventsQueued.Inc()
	p.queueDepth.Set(float64(depth))
}

func (p *PrometheusObserver) EventApplied(wait time.Duration) {
	p.eventsApplied.Inc()
	p.eventWait.Observe(wait.Seconds())
}

func (p *PrometheusObserver) FrameDrawn(tick FrameTick, applied, depth int) {
	p.framesDrawn.Inc()
	if applied == 0 {
		p.emptyFrames.Inc()
	}
	p.queueDepth.Set(float64(depth))
}
