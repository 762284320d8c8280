// Command pacedemo runs the pacing scheduler against a synthetic jittered
// input source at a real display cadence and exposes its metrics.
package main

import (
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/halldorn/framepace"
)

func main() {
	frameTime := flag.Duration("frame", framepace.Hz60Frame, "nominal frame period")
	baseLatency := flag.Duration("base-latency", 5*time.Millisecond, "fixed delivery latency of the synthetic input")
	runFor := flag.Duration("run", 30*time.Second, "how long to run before exiting")
	metricsAddr := flag.String("metrics", ":9091", "listen address for the metrics endpoint")
	smoothing := flag.Bool("smoothing", true, "spread bursty arrivals one per frame")
	debug := flag.Bool("debug", false, "log heartbeats at debug level")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	registry := prometheus.NewRegistry()
	observer := framepace.NewPrometheusObserver(registry)

	clock, err := framepace.NewTickerClock(*frameTime)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad frame period")
	}
	defer clock.Stop()

	runner, err := framepace.NewRunner(clock, framepace.Options{
		FrameTime:  *frameTime,
		ApplyEvent: func(payload interface{}) {},
		Observer:   observer,
		Smoothing:  *smoothing,
	}, framepace.RunnerOptions{Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("runner construction failed")
	}

	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			logger.Error().Err(err).Msg("metrics endpoint failed")
		}
	}()

	if err := runner.Start(); err != nil {
		logger.Fatal().Err(err).Msg("runner start failed")
	}

	// Synthetic input: one sample per frame period in the jitter-free
	// schedule, delivered with base latency plus jitter inside one frame.
	go func() {
		start := time.Now()
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		for i := 0; ; i++ {
			ideal := time.Duration(i) * *frameTime
			jitter := time.Duration(rng.Int63n(int64(*frameTime)))
			delivery := ideal + *baseLatency + jitter
			select {
			case <-runner.Done():
				return
			case <-time.After(time.Until(start.Add(delivery))):
			}
			runner.Deliver(i, delivery)
		}
	}()

	go func() {
		for sample := range runner.Heartbeat() {
			logger.Info().
				Int64("frames_drawn", sample.FramesDrawn).
				Int64("events_consumed", sample.EventsConsumed).
				Int("queue_depth", sample.QueueDepth).
				Dur("frame_spacing_mean", sample.FrameSpacingMean).
				Dur("event_wait_mean", sample.EventWaitMean).
				Msg("pacing sample")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigs:
	case <-time.After(*runFor):
	case <-runner.Done():
	}

	runner.Stop(nil)
	<-runner.Done()
	if err := runner.Err(); err != nil {
		logger.Error().Err(err).Msg("runner exited with error")
		os.Exit(1)
	}
}
