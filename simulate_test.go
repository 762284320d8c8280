package framepace_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halldorn/framepace"
)

// Delivery times measured on a real device, in frame-period units (~46
// samples over ~46 frame periods, with jitter occasionally exceeding one
// period between consecutive samples).
var measuredDeliveryTimes = []float64{
	0.15,
	1.0773046874999999,
	2.1738720703124996,
	3.0579052734374996,
	4.0890087890624995,
	5.0952685546875,
	6.1251708984375,
	7.1253076171875,
	8.125927734374999,
	9.37248046875,
	10.133950195312499,
	11.161201171875,
	12.226992187499999,
	13.1443798828125,
	14.440327148437499,
	15.091684570312498,
	16.138681640625,
	17.126469726562497,
	18.1592431640625,
	19.371372070312496,
	20.033774414062496,
	21.021782226562497,
	22.070053710937497,
	23.325541992187496,
	24.119648437499997,
	25.084262695312496,
	26.077866210937497,
	27.036547851562496,
	28.035073242187497,
	29.081411132812498,
	30.066064453124998,
	31.089360351562497,
	32.086142578125,
	33.4618798828125,
	34.14697265624999,
	35.0513525390625,
	36.136025390624994,
	37.1618408203125,
	38.144472656249995,
	39.201123046875,
	40.4339501953125,
	41.1552099609375,
	42.102128906249995,
	43.0426318359375,
	44.070131835937495,
	45.08862304687499,
	46.091469726562494,
}

func TestTraceValidation(t *testing.T) {
	good := framepace.SimConfig{
		NumEvents:   10,
		FrameTime:   10,
		BaseLatency: 3,
		Delivery:    func(i int) int64 { return int64(i)*10 + 3 + int64(i%7) },
	}
	assert.Nil(t, framepace.ValidateTrace(good))

	tooJittery := good
	tooJittery.Delivery = func(i int) int64 { return int64(i)*10 + 3 + 10 }
	assert.NotNil(t, framepace.ValidateTrace(tooJittery))

	skipsAFrame := good
	skipsAFrame.Delivery = func(i int) int64 { return int64(i)*20 + 3 }
	assert.NotNil(t, framepace.ValidateTrace(skipsAFrame))

	negativeBase := good
	negativeBase.BaseLatency = -1
	assert.NotNil(t, framepace.ValidateTrace(negativeBase))

	noGenerator := good
	noGenerator.Delivery = nil
	assert.NotNil(t, framepace.ValidateTrace(noGenerator))
}

// Alternating early/late delivery within one frame period. With smoothing,
// at most one frame of the run goes without input; without it, every late/
// early pair would merge and half the frames would starve.
func TestMissAtMostOneFrameForIrregularInput(t *testing.T) {
	const frameTime = 10
	const baseLatency = 5
	const n = 40

	res, err := framepace.Simulate(framepace.SimConfig{
		NumEvents:   n,
		FrameTime:   frameTime,
		BaseLatency: baseLatency,
		Delivery: func(i int) int64 {
			extra := int64(1) // 0.1 * frameTime
			if i%2 != 0 {
				extra = 9 // 0.9 * frameTime
			}
			return int64(i)*frameTime + baseLatency + extra
		},
		Smoothing: true,
	})
	require.Nil(t, err)
	assert.GreaterOrEqual(t, res.FramesDrawn(), n-1)
}

// Input delivered at twice the frame rate: every frame consumes two events,
// lagging the ideal cumulative count by at most one event, and the run draws
// exactly one extra frame for the final held event.
func TestDelayAtMostOneEventForFasterThanFrameInput(t *testing.T) {
	const frameTime = 10
	const baseLatency = 2
	const n = 40

	res, err := framepace.Simulate(framepace.SimConfig{
		NumEvents:   n,
		FrameTime:   frameTime,
		BaseLatency: baseLatency,
		Delivery: func(i int) int64 {
			return int64(i)*frameTime/2 + baseLatency
		},
		Smoothing: true,
	})
	require.Nil(t, err)

	assert.Equal(t, n/2+1, res.FramesDrawn())
	for i := 0; i < n/2; i++ {
		assert.GreaterOrEqual(t, res.ConsumedAtFrame[i], int64(2*i-1), "frame %d", i)
	}
}

// The measured device trace, swept across base latencies from 0 to 0.9 of a
// frame period: the run must miss at most one frame at every sweep point.
func TestMeasuredDeviceTrace(t *testing.T) {
	const frameTime = 10000
	n := len(measuredDeliveryTimes)

	for tenths := 0; tenths < 10; tenths++ {
		baseLatency := int64(tenths) * frameTime / 10
		res, err := framepace.Simulate(framepace.SimConfig{
			NumEvents:   n,
			FrameTime:   frameTime,
			BaseLatency: baseLatency,
			Delivery: func(i int) int64 {
				return baseLatency + int64(measuredDeliveryTimes[i]*frameTime)
			},
			Smoothing: true,
		})
		require.Nil(t, err, "base latency %d", baseLatency)
		assert.GreaterOrEqual(t, res.FramesDrawn(), n-1, "base latency %d", baseLatency)
	}
}

// Pinned end-to-end run: one lone event, then a two-event burst. The burst
// is split across two frames and the held event drives one trailing tick.
func TestExactPacingTrace(t *testing.T) {
	res, err := framepace.Simulate(framepace.SimConfig{
		NumEvents:   3,
		FrameTime:   10,
		BaseLatency: 5,
		Delivery:    func(i int) int64 { return []int64{6, 24, 26}[i] },
		Smoothing:   true,
	})
	require.Nil(t, err)

	want := framepace.SimResult{
		ConsumedAtFrame: []int64{1, 2, 3},
		TicksExecuted:   5,
		EmptyFrames:     2,
		MaxEmptyStreak:  1,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("simulation result mismatch (-want +got):\n%s", diff)
	}
}

// Bounded jitter with one event per frame window must not build a backlog:
// empty frames never cluster, and everything delivered is consumed.
func TestNoBacklogUnderBoundedJitter(t *testing.T) {
	const frameTime = 10
	const baseLatency = 3
	const n = 200

	jitter := make([]int64, n)
	for i := range jitter {
		jitter[i] = int64(i*7919) % frameTime
	}

	for _, smoothing := range []bool{false, true} {
		res, err := framepace.Simulate(framepace.SimConfig{
			NumEvents:   n,
			FrameTime:   frameTime,
			BaseLatency: baseLatency,
			Delivery: func(i int) int64 {
				return int64(i)*frameTime + baseLatency + jitter[i]
			},
			Smoothing: smoothing,
		})
		require.Nil(t, err, "smoothing=%v", smoothing)

		assert.LessOrEqual(t, res.MaxEmptyStreak, 2, "smoothing=%v", smoothing)
		require.NotEmpty(t, res.ConsumedAtFrame)
		assert.Equal(t, int64(n), res.ConsumedAtFrame[len(res.ConsumedAtFrame)-1],
			"every delivered event must be consumed (smoothing=%v)", smoothing)
	}
}
