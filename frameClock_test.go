package framepace_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halldorn/framepace"
)

func TestTickerClockValidation(t *testing.T) {
	clock, err := framepace.NewTickerClock(0)
	assert.NotNil(t, err)
	assert.Nil(t, clock)
}

func TestTickerClockTicksAreMonotonic(t *testing.T) {
	clock, err := framepace.NewTickerClock(2 * time.Millisecond)
	require.Nil(t, err)
	defer clock.Stop()

	ctx := context.Background()
	var last framepace.FrameTick
	for i := 0; i < 3; i++ {
		tick, err := clock.NextTick(ctx)
		require.Nil(t, err)
		assert.Equal(t, i, tick.Index)
		assert.Equal(t, time.Duration(i+1)*2*time.Millisecond, tick.NominalTime)
		if i > 0 {
			assert.Greater(t, tick.NominalTime, last.NominalTime)
		}
		last = tick
	}
}

func TestTickerClockHonorsContext(t *testing.T) {
	clock, err := framepace.NewTickerClock(time.Hour)
	require.Nil(t, err)
	defer clock.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = clock.NextTick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManualClockReplay(t *testing.T) {
	clock := framepace.NewManualClock()
	ticks := []framepace.FrameTick{
		{Index: 0, NominalTime: 0},
		{Index: 1, NominalTime: 10},
		{Index: 2, NominalTime: 20},
	}
	go func() {
		for _, tick := range ticks {
			clock.Tick(tick)
		}
	}()

	ctx := context.Background()
	for _, want := range ticks {
		got, err := clock.NextTick(ctx)
		require.Nil(t, err)
		assert.Equal(t, want, got)
	}
}

func TestManualClockHonorsContext(t *testing.T) {
	clock := framepace.NewManualClock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := clock.NextTick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
