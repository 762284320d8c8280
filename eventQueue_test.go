package framepace_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halldorn/framepace"
)

func TestDrainReturnsArrivalPrefix(t *testing.T) {
	q := framepace.NewEventQueue()
	for _, at := range []int64{1, 2, 3, 5} {
		q.Push(framepace.Event{ArrivalTime: time.Duration(at), Payload: at})
	}

	drained := q.DrainUpTo(3)
	require.Len(t, drained, 3)
	assert.Equal(t, int64(1), drained[0].Payload)
	assert.Equal(t, int64(2), drained[1].Payload)
	assert.Equal(t, int64(3), drained[2].Payload)
	assert.Equal(t, 1, q.Len())

	rest := q.DrainUpTo(10)
	require.Len(t, rest, 1)
	assert.Equal(t, int64(5), rest[0].Payload)
	assert.Equal(t, 0, q.Len())
}

func TestDrainBoundaryIsInclusive(t *testing.T) {
	q := framepace.NewEventQueue()
	q.Push(framepace.Event{ArrivalTime: 10})

	assert.Empty(t, q.DrainUpTo(9))
	assert.Len(t, q.DrainUpTo(10), 1)
}

func TestDrainEmptyQueue(t *testing.T) {
	q := framepace.NewEventQueue()
	assert.Empty(t, q.DrainUpTo(100))
	assert.Equal(t, 0, q.Len())
}

func TestDrainNeverReturnsAnEventTwice(t *testing.T) {
	q := framepace.NewEventQueue()
	for i := 0; i < 50; i++ {
		q.Push(framepace.Event{ArrivalTime: time.Duration(i), Payload: i})
	}

	seen := make(map[interface{}]bool)
	for bound := time.Duration(0); bound < 60; bound += 7 {
		for _, e := range q.DrainUpTo(bound) {
			assert.False(t, seen[e.Payload], "event %v drained twice", e.Payload)
			seen[e.Payload] = true
		}
	}
	assert.Len(t, seen, 50)
}

func TestConcurrentPushAndDrain(t *testing.T) {
	const n = 1000
	q := framepace.NewEventQueue()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push(framepace.Event{ArrivalTime: time.Duration(i), Payload: i})
		}
	}()

	collected := make([]framepace.Event, 0, n)
	for len(collected) < n {
		collected = append(collected, q.DrainUpTo(n)...)
	}
	wg.Wait()

	require.Len(t, collected, n)
	for i, e := range collected {
		assert.Equal(t, i, e.Payload, "arrival order broken at %d", i)
	}
	assert.Equal(t, 0, q.Len())
}
