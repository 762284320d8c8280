package framepace

import (
	"sync"
	"time"
)

// EventQueue is an ordered buffer of arrived-but-unconsumed events. Push may
// be called from a producer goroutine while the frame driver drains, so all
// access is serialized. Arrival times are non-decreasing in push order for a
// logical input stream; the queue relies on that rather than re-sorting.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends an event to the tail. It never blocks and never drops.
func (q *EventQueue) Push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
}

// DrainUpTo removes and returns, in arrival order, every queued event with
// ArrivalTime <= bound. The bound is inclusive: an event arriving exactly at
// a frame boundary belongs to that frame. Later events remain queued. No
// event is ever returned twice.
func (q *EventQueue) DrainUpTo(bound time.Duration) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(q.events) && q.events[n].ArrivalTime <= bound {
		n++
	}
	if n == 0 {
		return nil
	}

	drained := q.events[:n:n]
	// Move the remainder to a fresh slice so the drained prefix is handed
	// off wholesale to the consumer.
	if n == len(q.events) {
		q.events = nil
	} else {
		q.events = append([]Event(nil), q.events[n:]...)
	}
	return drained
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
