package stream

import "sync"

// Queue is an unbounded FIFO with any number of producers and one consumer.
// Send never blocks; the consumer takes everything available with Drain.
type Queue struct {
	mu     sync.Mutex
	items  []Message
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Send appends m and wakes a consumer blocked on Ready.
func (q *Queue) Send(m Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every queued message in send order. It returns
// nil when the queue is empty and never waits.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Ready is signalled after a Send. Consumers that are allowed to block
// (batch tools, not the UI tick) select on it before calling Drain.
func (q *Queue) Ready() <-chan struct{} { return q.notify }

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
