package tracker

import (
	"sync"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

// Queue is the bounded buffer between the event sources and the consumer
// loop. Overflow follows the configured policy: coalesce evicts the oldest
// pending entry to admit the new one, block makes the producer wait for
// the consumer to drain. It never grows past its capacity.
type Queue struct {
	mu     sync.Mutex
	space  *sync.Cond
	buf    []ports.RawEvent
	head   int
	size   int
	policy domain.OverflowPolicy
	closed bool

	ready chan struct{}
}

// NewQueue creates a queue holding at most capacity events.
func NewQueue(capacity int, policy domain.OverflowPolicy) *Queue {
	q := &Queue{
		buf:    make([]ports.RawEvent, capacity),
		policy: policy,
		ready:  make(chan struct{}, 1),
	}
	q.space = sync.NewCond(&q.mu)
	return q
}

// Push admits one event. Under the coalesce policy a full queue evicts its
// oldest entry and Push reports ErrQueueOverflow so the caller can count
// the loss. Under the block policy Push waits for room. A closed queue
// rejects the event with ErrWatchStopped.
func (q *Queue) Push(ev ports.RawEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.policy == domain.OverflowBlock {
		for q.size == len(q.buf) && !q.closed {
			q.space.Wait()
		}
	}
	if q.closed {
		return domain.ErrWatchStopped
	}

	var err error
	if q.size == len(q.buf) {
		q.head = (q.head + 1) % len(q.buf)
		q.size--
		err = domain.ErrQueueOverflow
	}

	q.buf[(q.head+q.size)%len(q.buf)] = ev
	q.size++
	q.signal()
	return err
}

// PopAll removes and returns every pending event in arrival order. Safe
// after Close; the remainder drains normally.
func (q *Queue) PopAll() []ports.RawEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil
	}
	out := make([]ports.RawEvent, 0, q.size)
	for i := range q.size {
		out = append(out, q.buf[(q.head+i)%len(q.buf)])
	}
	q.head = 0
	q.size = 0
	q.space.Broadcast()
	return out
}

// Ready signals pending events. The signal is edge-style with a one-slot
// buffer; a woken consumer drains with PopAll.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Close rejects further pushes and releases blocked producers.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.space.Broadcast()
	q.signal()
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
