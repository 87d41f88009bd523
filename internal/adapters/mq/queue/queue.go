// Package queue holds bounded in-memory queues for point events.
//
// Events of one match always land in the same partition, so a single consumer
// per partition sees them in submission order.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/okian/deuce/internal/domain/model"
	"github.com/okian/deuce/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Event represents the payload type flowing through the queue.
type Event = model.Event

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event to the queue.
	// Returns false if the queue is full or closed and the event was not enqueued.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns the channel events are delivered on.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close stops accepting events. Queued events can still be dequeued.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	return q
}

// Enqueue adds an event to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.report()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns the queue's channel; consumers should call Done after each
// event so size metrics stay current.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Event {
	return q.events
}

// Done records that one event was taken off the queue.
func (q *InMemoryQueue) Done() {
	metrics.RecordQueueDequeue()
	q.report()
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.events)
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close stops accepting events.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) report() {
	size := len(q.events)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}

// Partitioned spreads events over several InMemoryQueues by match id.
type Partitioned struct {
	parts []*InMemoryQueue
}

// NewPartitioned creates n partitions, each built with opts. n < 1 means 1.
func NewPartitioned(n int, opts ...Option) *Partitioned {
	if n < 1 {
		n = 1
	}
	p := &Partitioned{parts: make([]*InMemoryQueue, n)}
	for i := range p.parts {
		p.parts[i] = NewInMemoryQueue(opts...)
	}
	return p
}

// PartitionFor returns the partition index for a match id.
func (p *Partitioned) PartitionFor(matchID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(matchID))
	return int(h.Sum32() % uint32(len(p.parts))) //nolint:gosec // len(parts) is small and positive
}

// Enqueue routes e to its match's partition.
func (p *Partitioned) Enqueue(ctx context.Context, e Event) bool { //nolint:gocritic // hugeParam: Event is passed by value for channel semantics
	ok := p.parts[p.PartitionFor(e.MatchID)].Enqueue(ctx, e)
	metrics.UpdateQueueSize(p.Len(ctx))
	return ok
}

// Partition returns the i-th partition.
func (p *Partitioned) Partition(i int) *InMemoryQueue {
	return p.parts[i]
}

// Partitions returns the number of partitions.
func (p *Partitioned) Partitions() int {
	return len(p.parts)
}

// Len returns the number of queued events across all partitions.
func (p *Partitioned) Len(ctx context.Context) int {
	n := 0
	for _, q := range p.parts {
		n += q.Len(ctx)
	}
	return n
}

// Capacity returns the combined capacity of all partitions.
func (p *Partitioned) Capacity() int {
	n := 0
	for _, q := range p.parts {
		n += q.Cap()
	}
	return n
}

// Close closes every partition.
func (p *Partitioned) Close() error {
	for _, q := range p.parts {
		if err := q.Close(); err != nil {
			return err
		}
	}
	return nil
}
