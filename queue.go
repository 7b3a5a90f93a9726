package playlist

import (
	"container/list"
	"sync"
)

// queueCallbacks parameterizes a bufferQueue the way the external FIFO
// collaborator in §1/§4.2 is described: pluggable put/get/cleanup/purge
// hooks instead of a fixed accounting policy baked into the queue.
type queueCallbacks struct {
	// put is invoked when a real (non-sentinel) buffer is enqueued.
	put func(b *Buffer)
	// get is invoked when a real buffer is dequeued.
	get func(b *Buffer)
	// cleanup is invoked for every real buffer discarded by Purge or
	// Flush. Get does not call it: a dequeued buffer's reference passes
	// to the caller. Abort discards nothing.
	cleanup func(b *Buffer)
	// purge reports whether a buffer should be evicted by Purge.
	purge func(b *Buffer) bool
}

// bufferQueue is a thread-safe FIFO of *Buffer, abortable, with a
// predicate purge operation. No library in the example corpus exposes a
// generic object queue with pluggable per-element callbacks (the
// closest, a byte ring buffer, can't host refcounted objects or
// predicate eviction) — see DESIGN.md. Built with sync.Cond, matching
// the condition-variable-gated queue shape common to decode/playback
// loops in the corpus.
type bufferQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   *list.List
	aborted bool

	bufCount int
	byteSize int

	cb queueCallbacks
}

func newBufferQueue(cb queueCallbacks) *bufferQueue {
	q := &bufferQueue{items: list.New(), cb: cb}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Put enqueues b (which may be the end-of-queue sentinel).
func (q *bufferQueue) Put(b *Buffer) {
	q.mu.Lock()
	q.items.PushBack(b)
	if !IsEndOfQueue(b) {
		q.bufCount++
		q.byteSize += b.SizeBytes
		if q.cb.put != nil {
			q.cb.put(b)
		}
	}
	q.cond.Signal()
	q.mu.Unlock()
}

// QueueResult is the three-way outcome of GetBuffer (§4.2, §6).
type QueueResult int

const (
	// ResultOK carries a real buffer.
	ResultOK QueueResult = iota
	// ResultEnd signals the end-of-queue sentinel surfaced.
	ResultEnd
	// ResultNone means the queue was empty (non-blocking) or aborted.
	ResultNone
)

// Get dequeues the next element. If block is true and the queue is
// empty, it waits until an element arrives or the queue is aborted.
func (q *bufferQueue) Get(block bool) (QueueResult, *Buffer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.items.Len() > 0 {
			front := q.items.Remove(q.items.Front()).(*Buffer)
			if IsEndOfQueue(front) {
				return ResultEnd, nil
			}
			q.bufCount--
			q.byteSize -= front.SizeBytes
			if q.cb.get != nil {
				q.cb.get(front)
			}
			return ResultOK, front
		}
		if q.aborted || !block {
			return ResultNone, nil
		}
		q.cond.Wait()
	}
}

// Purge removes every queued real buffer for which the callback's purge
// predicate returns true, invoking cleanup (which unrefs) for each.
func (q *bufferQueue) Purge() {
	if q.cb.purge == nil {
		return
	}
	q.mu.Lock()
	var next *list.Element
	for e := q.items.Front(); e != nil; e = next {
		next = e.Next()
		b, _ := e.Value.(*Buffer)
		if b == nil || IsEndOfQueue(b) {
			continue
		}
		if q.cb.purge(b) {
			q.items.Remove(e)
			q.bufCount--
			q.byteSize -= b.SizeBytes
			if q.cb.cleanup != nil {
				q.cb.cleanup(b)
			}
		}
	}
	q.mu.Unlock()
}

// Flush discards every queued element (real buffers are cleaned up;
// the sentinel, if present, is simply dropped), used on seek-with-flush
// (§4.4) and on detach (§4.2).
func (q *bufferQueue) Flush() {
	q.mu.Lock()
	for e := q.items.Front(); e != nil; e = e.Next() {
		b, _ := e.Value.(*Buffer)
		if b == nil || IsEndOfQueue(b) {
			continue
		}
		if q.cb.cleanup != nil {
			q.cb.cleanup(b)
		}
	}
	q.items.Init()
	q.bufCount = 0
	q.byteSize = 0
	q.mu.Unlock()
}

// Abort unblocks any waiter in Get with ResultNone, without discarding
// queued data.
func (q *bufferQueue) Abort() {
	q.mu.Lock()
	q.aborted = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Reset clears the aborted flag, unblocking future Get(block) calls
// (§4.2: "the sink's queue is reset ... on attach").
func (q *bufferQueue) Reset() {
	q.mu.Lock()
	q.aborted = false
	q.mu.Unlock()
}

// Size reports (buffer count, byte size) ignoring the sentinel (§3,
// invariant 1 in §8).
func (q *bufferQueue) Size() (count, bytes int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.bufCount, q.byteSize
}
