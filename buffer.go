package playlist

import (
	"sync"
	"time"

	"pipelined.dev/signal"
)

// Buffer is a reference-counted container for one decoded, filtered
// audio frame (§3, §4.1). The data backing buffer is owned by a
// signal.PoolAllocator and returned to the pool when the last
// reference is released — the same scheme repeat.go uses for its
// refcounted *message, generalized from a fixed fan-out count to an
// arbitrary, time-varying number of sinks.
type Buffer struct {
	mu   sync.Mutex
	data signal.Floating
	pool *signal.PoolAllocator

	Format     AudioFormat
	FrameCount int
	SizeBytes  int
	Pos        time.Duration
	// Item is a weak, non-owning back-reference used only for purge
	// matching (§3, §9). Never dereferenced — compared by identity only.
	Item *PlaylistItem

	refCount int
}

// newBuffer wraps data produced by a filter-graph branch for the given
// item and position. Initial ref count is 0: the producer must ref it
// once per accepting consumer, then unref once itself to trigger
// destruction if nobody accepted it (§4.1).
func newBuffer(data signal.Floating, pool *signal.PoolAllocator, format AudioFormat, pos time.Duration, item *PlaylistItem) *Buffer {
	frames := data.Len() / data.Channels()
	return &Buffer{
		data:       data,
		pool:       pool,
		Format:     format,
		FrameCount: frames,
		SizeBytes:  frames * format.Channels() * format.SampleFmt.BytesPerSample(),
		Pos:        pos,
		Item:       item,
	}
}

// Data exposes the underlying samples for a sink to consume. The
// returned value is only valid while the caller holds a reference.
func (b *Buffer) Data() signal.Floating {
	return b.data
}

// Ref atomically increments the reference count (§4.1).
func (b *Buffer) Ref() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.refCount++
	b.mu.Unlock()
}

// Unref atomically decrements the reference count; at zero it releases
// the underlying frame back to its pool. Nil is a no-op (§4.1).
func (b *Buffer) Unref() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.refCount--
	zero := b.refCount <= 0
	b.mu.Unlock()
	if zero && b.data != nil {
		b.data.Free(b.pool)
		b.data = nil
	}
}

// RefCount returns the current reference count, for tests and invariant
// checks (§8, invariant 3).
func (b *Buffer) RefCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refCount
}

// endOfQueue is the process-wide end-of-queue sentinel (§3). It is
// distinguishable from any real *Buffer by identity, never by value.
var endOfQueue = &Buffer{}

// IsEndOfQueue reports whether b is the end-of-queue sentinel.
func IsEndOfQueue(b *Buffer) bool {
	return b == endOfQueue
}
