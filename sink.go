package playlist

// Sink is a per-consumer FIFO of buffers plus a declared output format
// and a backpressure threshold (§3, §4.2).
type Sink struct {
	format     AudioFormat
	bufferSize int // frames

	bytesPerSec   int
	minQueueBytes int

	queue *bufferQueue

	playlist *Playlist

	flushCB func()
	purgeCB func(item *PlaylistItem)

	// purgeItem is set transiently by Playlist.Remove to parameterize
	// the queue's purge predicate without allocating a closure per call
	// (§9: "purge_item is a transient shared field").
	purgeItem *PlaylistItem
}

// defaultSinkBufferSize matches sink_create's default of 8192 frames (§6).
const defaultSinkBufferSize = 8192

// NewSink creates a detached sink for the given output format. Use
// SinkOption to override the buffer size or flush/purge callbacks
// before attaching it to a Playlist.
func NewSink(format AudioFormat, opts ...SinkOption) *Sink {
	s := &Sink{
		format:     format,
		bufferSize: defaultSinkBufferSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.deriveThresholds()
	s.queue = newBufferQueue(queueCallbacks{
		put: func(b *Buffer) {},
		get: func(b *Buffer) {},
		cleanup: func(b *Buffer) {
			b.Unref()
		},
		purge: func(b *Buffer) bool {
			return s.purgeItem != nil && b.Item == s.purgeItem
		},
	})
	return s
}

func (s *Sink) deriveThresholds() {
	s.bytesPerSec = s.format.BytesPerSecond()
	s.minQueueBytes = s.bufferSize * s.format.Channels() * s.format.SampleFmt.BytesPerSample()
}

// Format returns the sink's declared output format.
func (s *Sink) Format() AudioFormat { return s.format }

// Full reports whether the sink has reached its backpressure threshold
// (§4.2, §5).
func (s *Sink) Full() bool {
	_, bytes := s.queue.Size()
	return bytes >= s.minQueueBytes
}

// QueueStats returns the current (buffer count, byte size), exposed for
// invariant checks (§8, invariant 1).
func (s *Sink) QueueStats() (count, bytes int) {
	return s.queue.Size()
}

// GetBuffer dequeues the next element for this sink (§4.2, §6). When
// block is true and the queue is empty, it waits for a buffer, the
// sentinel, or an abort. Ownership of an OK buffer transfers to the
// caller, who must Unref it.
func (s *Sink) GetBuffer(block bool) (QueueResult, *Buffer) {
	return s.queue.Get(block)
}

// enqueue pushes b into the sink's queue and returns whether it was
// accepted. This simple queue never rejects, but the signature mirrors
// the spec's "on failure, log; on success, ref" contract in §4.4 so a
// bounded variant could be substituted without changing callers.
func (s *Sink) enqueue(b *Buffer) bool {
	s.queue.Put(b)
	return true
}

// Attach binds the sink to a playlist, placing it into the playlist's
// SinkMap under the playlist mutex (§4.2). The derived fields were
// already computed by NewSink. The queue is reset so a sink can be reused after a prior
// Detach.
func (p *Playlist) Attach(s *Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.playlist = p
	s.queue.Reset()
	p.sinkMap.attach(s)
	p.log.Debug("sink attached", "format", s.format, "sink_map_count", p.sinkMap.count())
}

// Detach aborts and flushes the sink's queue, then removes it from the
// playlist's SinkMap; if its format group becomes empty, the filter
// graph is rebuilt on the next decode iteration (§4.2).
func (p *Playlist) Detach(s *Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.queue.Abort()
	s.queue.Flush()
	p.sinkMap.detach(s)
	s.playlist = nil
	p.log.Debug("sink detached", "format", s.format, "sink_map_count", p.sinkMap.count())
}
