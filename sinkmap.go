package playlist

// sinkMapEntry groups every attached Sink sharing one AudioFormat and
// owns that format's branch of the filter graph (§3). The teacher's
// singly-linked SinkStack is translated to a plain slice: the outward
// behavior the spec tests for — grouping by format, prepend order,
// non-empty-stack invariant — doesn't depend on intrusive linking, and
// a slice is the idiomatic Go shape for an owned, never-externally-
// aliased collection (mixer.go's m.inputs []input is the same move).
type sinkMapEntry struct {
	format AudioFormat
	sinks  []*Sink
}

// sinkMap is the grouping of attached sinks by identical output format,
// indexing the branches of the filter graph (§3). Prepend-always: both
// new entries and new sinks within an entry are inserted at index 0,
// resolving the Open Question in §9 in favor of the map-append branch's
// behavior.
type sinkMap struct {
	entries []*sinkMapEntry
}

func (m *sinkMap) count() int { return len(m.entries) }

// formats returns the distinct AudioFormats currently grouped, in
// prepend (most-recently-added-entry-first) order.
func (m *sinkMap) formats() []AudioFormat {
	out := make([]AudioFormat, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.format
	}
	return out
}

func (m *sinkMap) find(format AudioFormat) *sinkMapEntry {
	for _, e := range m.entries {
		if e.format.Equal(format) {
			return e
		}
	}
	return nil
}

// attach inserts s into the entry matching its format, creating a new
// entry (prepended to m.entries) if none matches. s itself is
// prepended within the entry's sink slice (§4.2, §9).
func (m *sinkMap) attach(s *Sink) {
	if e := m.find(s.format); e != nil {
		e.sinks = append([]*Sink{s}, e.sinks...)
		return
	}
	entry := &sinkMapEntry{
		format: s.format,
		sinks:  []*Sink{s},
	}
	m.entries = append([]*sinkMapEntry{entry}, m.entries...)
}

// detach removes s from its entry; if the entry's sink list becomes
// empty, the entry itself is removed (§4.2 invariant: "each map entry
// has a non-empty stack").
func (m *sinkMap) detach(s *Sink) {
	for i, e := range m.entries {
		for j, sink := range e.sinks {
			if sink != s {
				continue
			}
			e.sinks = append(e.sinks[:j:j], e.sinks[j+1:]...)
			if len(e.sinks) == 0 {
				m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
			}
			return
		}
	}
}

// allFull reports whether every attached sink is full (§4.4 step 4,
// §5's backpressure policy). Vacuously true when there are no sinks at
// all: with nobody to deliver to, the decoder should idle just as it
// would if every sink were saturated.
func (m *sinkMap) allFull() bool {
	for _, e := range m.entries {
		for _, s := range e.sinks {
			if !s.Full() {
				return false
			}
		}
	}
	return true
}

// broadcastEndOfQueue enqueues the end-of-queue sentinel into every
// attached sink's FIFO exactly once per call (§3, §4.4 step 2).
func (m *sinkMap) broadcastEndOfQueue() {
	for _, e := range m.entries {
		for _, s := range e.sinks {
			s.queue.Put(endOfQueue)
		}
	}
}

// exampleSink is the first entry in the stack, used to parameterize the
// branch's format conversion (§3: "the example sink used to parameterize
// the filter graph's format branch").
func (e *sinkMapEntry) exampleSink() *Sink {
	if len(e.sinks) == 0 {
		return nil
	}
	return e.sinks[0]
}
