package playlist

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// PlaylistItem is one entry of the playlist's doubly-linked sequence:
// a file plus its per-item gain (§3). The list is intrusive, owner-
// managed prev/next exactly like track.go's link type in the teacher —
// the same shape that already solves "ordered, mutable, externally
// addressed sequence of audio sources" for this teacher.
type PlaylistItem struct {
	// ID identifies the item in log output. Purge matching does not use
	// it: buffers are matched to a removed item by *PlaylistItem pointer
	// identity, never by dereference (§9).
	ID   uuid.UUID
	File File
	Gain float64

	prev, next *PlaylistItem

	lastPaused bool
}

// Playlist is a doubly-linked sequence of items plus the single decoder
// thread that plays them (§3, §4.4, §4.5).
type Playlist struct {
	mu sync.Mutex

	head, tail *PlaylistItem
	decodeHead *PlaylistItem

	volume          float64
	compositeVolume float64
	rebuildFlag     bool

	sinkMap sinkMap
	graph   *FilterGraph

	sentEndOfQ bool
	paused     bool

	purgeItem *PlaylistItem

	noopDelay        time.Duration
	filterBufferSize int
	log              *log.Logger

	abort int32
	done  chan struct{}
	wg    sync.WaitGroup
}

const defaultFilterBufferSize = 4096

// NewPlaylist allocates a Playlist with volume 1.0 and starts its
// decoder thread (§6: playlist_create).
func NewPlaylist(opts ...Option) *Playlist {
	p := &Playlist{
		volume:           1.0,
		compositeVolume:  1.0,
		noopDelay:        noopDelay,
		filterBufferSize: defaultFilterBufferSize,
		log:              log.NewWithOptions(os.Stderr, log.Options{Level: log.InfoLevel, Prefix: "playlist"}),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.graph = NewFilterGraph(p.filterBufferSize)
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *Playlist) isAborted() bool {
	return atomic.LoadInt32(&p.abort) != 0
}

// Close clears the playlist, stops the decoder thread, and detaches
// every sink (§6: playlist_destroy).
func (p *Playlist) Close() error {
	p.Clear()
	atomic.StoreInt32(&p.abort, 1)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.sinkMap.entries {
		for _, s := range e.sinks {
			s.queue.Abort()
			s.queue.Flush()
			s.playlist = nil
		}
	}
	p.sinkMap.entries = nil
	p.graph = nil
	return nil
}

// Play clears the paused flag (§6: playlist_play).
func (p *Playlist) Play() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// Pause sets the paused flag (§6: playlist_pause).
func (p *Playlist) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Playing reports !paused (§4.5, §6).
func (p *Playlist) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.paused
}

// Insert allocates an item for file/gain and splices it before next,
// or appends to the tail when next is nil. If the playlist was empty,
// the new item becomes decode_head and its file is seeked to 0 (§4.5).
func (p *Playlist) Insert(file File, gain float64, next *PlaylistItem) *PlaylistItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	item := &PlaylistItem{ID: uuid.New(), File: file, Gain: gain}
	wasEmpty := p.head == nil

	if next == nil {
		if p.tail == nil {
			p.head, p.tail = item, item
		} else {
			item.prev = p.tail
			p.tail.next = item
			p.tail = item
		}
	} else {
		item.next = next
		item.prev = next.prev
		if next.prev != nil {
			next.prev.next = item
		} else {
			p.head = item
		}
		next.prev = item
	}

	if wasEmpty {
		p.decodeHead = item
		if item.File != nil {
			_ = item.File.SeekTo(0)
		}
	}
	return item
}

// Remove detaches item from the list and ensures no sink FIFO still
// references it before returning (§4.5, §8 invariant 5).
func (p *Playlist) Remove(item *PlaylistItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remove(item)
}

func (p *Playlist) remove(item *PlaylistItem) {
	if item == p.decodeHead {
		p.decodeHead = item.next
	}
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		p.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		p.tail = item.prev
	}
	item.prev, item.next = nil, nil

	p.purgeItem = item
	for _, e := range p.sinkMap.entries {
		for _, s := range e.sinks {
			s.purgeItem = item
			s.queue.Purge()
			s.purgeItem = nil
			if s.purgeCB != nil {
				s.purgeCB(item)
			}
		}
	}
	p.purgeItem = nil
}

// Clear removes every item, head-first (§4.5; §9 resolves the "capture
// next before remove" ambiguity as "remove head until head is null").
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.head != nil {
		p.remove(p.head)
	}
}

// Count returns the number of items currently in the playlist (§6).
func (p *Playlist) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := p.head; i != nil; i = i.next {
		n++
	}
	return n
}

// Seek requests playback of item starting at the given offset, flushing
// every attached sink's queue (§4.5). Because the decoder thread only
// ever touches files while holding the same mutex Seek acquires here,
// performing the seek synchronously (rather than queuing seek_pos/
// seek_flush for the decoder to notice next iteration, as the C source
// does) gives the identical ordering guarantee with one less field.
func (p *Playlist) Seek(item *PlaylistItem, at time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	found := false
	for i := p.head; i != nil; i = i.next {
		if i == item {
			found = true
			break
		}
	}
	if !found || item.File == nil {
		return ErrNotFound
	}
	if err := item.File.SeekTo(at); err != nil {
		p.log.Warn("seek failed", "err", err)
		return err
	}
	for _, e := range p.sinkMap.entries {
		for _, s := range e.sinks {
			s.queue.Flush()
			if s.flushCB != nil {
				s.flushCB()
			}
		}
	}
	p.decodeHead = item
	return nil
}

// SetGain updates item's gain; if item is decode_head, the composite
// volume is recomputed (§4.5).
func (p *Playlist) SetGain(item *PlaylistItem, gain float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item.Gain = gain
	if item == p.decodeHead {
		p.compositeVolume = p.volume * item.Gain
	}
}

// SetVolume updates the playlist-wide volume multiplier and recomputes
// the composite volume (§4.5).
func (p *Playlist) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	if p.decodeHead != nil {
		p.compositeVolume = v * p.decodeHead.Gain
	} else {
		p.compositeVolume = v
	}
}

// Position returns the current decode head and its file's audio clock
// (§4.5, §6).
func (p *Playlist) Position() (*PlaylistItem, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.decodeHead == nil {
		return nil, 0
	}
	return p.decodeHead, p.decodeHead.File.Clock()
}
