package playlist

import (
	"time"

	"github.com/charmbracelet/log"
)

// noopDelay is the decoder's idle-sleep interval (§4.4's NOOP_DELAY,
// "≈5 ms").
const noopDelay = 5 * time.Millisecond

// Option configures a Playlist at construction time. Translated from
// the corpus's Config/DefaultConfig struct idiom (drgolem/musictools's
// audioplayer.Config) into functional options, since CLI/config-file
// loading is an explicit non-goal (§1) but the constructor still needs
// a small, discoverable tunable surface.
type Option func(*Playlist)

// WithNoopDelay overrides the decoder's idle-sleep interval.
func WithNoopDelay(d time.Duration) Option {
	return func(p *Playlist) { p.noopDelay = d }
}

// WithLogger overrides the playlist's logger. By default a new
// charmbracelet/log logger at Info level is created.
func WithLogger(l *log.Logger) Option {
	return func(p *Playlist) { p.log = l }
}

// WithFilterGraphBufferSize overrides the frame-count granularity the
// filter graph's branch pools are sized for.
func WithFilterGraphBufferSize(frames int) Option {
	return func(p *Playlist) { p.filterBufferSize = frames }
}

// SinkOption configures a Sink at construction time.
type SinkOption func(*Sink)

// WithBufferSize overrides the sink's backpressure buffer size, in
// frames (default 8192, §6).
func WithBufferSize(frames int) SinkOption {
	return func(s *Sink) { s.bufferSize = frames }
}

// WithFlushCallback sets the callback invoked when the decoder flushes
// this sink after a seek (§4.4, §6).
func WithFlushCallback(fn func()) SinkOption {
	return func(s *Sink) { s.flushCB = fn }
}

// WithPurgeCallback sets the callback invoked once a removed item's
// buffers have been evicted from this sink (§4.5, §6).
func WithPurgeCallback(fn func(item *PlaylistItem)) SinkOption {
	return func(s *Sink) { s.purgeCB = fn }
}
