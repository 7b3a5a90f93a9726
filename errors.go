package playlist

import "errors"

// Error taxonomy (§7). The decoder loop logs and absorbs every one of
// these except where noted; public API functions return them instead of
// a negative status code, since that is the idiomatic Go translation of
// "return negative on failure and leave state unchanged".
var (
	// ErrOutOfMemory names allocation failure in the taxonomy. No
	// constructor in this package returns it: NewPlaylist, NewSink and
	// NewFilterGraph have no error result.
	ErrOutOfMemory = errors.New("playlist: out of memory")
	// ErrDecode means a packet failed to decode; the decoder drops the
	// packet and continues.
	ErrDecode = errors.New("playlist: decode error")
	// ErrFilterGraph means graph construction or frame submission
	// failed; the next iteration retries after the rebuild trigger.
	ErrFilterGraph = errors.New("playlist: filter graph error")
	// ErrRead means the demuxer's read failed; treated as EOF, advancing
	// to the next file.
	ErrRead = errors.New("playlist: read error")
	// ErrSeek means a file seek failed; seek_pos is still cleared and
	// decoding resumes at the current position.
	ErrSeek = errors.New("playlist: seek error")
	// ErrUnsupportedFormat means OpenFile couldn't match the path to a
	// known container by extension.
	ErrUnsupportedFormat = errors.New("playlist: unsupported file format")
	// ErrClosed names use of a playlist after Close. No function in this
	// package returns it; mutation calls do not check whether the
	// playlist has been closed.
	ErrClosed = errors.New("playlist: closed")
	// ErrNotFound is returned when an item reference is not part of the
	// playlist it's being operated on.
	ErrNotFound = errors.New("playlist: item not found")
)
