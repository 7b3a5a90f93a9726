package playlist

import (
	"time"

	"pipelined.dev/signal"
)

// branch is one output pad of the split stage: an aformat stage
// (parameterized by its entry's example sink's format) followed by a
// sink_buffer stage that wraps the converted samples into a *Buffer
// (§4.3).
type branch struct {
	format AudioFormat
	pool   *signal.PoolAllocator
}

func newBranch(format AudioFormat, bufferSize int) *branch {
	return &branch{
		format: format,
		pool:   signal.GetPoolAllocator(format.Channels(), bufferSize, bufferSize),
	}
}

// FilterGraph transforms one input format + one composite volume into N
// parallel output streams, one per distinct sink format (§4.3):
//
//	input_buffer_src -> [volume] -> [split(N)] -> aformat_i -> sink_buffer_i
//
// The volume stage is the normalize-in-place loop from mixer.go's
// frame.sum, adapted to scale by a clamped scalar instead of dividing by
// a running count. The split stage is repeat.go's Repeater broadcast
// technique turned inward: instead of publishing to N independently
// scheduled pipe.Source goroutines, Process fans directly into N
// branches inline, since the decoder loop (not a concurrent pipe
// scheduler) is already the single writer here.
type FilterGraph struct {
	bufferSize int

	built        bool
	inputFormat  AudioFormat
	builtVolume  float64
	branches     []*branch
	branchFormat []AudioFormat
}

// NewFilterGraph creates an empty graph; Rebuild must be called before
// Process.
func NewFilterGraph(bufferSize int) *FilterGraph {
	return &FilterGraph{bufferSize: bufferSize}
}

// NeedsRebuild evaluates the rebuild trigger (§4.3): no graph yet, an
// explicit rebuild flag, a changed input format, a changed clamped
// composite volume, or a changed list of branch formats. The volume
// comparison is intentionally exact floating-point
// equality, not a tolerant epsilon comparison — preserved per the
// spec's Open Question in §9 even though it is fragile.
func (g *FilterGraph) NeedsRebuild(inputFormat AudioFormat, volume float64, explicit bool, branchFormats []AudioFormat) bool {
	if !g.built || explicit {
		return true
	}
	if !g.inputFormat.Equal(inputFormat) {
		return true
	}
	if g.builtVolume != clampVolume(volume) {
		return true
	}
	if len(g.branchFormat) != len(branchFormats) {
		return true
	}
	for i, f := range branchFormats {
		if !g.branchFormat[i].Equal(f) {
			return true
		}
	}
	return false
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Rebuild tears down the existing graph and constructs a fresh one for
// the given input format, composite volume, and set of distinct branch
// formats — one branch per entry in the playlist's SinkMap, in SinkMap
// order (§4.3). Prior output frames already delivered are unaffected,
// since branches own their own pools and Process never reaches back
// into a torn-down branch.
func (g *FilterGraph) Rebuild(inputFormat AudioFormat, volume float64, branchFormats []AudioFormat) {
	g.inputFormat = inputFormat
	g.builtVolume = clampVolume(volume)
	g.branchFormat = append([]AudioFormat(nil), branchFormats...)
	g.branches = make([]*branch, len(branchFormats))
	for i, f := range branchFormats {
		g.branches[i] = newBranch(f, g.bufferSize)
	}
	g.built = true
}

// hasVolumeStage reports whether the volume stage is present in the
// built graph — omitted when the clamped volume equals exactly 1.0
// (§4.3).
func (g *FilterGraph) hasVolumeStage() bool {
	return g.builtVolume != 1.0
}

// hasSplitStage reports whether the split stage is present — omitted
// when there is exactly one branch (§4.3).
func (g *FilterGraph) hasSplitStage() bool {
	return len(g.branches) > 1
}

// Process pushes one decoded input frame through the built graph,
// returning one output *Buffer per branch in SinkMap order. Each
// Buffer's SizeBytes is what the decoder uses to compute the clock
// adjustment in §4.4 step e.
func (g *FilterGraph) Process(input signal.Floating, pos time.Duration, item *PlaylistItem) ([]*Buffer, error) {
	if !g.built {
		return nil, ErrFilterGraph
	}
	working := input
	if g.hasVolumeStage() {
		working = applyVolume(input, g.builtVolume)
	}
	out := make([]*Buffer, len(g.branches))
	for i, br := range g.branches {
		converted := br.pool.GetFloat64()
		n := signal.FloatingAsFloating(working, converted)
		converted = converted.Slice(0, n/converted.Channels())
		out[i] = newBuffer(converted, br.pool, br.format, pos, item)
	}
	return out, nil
}

// applyVolume scales in by the clamped composite volume, in place —
// in.Slice returns a view over in's own backing array, not a copy, the
// same shape as mixer.go's frame.sum normalization loop applied to its
// own input. Safe here because every frame reaching the filter graph
// was freshly allocated for this decode and has no other reader.
func applyVolume(in signal.Floating, volume float64) signal.Floating {
	out := in.Slice(0, in.Len()/in.Channels())
	for i := 0; i < out.Len(); i++ {
		out.SetSample(i, in.Sample(i)*volume)
	}
	return out
}
