package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/signal"
)

func newTestBuffer(t *testing.T, channels, frames int) (*Buffer, *signal.PoolAllocator) {
	t.Helper()
	pool := signal.GetPoolAllocator(channels, frames, frames)
	data := pool.GetFloat64()
	format := AudioFormat{SampleRate: 44100, Layout: ChannelStereo, SampleFmt: SampleFormatF32}
	return newBuffer(data, pool, format, 0, nil), pool
}

func TestBufferRefCounting(t *testing.T) {
	buf, _ := newTestBuffer(t, 2, 16)
	assert.Equal(t, 0, buf.RefCount())

	buf.Ref()
	buf.Ref()
	assert.Equal(t, 2, buf.RefCount())

	buf.Unref()
	assert.Equal(t, 1, buf.RefCount())
	assert.NotNil(t, buf.Data())

	buf.Unref()
	assert.Equal(t, 0, buf.RefCount())
}

func TestBufferUnrefNilIsNoop(t *testing.T) {
	var buf *Buffer
	assert.NotPanics(t, func() { buf.Ref() })
	assert.NotPanics(t, func() { buf.Unref() })
}

func TestBufferFields(t *testing.T) {
	pool := signal.GetPoolAllocator(2, 16, 16)
	data := pool.GetFloat64()
	format := AudioFormat{SampleRate: 44100, Layout: ChannelStereo, SampleFmt: SampleFormatF32}
	item := &PlaylistItem{}
	buf := newBuffer(data, pool, format, 5*time.Millisecond, item)

	assert.Equal(t, format, buf.Format)
	assert.Equal(t, data.Len()/data.Channels(), buf.FrameCount)
	assert.Equal(t, 5*time.Millisecond, buf.Pos)
	assert.True(t, buf.Item == item)
}

func TestIsEndOfQueue(t *testing.T) {
	assert.True(t, IsEndOfQueue(endOfQueue))
	buf, _ := newTestBuffer(t, 1, 4)
	assert.False(t, IsEndOfQueue(buf))
	assert.False(t, IsEndOfQueue(nil))
}
