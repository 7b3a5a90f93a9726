package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func stereoS16() AudioFormat {
	return AudioFormat{SampleRate: 44100, Layout: ChannelStereo, SampleFmt: SampleFormatS16}
}

func TestNewSinkDefaults(t *testing.T) {
	s := NewSink(stereoS16())
	assert.Equal(t, defaultSinkBufferSize, s.bufferSize)
	assert.Equal(t, stereoS16(), s.Format())
	assert.False(t, s.Full())
}

func TestNewSinkWithBufferSize(t *testing.T) {
	s := NewSink(stereoS16(), WithBufferSize(4))
	count, bytes := s.QueueStats()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, bytes)
	assert.Equal(t, 4*2*2, s.minQueueBytes)
}

func TestSinkFullAfterThreshold(t *testing.T) {
	s := NewSink(stereoS16(), WithBufferSize(2))
	assert.False(t, s.Full())

	buf := newTestQueueBuffer(t, s.minQueueBytes)
	s.enqueue(buf)
	assert.True(t, s.Full())
}

func TestSinkGetBufferTransfersOwnership(t *testing.T) {
	s := NewSink(stereoS16())
	buf := newTestQueueBuffer(t, 10)
	buf.Ref()
	s.enqueue(buf)

	result, got := s.GetBuffer(false)
	assert.Equal(t, ResultOK, result)
	assert.True(t, got == buf)
	assert.Equal(t, 1, got.RefCount())
}

func TestAttachDetach(t *testing.T) {
	p := NewPlaylist()
	defer p.Close()

	s := NewSink(stereoS16())
	p.Attach(s)
	assert.Equal(t, 1, p.sinkMap.count())
	assert.True(t, s.playlist == p)

	var flushed bool
	s.flushCB = func() { flushed = true }
	p.Detach(s)
	assert.Equal(t, 0, p.sinkMap.count())
	assert.False(t, flushed, "flushCB is only invoked by Seek, not Detach")
	assert.Nil(t, s.playlist)
}
