package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinkMapAttachGroupsByFormat(t *testing.T) {
	m := &sinkMap{}
	s1 := NewSink(stereoS16())
	s2 := NewSink(stereoS16())
	s3 := NewSink(AudioFormat{SampleRate: 48000, Layout: ChannelMono, SampleFmt: SampleFormatF32})

	m.attach(s1)
	m.attach(s2)
	m.attach(s3)

	assert.Equal(t, 2, m.count())
	entry := m.find(stereoS16())
	assert.NotNil(t, entry)
	assert.Len(t, entry.sinks, 2)
	// prepend-always: s2 attached after s1 comes first within the entry.
	assert.True(t, entry.sinks[0] == s2)
}

func TestSinkMapPrependAlwaysAtEntryLevel(t *testing.T) {
	m := &sinkMap{}
	s1 := NewSink(stereoS16())
	s2 := NewSink(AudioFormat{SampleRate: 48000, Layout: ChannelMono, SampleFmt: SampleFormatF32})

	m.attach(s1)
	m.attach(s2)

	assert.True(t, m.entries[0].format.Equal(s2.format))
}

func TestSinkMapDetachRemovesEmptyEntry(t *testing.T) {
	m := &sinkMap{}
	s1 := NewSink(stereoS16())
	m.attach(s1)
	assert.Equal(t, 1, m.count())

	m.detach(s1)
	assert.Equal(t, 0, m.count())
	assert.Nil(t, m.find(stereoS16()))
}

func TestSinkMapAllFull(t *testing.T) {
	m := &sinkMap{}
	s1 := NewSink(stereoS16(), WithBufferSize(1))
	m.attach(s1)
	assert.False(t, m.allFull())

	s1.enqueue(newTestQueueBuffer(t, s1.minQueueBytes))
	assert.True(t, m.allFull())
}

func TestSinkMapAllFullVacuousWhenEmpty(t *testing.T) {
	m := &sinkMap{}
	assert.True(t, m.allFull())
}

func TestSinkMapBroadcastEndOfQueue(t *testing.T) {
	m := &sinkMap{}
	s1 := NewSink(stereoS16())
	s2 := NewSink(stereoS16())
	m.attach(s1)
	m.attach(s2)

	m.broadcastEndOfQueue()

	result, _ := s1.GetBuffer(false)
	assert.Equal(t, ResultEnd, result)
	result, _ = s2.GetBuffer(false)
	assert.Equal(t, ResultEnd, result)
}

func TestSinkMapFormats(t *testing.T) {
	m := &sinkMap{}
	s1 := NewSink(stereoS16())
	s2 := NewSink(AudioFormat{SampleRate: 48000, Layout: ChannelMono, SampleFmt: SampleFormatF32})
	m.attach(s1)
	m.attach(s2)

	formats := m.formats()
	assert.Len(t, formats, 2)
	assert.True(t, formats[0].Equal(s2.format))
}
