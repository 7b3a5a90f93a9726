package playlist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/signal"
)

func newTestQueueBuffer(t *testing.T, sizeBytes int) *Buffer {
	t.Helper()
	pool := signal.GetPoolAllocator(2, 16, 16)
	data := pool.GetFloat64()
	format := AudioFormat{SampleRate: 44100, Layout: ChannelStereo, SampleFmt: SampleFormatF32}
	buf := newBuffer(data, pool, format, 0, nil)
	buf.SizeBytes = sizeBytes
	return buf
}

func TestBufferQueuePutGet(t *testing.T) {
	q := newBufferQueue(queueCallbacks{})
	b1 := newTestQueueBuffer(t, 100)
	b2 := newTestQueueBuffer(t, 200)

	q.Put(b1)
	q.Put(b2)

	count, bytes := q.Size()
	assert.Equal(t, 2, count)
	assert.Equal(t, 300, bytes)

	result, got := q.Get(false)
	assert.Equal(t, ResultOK, result)
	assert.True(t, got == b1)

	result, got = q.Get(false)
	assert.Equal(t, ResultOK, result)
	assert.True(t, got == b2)

	result, got = q.Get(false)
	assert.Equal(t, ResultNone, result)
	assert.Nil(t, got)
}

func TestBufferQueueEndOfQueue(t *testing.T) {
	q := newBufferQueue(queueCallbacks{})
	q.Put(endOfQueue)

	result, got := q.Get(false)
	assert.Equal(t, ResultEnd, result)
	assert.Nil(t, got)
}

func TestBufferQueueBlockingGetUnblocksOnPut(t *testing.T) {
	q := newBufferQueue(queueCallbacks{})
	done := make(chan QueueResult, 1)
	go func() {
		result, _ := q.Get(true)
		done <- result
	}()

	time.Sleep(10 * time.Millisecond)
	q.Put(newTestQueueBuffer(t, 50))

	select {
	case result := <-done:
		assert.Equal(t, ResultOK, result)
	case <-time.After(time.Second):
		t.Fatal("blocking Get never unblocked")
	}
}

func TestBufferQueueAbortUnblocksGet(t *testing.T) {
	q := newBufferQueue(queueCallbacks{})
	done := make(chan QueueResult, 1)
	go func() {
		result, _ := q.Get(true)
		done <- result
	}()

	time.Sleep(10 * time.Millisecond)
	q.Abort()

	select {
	case result := <-done:
		assert.Equal(t, ResultNone, result)
	case <-time.After(time.Second):
		t.Fatal("Abort never unblocked Get")
	}
}

func TestBufferQueuePurge(t *testing.T) {
	var cleaned []*Buffer
	target := newTestQueueBuffer(t, 10)
	other := newTestQueueBuffer(t, 20)

	q := newBufferQueue(queueCallbacks{
		cleanup: func(b *Buffer) { cleaned = append(cleaned, b) },
		purge:   func(b *Buffer) bool { return b == target },
	})
	q.Put(target)
	q.Put(other)

	q.Purge()

	count, bytes := q.Size()
	assert.Equal(t, 1, count)
	assert.Equal(t, 20, bytes)
	assert.Len(t, cleaned, 1)
	assert.True(t, cleaned[0] == target)

	_, got := q.Get(false)
	assert.True(t, got == other)
}

func TestBufferQueueFlush(t *testing.T) {
	var cleaned int
	q := newBufferQueue(queueCallbacks{
		cleanup: func(b *Buffer) { cleaned++ },
	})
	q.Put(newTestQueueBuffer(t, 10))
	q.Put(newTestQueueBuffer(t, 20))
	q.Put(endOfQueue)

	q.Flush()

	assert.Equal(t, 2, cleaned)
	count, bytes := q.Size()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, bytes)

	result, _ := q.Get(false)
	assert.Equal(t, ResultNone, result)
}

func TestBufferQueueResetAfterAbort(t *testing.T) {
	q := newBufferQueue(queueCallbacks{})
	q.Abort()
	result, _ := q.Get(false)
	assert.Equal(t, ResultNone, result)

	q.Reset()
	done := make(chan QueueResult, 1)
	go func() {
		result, _ := q.Get(true)
		done <- result
	}()
	time.Sleep(10 * time.Millisecond)
	q.Put(newTestQueueBuffer(t, 1))
	select {
	case result := <-done:
		assert.Equal(t, ResultOK, result)
	case <-time.After(time.Second):
		t.Fatal("Get never returned after Reset")
	}
}
