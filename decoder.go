package playlist

import (
	"io"
	"time"

	"pipelined.dev/signal"
)

// run is the decoder thread body (§4.4): read -> decode -> filter ->
// fan-out, honoring pause, seek, EOF, and backpressure across an
// arbitrary, mutable set of sinks. It exits only when Close sets abort.
func (p *Playlist) run() {
	defer p.wg.Done()
	for !p.isAborted() {
		p.mu.Lock()

		if p.decodeHead == nil {
			if !p.sentEndOfQ {
				p.sinkMap.broadcastEndOfQueue()
				p.sentEndOfQ = true
			}
			p.mu.Unlock()
			time.Sleep(p.noopDelay)
			continue
		}
		p.sentEndOfQ = false

		if p.sinkMap.allFull() {
			p.mu.Unlock()
			time.Sleep(p.noopDelay)
			continue
		}

		item := p.decodeHead
		p.compositeVolume = item.Gain * p.volume

		n, err := p.decodeOneFrame(item)
		if err != nil {
			p.log.Warn("decode iteration absorbed an error", "err", err, "item", item.ID)
		}
		if n < 0 {
			p.decodeHead = item.next
			if p.decodeHead != nil && p.decodeHead.File != nil {
				if err := p.decodeHead.File.SeekTo(0); err != nil {
					p.log.Warn("restart seek failed", "err", err)
				}
			}
		}

		p.mu.Unlock()
	}
}

// decodeOneFrame is decode_one_frame (§4.4): rebuild the graph if
// needed, honor the file's abort request, latch pause transitions, read
// one packet, and decode it. A negative return means the file is
// finished (fatal error or real EOF with no delayed frames left); the
// caller advances decode_head.
func (p *Playlist) decodeOneFrame(item *PlaylistItem) (int, error) {
	p.maybeRebuildGraph(item)

	if item.File.AbortRequested() {
		return -1, nil
	}

	if item.lastPaused != p.paused {
		item.File.SetPaused(p.paused)
		item.lastPaused = p.paused
	}

	pkt, err := item.File.ReadPacket()
	if err != nil {
		if err != io.EOF {
			p.log.Warn("read error, treating as EOF", "err", err)
		}
		if item.File.DelayedFramesSupported() {
			frame, _, derr := item.File.DecodeFrame(Packet{Flush: true})
			if derr == nil && frame != nil {
				return p.fanOut(item, frame, true)
			}
		}
		return -1, nil
	}

	n, err := p.audioDecodeFrame(item, pkt)
	if n < 0 {
		// A packet that fails to decode or filter is dropped; the file
		// keeps playing from its next packet.
		return 0, err
	}
	return n, err
}

// audioDecodeFrame is audio_decode_frame (§4.4): decode one packet into
// the filter graph's input frame, submit it, and fan the resulting
// per-branch buffers out to every sink in every branch.
func (p *Playlist) audioDecodeFrame(item *PlaylistItem, pkt Packet) (int, error) {
	if pkt.PTS != nil {
		item.File.SetClock(*pkt.PTS)
	}

	frame, _, err := item.File.DecodeFrame(pkt)
	if err != nil {
		return -1, ErrDecode
	}
	if frame == nil {
		return 0, nil
	}

	return p.fanOut(item, frame, pkt.PTS == nil)
}

// fanOut submits frame to the filter graph and delivers one *Buffer per
// branch to every sink in that branch's stack (§4.3 step e). The clock
// is advanced from the computed data size only when advanceClock is
// set — i.e. the source packet carried no PTS (§4.4 step f);
// audioDecodeFrame already applied a real PTS via SetClock otherwise.
func (p *Playlist) fanOut(item *PlaylistItem, frame signal.Floating, advanceClock bool) (int, error) {
	pos := item.File.Clock()
	buffers, err := p.graph.Process(frame, pos, item)
	if err != nil {
		return -1, ErrFilterGraph
	}

	maxSize := 0
	var clockAdjustment time.Duration
	for i, entry := range p.sinkMap.entries {
		buf := buffers[i]
		for _, s := range entry.sinks {
			if s.enqueue(buf) {
				buf.Ref()
			} else {
				p.log.Warn("sink enqueue failed", "sink_format", s.format)
			}
		}
		buf.Ref()
		buf.Unref()

		if buf.SizeBytes > maxSize {
			maxSize = buf.SizeBytes
			if example := entry.exampleSink(); example != nil && example.bytesPerSec > 0 {
				clockAdjustment = time.Duration(float64(maxSize) / float64(example.bytesPerSec) * float64(time.Second))
			}
		}
	}

	if advanceClock {
		item.File.AdvanceClock(clockAdjustment)
	}
	return maxSize, nil
}

// maybeRebuildGraph evaluates the rebuild trigger and, if tripped,
// tears down and reconstructs the filter graph (§4.3).
func (p *Playlist) maybeRebuildGraph(item *PlaylistItem) {
	branchFormats := p.sinkMap.formats()
	explicit := p.rebuildFlag
	if p.graph.NeedsRebuild(item.File.Format(), p.compositeVolume, explicit, branchFormats) {
		p.graph.Rebuild(item.File.Format(), p.compositeVolume, branchFormats)
		p.rebuildFlag = false
		p.log.Debug("filter graph rebuilt",
			"input_format", item.File.Format(),
			"volume", p.compositeVolume,
			"branches", len(branchFormats))
	}
}
