package playlist

import "pipelined.dev/signal"

// SampleFormat names the sample representation a branch of the filter
// graph is converted to, mirroring the asset sink dispatch the teacher
// used to pick between signal.Signed/Unsigned/Floating.
type SampleFormat int

const (
	// SampleFormatS16 is 16-bit signed integer PCM.
	SampleFormatS16 SampleFormat = iota
	// SampleFormatS32 is 32-bit signed integer PCM.
	SampleFormatS32
	// SampleFormatF32 is 32-bit IEEE float PCM.
	SampleFormatF32
	// SampleFormatF64 is 64-bit IEEE float PCM.
	SampleFormatF64
)

// BytesPerSample returns the on-wire size of one sample in this format.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleFormatS16:
		return 2
	case SampleFormatS32, SampleFormatF32:
		return 4
	case SampleFormatF64:
		return 8
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case SampleFormatS16:
		return "s16"
	case SampleFormatS32:
		return "s32"
	case SampleFormatF32:
		return "flt"
	case SampleFormatF64:
		return "dbl"
	default:
		return "unknown"
	}
}

// ChannelLayout is a bitmask of channel positions, component-wise equal
// to any other layout with the same bits set (§3).
type ChannelLayout uint32

const (
	ChannelFrontLeft ChannelLayout = 1 << iota
	ChannelFrontRight
	ChannelFrontCenter
	ChannelLFE
	ChannelBackLeft
	ChannelBackRight
)

// ChannelMono is the single-channel layout.
const ChannelMono = ChannelFrontCenter

// ChannelStereo is the standard two-channel layout.
const ChannelStereo = ChannelFrontLeft | ChannelFrontRight

// Count returns the number of channels encoded in the layout.
func (l ChannelLayout) Count() int {
	n := 0
	for l != 0 {
		n += int(l & 1)
		l >>= 1
	}
	return n
}

// AudioFormat is the triple (sample_rate, channel_layout, sample_fmt).
// Equality is component-wise (§3).
type AudioFormat struct {
	SampleRate signal.Frequency
	Layout     ChannelLayout
	SampleFmt  SampleFormat
}

// Channels returns the channel count implied by the layout.
func (f AudioFormat) Channels() int {
	return f.Layout.Count()
}

// Equal reports whether f and other describe the same format.
func (f AudioFormat) Equal(other AudioFormat) bool {
	return f.SampleRate == other.SampleRate &&
		f.Layout == other.Layout &&
		f.SampleFmt == other.SampleFmt
}

// BytesPerSecond is the derived byte rate used for the decoder's
// clock-adjustment math (§4.4).
func (f AudioFormat) BytesPerSecond() int {
	return f.Channels() * int(f.SampleRate) * f.SampleFmt.BytesPerSample()
}
