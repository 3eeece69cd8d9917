package audio

import (
	"log/slog"

	"github.com/linuxmatters/jivescope/internal/units"
)

// RingBuffer holds a bounded window of decoded interleaved samples.
// The producer pushes S16LE blocks in timeline order; once the window
// exceeds the retention duration, the oldest samples are drained from
// the front. Indices are absolute frame positions on the stream
// timeline, so lower/upper keep advancing as the stream plays.
//
// Not safe for concurrent use; DoubleBuffer adds the lock.
type RingBuffer struct {
	rate      int
	channels  int
	sampleDur units.Duration
	maxFrames units.SampleIndexRange

	// samples is interleaved: frame i channel c lives at i*channels+c,
	// with frame 0 of the slice at absolute index lower.
	samples []units.SampleValue

	segmentLower units.SampleIndex
	lower        units.SampleIndex
	upper        units.SampleIndex

	eos             bool
	discontinuities uint64
}

// Init sets the stream geometry and the retention cap, clearing all
// retained state. Returns ConfigError when rate or channels is zero.
func (b *RingBuffer) Init(rate, channels int, retention units.Duration) error {
	if rate <= 0 || channels <= 0 {
		return &ConfigError{Rate: rate, Channels: channels}
	}

	b.rate = rate
	b.channels = channels
	b.sampleDur = units.DurationFromFrequency(uint64(rate))
	b.maxFrames = units.RangeFromDuration(retention, b.sampleDur)
	b.samples = b.samples[:0]
	b.segmentLower = 0
	b.lower = 0
	b.upper = 0
	b.eos = false
	return nil
}

// HaveSegment starts a new segment at the given timeline position,
// discarding retained samples. Called before the first push and after
// every seek.
func (b *RingBuffer) HaveSegment(first units.SampleIndex) {
	b.samples = b.samples[:0]
	b.segmentLower = first
	b.lower = first
	b.upper = first
	b.eos = false
	slog.Debug("segment start", "first", uint64(first))
}

// Push appends an S16LE interleaved block whose first frame the
// producer declares to sit at first. A block that does not land
// exactly at the current upper bound resynchronizes the buffer to the
// declared position; the gap or overlap is logged and counted, never
// treated as an error. Pushes after EOS are ignored until the next
// HaveSegment.
func (b *RingBuffer) Push(data []byte, first units.SampleIndex) {
	if b.eos {
		return
	}

	frames := len(data) / (2 * b.channels)
	if frames == 0 {
		return
	}

	if len(b.samples) > 0 && first != b.upper {
		slog.Warn("discontinuity, resynchronizing",
			"declared", uint64(first), "expected", uint64(b.upper))
		b.discontinuities++
		b.samples = b.samples[:0]
		b.lower = first
		b.upper = first
	} else if len(b.samples) == 0 {
		b.lower = first
		b.upper = first
	}

	for i := 0; i < frames*b.channels; i++ {
		v := units.SampleValue(int16(data[i*2]) | int16(data[i*2+1])<<8)
		b.samples = append(b.samples, v)
	}
	b.upper = b.upper.Add(units.SampleIndexRange(frames))

	b.drain()
}

// drain trims the front so the retained window never exceeds the
// retention cap.
func (b *RingBuffer) drain() {
	held := b.upper.Sub(b.lower)
	if held <= b.maxFrames {
		return
	}

	excess := uint64(held - b.maxFrames)
	copy(b.samples, b.samples[excess*uint64(b.channels):])
	b.samples = b.samples[:len(b.samples)-int(excess)*b.channels]
	b.lower = b.lower.Add(units.SampleIndexRange(excess))
	slog.Debug("drained", "frames", excess, "lower", uint64(b.lower))
}

// MarkEOS declares the stream complete; the retained upper bound is
// final until the next HaveSegment.
func (b *RingBuffer) MarkEOS() {
	b.eos = true
	slog.Debug("eos", "upper", uint64(b.upper))
}

// Bounds returns the retained window [lower, upper).
func (b *RingBuffer) Bounds() (units.SampleIndex, units.SampleIndex) {
	return b.lower, b.upper
}

// SegmentLower returns the first index of the current segment.
func (b *RingBuffer) SegmentLower() units.SampleIndex {
	return b.segmentLower
}

// EOS reports whether the stream end has been marked.
func (b *RingBuffer) EOS() bool {
	return b.eos
}

// SampleDuration returns the duration of one frame.
func (b *RingBuffer) SampleDuration() units.Duration {
	return b.sampleDur
}

// Channels returns the stream channel count.
func (b *RingBuffer) Channels() int {
	return b.channels
}

// Rate returns the stream sample rate in Hz.
func (b *RingBuffer) Rate() int {
	return b.rate
}

// Discontinuities returns how many resynchronizations Push has
// performed since Init.
func (b *RingBuffer) Discontinuities() uint64 {
	return b.discontinuities
}

// Read returns a restartable iterator over one channel of [lower,
// upper), visiting every step-th frame. The range must sit inside the
// retained window and the channel must exist; RangeError otherwise.
func (b *RingBuffer) Read(lower, upper units.SampleIndex, channel int, step units.SampleIndexRange) (*SampleIter, error) {
	if lower < b.lower || upper > b.upper || lower > upper ||
		channel < 0 || channel >= b.channels {
		return nil, &RangeError{Lower: lower, Upper: upper, BufLower: b.lower, BufUpper: b.upper}
	}
	if step == 0 {
		step = 1
	}

	start := uint64(lower.Sub(b.lower)) * uint64(b.channels) + uint64(channel)
	end := uint64(upper.Sub(b.lower)) * uint64(b.channels)
	return &SampleIter{
		samples: b.samples,
		start:   int(start),
		end:     int(end),
		stride:  int(uint64(step) * uint64(b.channels)),
	}, nil
}

// SampleIter walks one channel of a sample range at a fixed stride.
// It is lazy: values are looked up as Next is called, and Restart
// rewinds to the first frame.
type SampleIter struct {
	samples []units.SampleValue
	start   int
	end     int
	stride  int
	pos     int
	started bool
}

// Next returns the next sample, or false when the range is exhausted.
func (it *SampleIter) Next() (units.SampleValue, bool) {
	if !it.started {
		it.pos = it.start
		it.started = true
	} else {
		it.pos += it.stride
	}
	if it.pos >= it.end {
		return 0, false
	}
	return it.samples[it.pos], true
}

// Restart rewinds the iterator to the first frame of its range.
func (it *SampleIter) Restart() {
	it.started = false
}

// Remaining returns how many values Next will still yield.
func (it *SampleIter) Remaining() int {
	pos := it.start
	if it.started {
		pos = it.pos + it.stride
	}
	if pos >= it.end {
		return 0
	}
	return (it.end - pos + it.stride - 1) / it.stride
}
