package audio

import (
	"sync"

	"github.com/linuxmatters/jivescope/internal/units"
)

// DoubleBuffer is the producer/consumer boundary around a RingBuffer.
// The producer pushes under the lock; the consumer takes owned
// snapshots under the lock and works on them outside it, so neither
// side ever holds the other up for more than a bounded copy.
type DoubleBuffer struct {
	mu  sync.Mutex
	buf RingBuffer
}

// NewDoubleBuffer returns an empty, uninitialized buffer.
func NewDoubleBuffer() *DoubleBuffer {
	return &DoubleBuffer{}
}

// Init sets the stream geometry and retention cap.
func (d *DoubleBuffer) Init(rate, channels int, retention units.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Init(rate, channels, retention)
}

// HaveSegment starts a new segment, invalidating retained samples.
func (d *DoubleBuffer) HaveSegment(first units.SampleIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.HaveSegment(first)
}

// Push appends an S16LE interleaved block declared to start at first.
func (d *DoubleBuffer) Push(data []byte, first units.SampleIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.Push(data, first)
}

// MarkEOS declares the stream complete.
func (d *DoubleBuffer) MarkEOS() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf.MarkEOS()
}

// Reset clears geometry and retained samples. Snapshots taken earlier
// stay valid; they own their data.
func (d *DoubleBuffer) Reset(retention units.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.buf.rate == 0 {
		return nil
	}
	return d.buf.Init(d.buf.rate, d.buf.channels, retention)
}

// Bounds returns the currently retained window [lower, upper).
func (d *DoubleBuffer) Bounds() (units.SampleIndex, units.SampleIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Bounds()
}

// EOS reports whether the producer has marked the stream complete.
func (d *DoubleBuffer) EOS() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.EOS()
}

// SampleDuration returns the duration of one frame, zero before Init.
func (d *DoubleBuffer) SampleDuration() units.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.SampleDuration()
}

// Channels returns the stream channel count, zero before Init.
func (d *DoubleBuffer) Channels() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Channels()
}

// Rate returns the stream sample rate in Hz, zero before Init.
func (d *DoubleBuffer) Rate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Rate()
}

// Discontinuities returns the resynchronization count since Init.
func (d *DoubleBuffer) Discontinuities() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Discontinuities()
}

// Snapshot copies the intersection of [lower, upper) with the retained
// window into an owned Snapshot, reporting the actual bounds obtained.
// Returns ErrNotYetAvailable when nothing has been pushed yet or the
// request lies entirely ahead of the retained window, and RangeError
// when it lies entirely behind (those samples are gone for good).
func (d *DoubleBuffer) Snapshot(lower, upper units.SampleIndex) (*Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	bufLower, bufUpper := d.buf.Bounds()
	if bufLower == bufUpper || lower >= bufUpper {
		return nil, ErrNotYetAvailable
	}
	if upper <= bufLower {
		return nil, &RangeError{Lower: lower, Upper: upper, BufLower: bufLower, BufUpper: bufUpper}
	}

	if lower < bufLower {
		lower = bufLower
	}
	if upper > bufUpper {
		upper = bufUpper
	}

	channels := d.buf.Channels()
	first := uint64(lower.Sub(bufLower)) * uint64(channels)
	last := uint64(upper.Sub(bufLower)) * uint64(channels)
	samples := make([]units.SampleValue, last-first)
	copy(samples, d.buf.samples[first:last])

	return &Snapshot{
		Lower:        lower,
		Upper:        upper,
		Channels:     channels,
		SampleDur:    d.buf.SampleDuration(),
		EOS:          d.buf.EOS(),
		SegmentLower: d.buf.SegmentLower(),
		samples:      samples,
	}, nil
}

// Snapshot is a self-consistent copy of a slice of the retained
// window. It owns its samples; later pushes and drains cannot touch it.
type Snapshot struct {
	Lower        units.SampleIndex
	Upper        units.SampleIndex
	Channels     int
	SampleDur    units.Duration
	EOS          bool
	SegmentLower units.SampleIndex

	samples []units.SampleValue
}

// Read returns an iterator over one channel of [lower, upper) inside
// the snapshot, visiting every step-th frame.
func (s *Snapshot) Read(lower, upper units.SampleIndex, channel int, step units.SampleIndexRange) (*SampleIter, error) {
	if lower < s.Lower || upper > s.Upper || lower > upper ||
		channel < 0 || channel >= s.Channels {
		return nil, &RangeError{Lower: lower, Upper: upper, BufLower: s.Lower, BufUpper: s.Upper}
	}
	if step == 0 {
		step = 1
	}

	start := uint64(lower.Sub(s.Lower))*uint64(s.Channels) + uint64(channel)
	end := uint64(upper.Sub(s.Lower)) * uint64(s.Channels)
	return &SampleIter{
		samples: s.samples,
		start:   int(start),
		end:     int(end),
		stride:  int(uint64(step) * uint64(s.Channels)),
	}, nil
}
