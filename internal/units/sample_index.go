package units

import "errors"

// ErrIndexUnderflow reports an attempt to decrement a sample index that
// is already zero.
var ErrIndexUnderflow = errors.New("sample index underflow")

// SampleIndex identifies a frame position on the sample timeline.
type SampleIndex uint64

// SampleIndexFromTS converts a timestamp to a sample index given the
// duration of one sample, truncating toward zero.
func SampleIndexFromTS(ts Timestamp, sampleDur Duration) SampleIndex {
	return ts.SampleIndex(sampleDur)
}

// Timestamp converts the index back to a timeline position.
func (i SampleIndex) Timestamp(sampleDur Duration) Timestamp {
	return Timestamp(uint64(i) * uint64(sampleDur))
}

// SnapDown aligns the index to the largest multiple of step that does
// not exceed it.
func (i SampleIndex) SnapDown(step SampleIndexRange) SampleIndex {
	return SampleIndex(uint64(i) / uint64(step) * uint64(step))
}

// Inc advances the index by one frame.
func (i SampleIndex) Inc() SampleIndex {
	return i + 1
}

// TryDec steps the index back by one frame, failing explicitly at zero.
func (i SampleIndex) TryDec() (SampleIndex, error) {
	if i == 0 {
		return 0, ErrIndexUnderflow
	}
	return i - 1, nil
}

// Add advances the index by a range.
func (i SampleIndex) Add(r SampleIndexRange) SampleIndex {
	return SampleIndex(uint64(i) + uint64(r))
}

// Sub returns the range between two indices. The receiver must not be
// lower than o.
func (i SampleIndex) Sub(o SampleIndex) SampleIndexRange {
	return SampleIndexRange(uint64(i) - uint64(o))
}

// CheckedSub returns the range between two indices, reporting whether
// the receiver was at least o.
func (i SampleIndex) CheckedSub(o SampleIndex) (SampleIndexRange, bool) {
	if i < o {
		return 0, false
	}
	return SampleIndexRange(uint64(i) - uint64(o)), true
}

// SaturatingSub moves the index back by a range, stopping at zero.
func (i SampleIndex) SaturatingSub(r SampleIndexRange) SampleIndex {
	if uint64(i) < uint64(r) {
		return 0
	}
	return SampleIndex(uint64(i) - uint64(r))
}
