package units

import "fmt"

// Timestamp is an absolute position on the media timeline in
// nanoseconds.
type Timestamp uint64

// Add advances the timestamp by a duration.
func (t Timestamp) Add(d Duration) Timestamp {
	return Timestamp(uint64(t) + uint64(d))
}

// Sub returns the span between two timestamps. The receiver must not be
// earlier than o; the difference saturates at zero otherwise.
func (t Timestamp) Sub(o Timestamp) Duration {
	if t < o {
		return 0
	}
	return Duration(uint64(t) - uint64(o))
}

// SaturatingSub moves the timestamp back by d, stopping at zero.
func (t Timestamp) SaturatingSub(d Duration) Timestamp {
	if uint64(t) < uint64(d) {
		return 0
	}
	return Timestamp(uint64(t) - uint64(d))
}

// SampleIndex converts the timestamp to a sample index given the
// duration of one sample, truncating toward zero.
func (t Timestamp) SampleIndex(sampleDur Duration) SampleIndex {
	return SampleIndex(uint64(t) / uint64(sampleDur))
}

// ForHumans renders the timestamp as h:mm:ss.mmm, omitting the hour
// field when zero.
func (t Timestamp) ForHumans() string {
	ms := uint64(t) / nsPerMilli
	s := ms / 1000
	m := s / 60
	h := m / 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m%60, s%60, ms%1000)
	}
	return fmt.Sprintf("%d:%02d.%03d", m, s%60, ms%1000)
}
