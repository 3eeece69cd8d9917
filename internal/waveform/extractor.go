// Package waveform turns buffered audio snapshots into rendered
// traces: window extraction, state-machine driven rendering, and
// double-buffered image publication.
package waveform

import (
	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/units"
)

// Series is one extracted window: per-channel normalized values, one
// value per step, covering [Lower, Upper).
type Series struct {
	Lower    units.SampleIndex
	Upper    units.SampleIndex
	Step     units.SampleIndexRange
	Channels [][]float64
	EOS      bool
}

// PointCount returns how many values each channel holds.
func (s *Series) PointCount() int {
	if len(s.Channels) == 0 {
		return 0
	}
	return len(s.Channels[0])
}

// Contains reports whether [lower, upper) already lies inside the
// series window.
func (s *Series) Contains(lower, upper units.SampleIndex) bool {
	return lower >= s.Lower && upper <= s.Upper
}

// Extractor converts a snapshot window into a drawable series. The
// second return value reports whether a new extraction actually
// happened; false means the previous series still covers the request
// and the caller can reuse its last drawing.
type Extractor interface {
	Extract(snap *audio.Snapshot, lower, upper units.SampleIndex, step units.SampleIndexRange) (*Series, bool, error)

	// Force makes the next Extract bypass the reuse check.
	Force()

	// Reset drops all cached state, e.g. on a new segment.
	Reset()
}
