package waveform

import (
	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/units"
)

// WaveExtractor extracts step-aligned amplitude series from snapshots.
// It keeps the previous series and skips re-extraction while the
// request stays inside it, which stops the trace flickering when the
// window creeps forward by less than a step.
type WaveExtractor struct {
	prev   *Series
	forced bool
}

// NewWaveExtractor returns an extractor with no cached series.
func NewWaveExtractor() *WaveExtractor {
	return &WaveExtractor{}
}

// Force makes the next Extract bypass the reuse check.
func (e *WaveExtractor) Force() {
	e.forced = true
}

// Reset drops the cached series.
func (e *WaveExtractor) Reset() {
	e.prev = nil
	e.forced = false
}

// Extract aligns the requested window to the step grid, clamps it to
// the snapshot, and reads one normalized value per step per channel.
// The reported bool is false when the previous series already covers
// the aligned request and was reused instead.
func (e *WaveExtractor) Extract(snap *audio.Snapshot, reqLower, reqUpper units.SampleIndex, step units.SampleIndexRange) (*Series, bool, error) {
	if step == 0 {
		step = 1
	}

	// Align down to the step grid, then bump one step up if that fell
	// below what the snapshot holds.
	lower := reqLower.SnapDown(step)
	if lower < snap.Lower {
		lower = snap.Lower.SnapDown(step)
		if lower < snap.Lower {
			lower = lower.Add(step)
		}
	}

	// At EOS the stream end is final: extract everything up to the
	// actual upper bound instead of the request.
	upper := reqUpper.SnapDown(step)
	if snap.EOS {
		upper = snap.Upper.SnapDown(step)
	}
	if held := snap.Upper.SnapDown(step); upper > held {
		upper = held
	}

	// Not even one full step to extract.
	if upper < lower.Add(step) {
		if e.prev != nil {
			return e.prev, false, nil
		}
		return nil, false, audio.ErrNotYetAvailable
	}

	if !e.forced && e.prev != nil && e.prev.Step == step &&
		!(snap.EOS && !e.prev.EOS) && e.prev.Contains(lower, upper) {
		return e.prev, false, nil
	}
	e.forced = false

	points := upper.Sub(lower).StepCount(step)
	channels := make([][]float64, snap.Channels)
	for c := range channels {
		it, err := snap.Read(lower, upper, c, step)
		if err != nil {
			return nil, false, err
		}
		values := make([]float64, 0, points)
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			values = append(values, v.Norm())
		}
		channels[c] = values
	}

	e.prev = &Series{
		Lower:    lower,
		Upper:    upper,
		Step:     step,
		Channels: channels,
		EOS:      snap.EOS,
	}
	return e.prev, true, nil
}
