package waveform

import (
	"fmt"
	"math"

	"github.com/argusdusty/gofft"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/units"
)

// SpectrumExtractor extracts frequency-magnitude series under the same
// window contract as WaveExtractor: the window is step-aligned and
// clamped, the channels are mixed to mono, and the FFT magnitudes are
// binned back to one value per step so the renderer can draw either
// series the same way.
type SpectrumExtractor struct {
	prev   *Series
	forced bool
}

// NewSpectrumExtractor returns an extractor with no cached series.
func NewSpectrumExtractor() *SpectrumExtractor {
	return &SpectrumExtractor{}
}

// Force makes the next Extract bypass the reuse check.
func (e *SpectrumExtractor) Force() {
	e.forced = true
}

// Reset drops the cached series.
func (e *SpectrumExtractor) Reset() {
	e.prev = nil
	e.forced = false
}

// Extract computes Hann-windowed FFT magnitudes over the aligned
// window, mixed to mono, scaled into [0, 1] with log compression.
func (e *SpectrumExtractor) Extract(snap *audio.Snapshot, reqLower, reqUpper units.SampleIndex, step units.SampleIndexRange) (*Series, bool, error) {
	if step == 0 {
		step = 1
	}

	lower := reqLower.SnapDown(step)
	if lower < snap.Lower {
		lower = snap.Lower.SnapDown(step)
		if lower < snap.Lower {
			lower = lower.Add(step)
		}
	}

	upper := reqUpper.SnapDown(step)
	if snap.EOS {
		upper = snap.Upper.SnapDown(step)
	}
	if held := snap.Upper.SnapDown(step); upper > held {
		upper = held
	}

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

	// Mix the step-sampled window to mono.
	mono := make([]float64, 0, points)
	iters := make([]*audio.SampleIter, snap.Channels)
	for c := range iters {
		it, err := snap.Read(lower, upper, c, step)
		if err != nil {
			return nil, false, err
		}
		iters[c] = it
	}
	for {
		var sum float64
		ok := false
		for _, it := range iters {
			v, more := it.Next()
			if !more {
				break
			}
			ok = true
			sum += v.Norm()
		}
		if !ok {
			break
		}
		mono = append(mono, sum/float64(snap.Channels))
	}

	magnitudes, err := fftMagnitudes(mono)
	if err != nil {
		return nil, false, err
	}

	e.prev = &Series{
		Lower:    lower,
		Upper:    upper,
		Step:     step,
		Channels: [][]float64{binMagnitudes(magnitudes, points)},
		EOS:      snap.EOS,
	}
	return e.prev, true, nil
}

// fftMagnitudes runs a Hann-windowed FFT over the samples, zero-padded
// to a power of two, and returns the magnitudes of the lower half of
// the spectrum.
func fftMagnitudes(samples []float64) ([]float64, error) {
	// Pad at least to the configured transform length so short windows
	// keep the same bin resolution as long ones.
	n := nextPow2(len(samples))
	if n < config.SpectrumFFTSize {
		n = config.SpectrumFFTSize
	}

	windowed := make([]float64, n)
	for i, v := range samples {
		// Hann window tapers the edges so the finite window does not
		// smear energy across bins.
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(len(samples))))
		windowed[i] = v * w
	}

	data := gofft.Float64ToComplex128Array(windowed)
	if err := gofft.Prepare(len(data)); err != nil {
		return nil, fmt.Errorf("failed to prepare FFT: %w", err)
	}
	if err := gofft.FFT(data); err != nil {
		return nil, fmt.Errorf("failed to run FFT: %w", err)
	}

	magnitudes := make([]float64, n/2)
	for i := range magnitudes {
		magnitudes[i] = cmplxAbs(data[i]) / float64(n)
	}
	return magnitudes, nil
}

// binMagnitudes folds the magnitude array into points bins, taking the
// peak per bin, and compresses with log10(1 + 9x) so quiet content
// stays visible.
func binMagnitudes(magnitudes []float64, points int) []float64 {
	out := make([]float64, points)
	if len(magnitudes) == 0 || points == 0 {
		return out
	}

	for i := 0; i < points; i++ {
		from := i * len(magnitudes) / points
		to := (i + 1) * len(magnitudes) / points
		if to <= from {
			to = from + 1
		}
		peak := 0.0
		for j := from; j < to && j < len(magnitudes); j++ {
			if magnitudes[j] > peak {
				peak = magnitudes[j]
			}
		}
		out[i] = math.Log10(1 + 9*math.Min(peak*8, 1))
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
