package waveform

import (
	"testing"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/units"
)

// snapshotWith builds a snapshot holding frames [first, first+n) of a
// mono 48 kHz stream, where frame f holds the value f (mod int16).
func snapshotWith(t *testing.T, first, n int, eos bool) *audio.Snapshot {
	return snapshotAtRate(t, 48000, first, n, eos)
}

func snapshotAtRate(t *testing.T, rate, first, n int, eos bool) *audio.Snapshot {
	t.Helper()

	buf := audio.NewDoubleBuffer()
	if err := buf.Init(rate, 1, units.DurationFromSecs(60)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	buf.HaveSegment(units.SampleIndex(first))

	data := make([]byte, 0, n*2)
	for f := first; f < first+n; f++ {
		v := int16(f)
		data = append(data, byte(v), byte(v>>8))
	}
	buf.Push(data, units.SampleIndex(first))
	if eos {
		buf.MarkEOS()
	}

	snap, err := buf.Snapshot(units.SampleIndex(first), units.SampleIndex(first+n))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return snap
}

func TestWaveExtractorAlignsToStepGrid(t *testing.T) {
	// Buffer holds [1000, 3000); requesting [950, 2050) at step 100
	// snaps the lower bound up into the buffer and the upper bound
	// down to the grid.
	snap := snapshotWith(t, 1000, 2000, false)
	e := NewWaveExtractor()

	series, fresh, err := e.Extract(snap, 950, 2050, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Error("first Extract reported reuse")
	}
	if series.Lower != 1000 || series.Upper != 2000 {
		t.Errorf("series window = [%d, %d), want [1000, 2000)", series.Lower, series.Upper)
	}
	if got := series.PointCount(); got != 10 {
		t.Errorf("PointCount() = %d, want 10", got)
	}

	// Values are the normalized frames at each grid point.
	for i, v := range series.Channels[0] {
		want := units.SampleValue(1000 + i*100).Norm()
		if v != want {
			t.Errorf("value %d = %v, want %v", i, v, want)
		}
	}
}

func TestWaveExtractorBumpsLowerAboveSnapshot(t *testing.T) {
	// Snapshot starts at 1050, off the step grid: the aligned 1000 is
	// unavailable, so extraction starts one step up at 1100.
	snap := snapshotWith(t, 1050, 1000, false)
	e := NewWaveExtractor()

	series, _, err := e.Extract(snap, 1000, 2000, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if series.Lower != 1100 {
		t.Errorf("series lower = %d, want 1100", series.Lower)
	}
}

func TestWaveExtractorReusesContainedWindow(t *testing.T) {
	snap := snapshotWith(t, 0, 4000, false)
	e := NewWaveExtractor()

	first, fresh, err := e.Extract(snap, 0, 3000, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Fatal("first Extract reported reuse")
	}

	// A narrower window inside the previous one reuses it.
	second, fresh, err := e.Extract(snap, 500, 2500, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fresh {
		t.Error("contained request re-extracted")
	}
	if second != first {
		t.Error("contained request returned a different series")
	}

	// Growth past the previous upper bound forces a fresh extraction.
	third, fresh, err := e.Extract(snap, 500, 3500, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Error("grown request reused the stale series")
	}
	if third.Upper != 3500 {
		t.Errorf("grown series upper = %d, want 3500", third.Upper)
	}
}

func TestWaveExtractorStepChangeInvalidatesCache(t *testing.T) {
	snap := snapshotWith(t, 0, 4000, false)
	e := NewWaveExtractor()

	if _, _, err := e.Extract(snap, 0, 3000, 100); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	series, fresh, err := e.Extract(snap, 0, 3000, 50)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Error("step change reused the old series")
	}
	if series.Step != 50 {
		t.Errorf("series step = %d, want 50", series.Step)
	}
}

func TestWaveExtractorEOSForcesActualUpper(t *testing.T) {
	e := NewWaveExtractor()

	// Before EOS: a request past the data clamps to what is held.
	snap := snapshotWith(t, 0, 2050, false)
	series, _, err := e.Extract(snap, 0, 4000, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if series.Upper != 2000 {
		t.Errorf("pre-EOS upper = %d, want 2000", series.Upper)
	}

	// At EOS the same request must re-extract even though the aligned
	// window is contained in the previous one: the end is now final.
	snapEOS := snapshotWith(t, 0, 2050, true)
	series, fresh, err := e.Extract(snapEOS, 0, 4000, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Error("first EOS extraction reused the pre-EOS series")
	}
	if series.Upper != 2000 {
		t.Errorf("EOS upper = %d, want 2000", series.Upper)
	}
	if !series.EOS {
		t.Error("series EOS = false")
	}
}

func TestWaveExtractorWindowBelowOneStep(t *testing.T) {
	snap := snapshotWith(t, 0, 50, false)
	e := NewWaveExtractor()

	if _, _, err := e.Extract(snap, 0, 50, 100); err == nil {
		t.Error("sub-step window with no cache succeeded, want error")
	}
}

func TestWaveExtractorForce(t *testing.T) {
	snap := snapshotWith(t, 0, 4000, false)
	e := NewWaveExtractor()

	if _, _, err := e.Extract(snap, 0, 3000, 100); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	e.Force()
	_, fresh, err := e.Extract(snap, 500, 2500, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Error("forced Extract reused the cache")
	}
}

func TestSpectrumExtractorWindowContract(t *testing.T) {
	snap := snapshotWith(t, 1000, 2000, false)
	e := NewSpectrumExtractor()

	series, fresh, err := e.Extract(snap, 950, 2050, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !fresh {
		t.Error("first Extract reported reuse")
	}
	if series.Lower != 1000 || series.Upper != 2000 {
		t.Errorf("series window = [%d, %d), want [1000, 2000)", series.Lower, series.Upper)
	}
	if got := series.PointCount(); got != 10 {
		t.Errorf("PointCount() = %d, want 10", got)
	}
	if len(series.Channels) != 1 {
		t.Fatalf("spectrum channels = %d, want 1 (mono mix)", len(series.Channels))
	}
	for i, v := range series.Channels[0] {
		if v < 0 || v > 1 {
			t.Errorf("magnitude %d = %v, want within [0, 1]", i, v)
		}
	}

	// The sticky reuse rule applies to spectra too.
	_, fresh, err = e.Extract(snap, 1100, 1900, 100)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fresh {
		t.Error("contained request re-extracted")
	}
}
