package units

import (
	"errors"
	"testing"
)

func TestDurationFromFrequency(t *testing.T) {
	testCases := []struct {
		name string
		freq uint64
		want Duration
	}{
		{name: "48kHz", freq: 48000, want: 20833},
		{name: "44.1kHz", freq: 44100, want: 22675},
		{name: "1MHz", freq: 1_000_000, want: 1000},
		{name: "1Hz", freq: 1, want: 1_000_000_000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DurationFromFrequency(tc.freq); got != tc.want {
				t.Errorf("DurationFromFrequency(%d) = %d, want %d", tc.freq, got, tc.want)
			}
		})
	}
}

func TestDurationPer1000Samples(t *testing.T) {
	// At 48 kHz, 1000 samples span 20,833,333 ns. The per-sample value
	// truncates to 20,833 ns, so the x1000 form keeps three more digits.
	got := DurationPer1000Samples(48000)
	if got != 20_833_333 {
		t.Errorf("DurationPer1000Samples(48000) = %d, want 20833333", got)
	}
}

func TestDurationRatio(t *testing.T) {
	d := DurationFromSecs(5)
	if got := d.Ratio(DurationFromMillis(500)); got != 10 {
		t.Errorf("Ratio = %d, want 10", got)
	}
	if got := DurationFromMillis(999).Ratio(DurationFromSecs(1)); got != 0 {
		t.Errorf("Ratio below one = %d, want 0", got)
	}
}

func TestTimestampSubSaturates(t *testing.T) {
	a := Timestamp(1000)
	b := Timestamp(3000)

	if got := b.Sub(a); got != Duration(2000) {
		t.Errorf("Sub = %d, want 2000", got)
	}
	if got := a.Sub(b); got != 0 {
		t.Errorf("Sub past zero = %d, want 0", got)
	}
	if got := a.SaturatingSub(Duration(5000)); got != 0 {
		t.Errorf("SaturatingSub = %d, want 0", got)
	}
}

func TestTimestampForHumans(t *testing.T) {
	testCases := []struct {
		name string
		ts   Timestamp
		want string
	}{
		{name: "zero", ts: 0, want: "0:00.000"},
		{name: "millis", ts: Timestamp(DurationFromMillis(1234)), want: "0:01.234"},
		{name: "minutes", ts: Timestamp(DurationFromSecs(754)), want: "12:34.000"},
		{name: "hours", ts: Timestamp(DurationFromSecs(3600 + 92)), want: "1:01:32.000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ts.ForHumans(); got != tc.want {
				t.Errorf("ForHumans() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSampleIndexRoundTrip(t *testing.T) {
	// Conversions through a timestamp land on the containing sample.
	sampleDur := DurationFromFrequency(48000)

	for _, idx := range []SampleIndex{0, 1, 47999, 48000, 123456} {
		ts := idx.Timestamp(sampleDur)
		back := SampleIndexFromTS(ts, sampleDur)
		if back != idx {
			t.Errorf("round trip of %d through %d ns = %d", idx, ts, back)
		}

		// A timestamp strictly inside the sample maps back to the same
		// index.
		inside := ts.Add(sampleDur - 1)
		if got := SampleIndexFromTS(inside, sampleDur); got != idx {
			t.Errorf("mid-sample timestamp %d maps to %d, want %d", inside, got, idx)
		}
	}
}

func TestSampleIndexSnapDown(t *testing.T) {
	testCases := []struct {
		idx  SampleIndex
		step SampleIndexRange
		want SampleIndex
	}{
		{idx: 950, step: 100, want: 900},
		{idx: 1000, step: 100, want: 1000},
		{idx: 2050, step: 100, want: 2000},
		{idx: 7, step: 1, want: 7},
		{idx: 0, step: 64, want: 0},
	}

	for _, tc := range testCases {
		if got := tc.idx.SnapDown(tc.step); got != tc.want {
			t.Errorf("SnapDown(%d, %d) = %d, want %d", tc.idx, tc.step, got, tc.want)
		}
	}
}

func TestSampleIndexTryDec(t *testing.T) {
	if got, err := SampleIndex(5).TryDec(); err != nil || got != 4 {
		t.Errorf("TryDec(5) = %d, %v, want 4, nil", got, err)
	}

	_, err := SampleIndex(0).TryDec()
	if !errors.Is(err, ErrIndexUnderflow) {
		t.Errorf("TryDec(0) error = %v, want ErrIndexUnderflow", err)
	}
}

func TestSampleIndexCheckedSub(t *testing.T) {
	if r, ok := SampleIndex(100).CheckedSub(30); !ok || r != 70 {
		t.Errorf("CheckedSub(100, 30) = %d, %v, want 70, true", r, ok)
	}
	if _, ok := SampleIndex(30).CheckedSub(100); ok {
		t.Error("CheckedSub(30, 100) reported ok, want failure")
	}
	if got := SampleIndex(30).SaturatingSub(100); got != 0 {
		t.Errorf("SaturatingSub(30, 100) = %d, want 0", got)
	}
}

func TestSampleIndexRangeScale(t *testing.T) {
	// 1000 samples across 250 pixels is 4 samples per pixel; pixel 37
	// lands on sample 148.
	r := SampleIndexRange(1000)
	if got := r.Scale(37, 250); got != 148 {
		t.Errorf("Scale(37/250) = %d, want 148", got)
	}
}

func TestSampleIndexRangeStepCount(t *testing.T) {
	testCases := []struct {
		r    SampleIndexRange
		step SampleIndexRange
		want int
	}{
		{r: 1000, step: 100, want: 10},
		{r: 1001, step: 100, want: 11},
		{r: 99, step: 100, want: 1},
		{r: 0, step: 100, want: 0},
		{r: 100, step: 0, want: 0},
	}

	for _, tc := range testCases {
		if got := tc.r.StepCount(tc.step); got != tc.want {
			t.Errorf("StepCount(%d, %d) = %d, want %d", tc.r, tc.step, got, tc.want)
		}
	}
}

func TestSampleValueNorm(t *testing.T) {
	testCases := []struct {
		v    SampleValue
		want float64
	}{
		{v: 0, want: 0},
		{v: 16384, want: 0.5},
		{v: -32768, want: -1},
		{v: -16384, want: -0.5},
	}

	for _, tc := range testCases {
		if got := tc.v.Norm(); got != tc.want {
			t.Errorf("Norm(%d) = %v, want %v", tc.v, got, tc.want)
		}
	}
}
