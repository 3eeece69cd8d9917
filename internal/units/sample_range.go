package units

// SampleIndexRange is a length on the sample timeline, in frames.
type SampleIndexRange uint64

// RangeFromDuration converts a time span to a frame count given the
// duration of one sample, truncating toward zero.
func RangeFromDuration(d Duration, sampleDur Duration) SampleIndexRange {
	return SampleIndexRange(uint64(d) / uint64(sampleDur))
}

// Duration converts the frame count back to a time span.
func (r SampleIndexRange) Duration(sampleDur Duration) Duration {
	return Duration(uint64(r) * uint64(sampleDur))
}

// Scale maps the range through the ratio num/denom, truncating. Useful
// for pixel<->sample conversions where denom is the pixel width.
func (r SampleIndexRange) Scale(num, denom uint64) SampleIndexRange {
	return SampleIndexRange(uint64(r) * num / denom)
}

// StepCount returns how many step-aligned points fit in the range,
// rounding up so a partial trailing step still yields a point.
func (r SampleIndexRange) StepCount(step SampleIndexRange) int {
	if step == 0 {
		return 0
	}
	return int((uint64(r) + uint64(step) - 1) / uint64(step))
}
