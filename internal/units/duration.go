// Package units defines the time and sample quantities the audio
// pipeline is written in terms of. Durations and timestamps count
// nanoseconds; sample indices and ranges count frames. Conversions
// between the two domains are always explicit and carry the sample
// duration they depend on.
package units

import "fmt"

// Duration is a span of time in nanoseconds.
type Duration uint64

const (
	nsPerMilli  = 1_000_000
	nsPerSecond = 1_000_000_000
)

// DurationFromSecs builds a Duration from whole seconds.
func DurationFromSecs(secs uint64) Duration {
	return Duration(secs * nsPerSecond)
}

// DurationFromMillis builds a Duration from whole milliseconds.
func DurationFromMillis(ms uint64) Duration {
	return Duration(ms * nsPerMilli)
}

// DurationFromFrequency returns the duration of one sample at the given
// rate in Hz.
func DurationFromFrequency(freq uint64) Duration {
	return Duration(nsPerSecond / freq)
}

// DurationPer1000Samples returns the duration of 1000 samples at the
// given rate, keeping sub-nanosecond precision that a per-sample
// duration would truncate away.
func DurationPer1000Samples(rate uint64) Duration {
	return Duration(1_000_000_000_000 / rate)
}

// Seconds converts to floating point seconds.
func (d Duration) Seconds() float64 {
	return float64(d) / nsPerSecond
}

// Mul scales the duration by an integer factor.
func (d Duration) Mul(n uint64) Duration {
	return Duration(uint64(d) * n)
}

// Div divides the duration by an integer factor.
func (d Duration) Div(n uint64) Duration {
	return Duration(uint64(d) / n)
}

// Ratio returns how many times o fits into d, truncating.
func (d Duration) Ratio(o Duration) uint64 {
	return uint64(d) / uint64(o)
}

func (d Duration) String() string {
	return fmt.Sprintf("%dns", uint64(d))
}
