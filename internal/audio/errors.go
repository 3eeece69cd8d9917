package audio

import (
	"errors"
	"fmt"

	"github.com/linuxmatters/jivescope/internal/units"
)

// ErrNotYetAvailable reports that the requested window lies entirely
// ahead of what the producer has pushed so far. Callers should retry
// on a later tick.
var ErrNotYetAvailable = errors.New("samples not yet available")

// ConfigError reports an invalid stream geometry passed to Init.
type ConfigError struct {
	Rate     int
	Channels int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid stream config: rate %d Hz, %d channels", e.Rate, e.Channels)
}

// RangeError reports a read request outside the retained window. It
// carries both the offending request and the actual buffer bounds.
type RangeError struct {
	Lower    units.SampleIndex
	Upper    units.SampleIndex
	BufLower units.SampleIndex
	BufUpper units.SampleIndex
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sample range [%d, %d) outside buffer [%d, %d)",
		e.Lower, e.Upper, e.BufLower, e.BufUpper)
}
