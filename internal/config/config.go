package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Buffering settings
const (
	// RetentionSeconds is how much decoded audio the ring buffer keeps,
	// independent of total stream length. Older samples are drained.
	RetentionSeconds = 5

	// BlockFrames is the number of frames the producer pushes per call.
	BlockFrames = 4096

	// MaxChannels caps how many channels a trace renders.
	MaxChannels = 8
)

// Trace settings
const (
	TraceWidth  = 1000
	TraceHeight = 320

	// DefaultVisibleSeconds is the initial zoom level: how much of the
	// timeline fits across the trace width.
	DefaultVisibleSeconds = 2.0

	// MinVisibleMillis and MaxVisibleSeconds bound the zoom range.
	MinVisibleMillis  = 50
	MaxVisibleSeconds = 30
)

// Playback settings
const (
	// TickInterval is the consumer redraw period (~30 fps).
	TickInterval = 33 * time.Millisecond

	// SeekStep is how far the arrow keys jump.
	SeekStep = 5 * time.Second
)

// Appearance - trace colors (RGB values)
const (
	// Background: dark slate
	BackgroundR = 51
	BackgroundG = 57
	BackgroundB = 59

	// Center axis: dim olive
	AxisR = 128
	AxisG = 128
	AxisB = 0

	// Playback cursor: brand yellow #F8B31D
	CursorR = 248
	CursorG = 179
	CursorB = 29
)

// Spectrum settings
const (
	// SpectrumFFTSize is the transform length for spectrum extraction.
	// Must be a power of two.
	SpectrumFFTSize = 2048
)

// Overrides holds optional runtime appearance overrides from the CLI.
// Nil/empty fields fall back to the compile-time defaults above.
type Overrides struct {
	BackgroundR *uint8
	BackgroundG *uint8
	BackgroundB *uint8

	CursorR *uint8
	CursorG *uint8
	CursorB *uint8

	FontPath string
}

// GetBackground returns the background color, using defaults when any
// component is unset.
func (o *Overrides) GetBackground() (uint8, uint8, uint8) {
	if o != nil && o.BackgroundR != nil && o.BackgroundG != nil && o.BackgroundB != nil {
		return *o.BackgroundR, *o.BackgroundG, *o.BackgroundB
	}
	return BackgroundR, BackgroundG, BackgroundB
}

// GetCursor returns the cursor color, using defaults when any component
// is unset.
func (o *Overrides) GetCursor() (uint8, uint8, uint8) {
	if o != nil && o.CursorR != nil && o.CursorG != nil && o.CursorB != nil {
		return *o.CursorR, *o.CursorG, *o.CursorB
	}
	return CursorR, CursorG, CursorB
}

// SetBackground parses a hex color string and applies it as the
// background override.
func (o *Overrides) SetBackground(hex string) error {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	o.BackgroundR, o.BackgroundG, o.BackgroundB = &r, &g, &b
	return nil
}

// SetCursor parses a hex color string and applies it as the cursor
// override.
func (o *Overrides) SetCursor(hex string) error {
	r, g, b, err := ParseHexColor(hex)
	if err != nil {
		return err
	}
	o.CursorR, o.CursorG, o.CursorB = &r, &g, &b
	return nil
}

// ParseHexColor parses a 6-digit hex color string, with or without a
// leading '#', into RGB components.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q: expected 6 hex digits", s)
	}

	var parts [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		parts[i] = uint8(v)
	}
	return parts[0], parts[1], parts[2], nil
}
