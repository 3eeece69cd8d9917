package waveform

import (
	"log/slog"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/units"
)

// State is the renderer lifecycle position.
type State int

const (
	// StateNull means conditions are not set yet; Render is a no-op.
	StateNull State = iota
	// StateReady means conditions are set and rendering can start.
	StateReady
	// StatePlaying tracks a moving cursor.
	StatePlaying
	// StatePaused holds the cursor still.
	StatePaused
	// StateSeeking suspends cursor tracking until SeekDone.
	StateSeeking
)

func (s State) String() string {
	switch s {
	case StateNull:
		return "null"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateSeeking:
		return "seeking"
	default:
		return "unknown"
	}
}

// RenderingStatus reports what a render pass drew: the first sample of
// the drawn window and how many samples the current conditions want
// visible. The producer side can use the window length to decide how
// far ahead to decode.
type RenderingStatus struct {
	Lower     units.SampleIndex
	WindowLen units.SampleIndexRange
}

// Dimensions captures the sampling geometry derived from the visible
// duration and the image size.
type Dimensions struct {
	Width  int
	Height int

	// SampleStep is how many samples one horizontal pixel advances.
	SampleStep units.SampleIndexRange

	// ReqWindow is the sample count that fills the full width.
	ReqWindow units.SampleIndexRange
}

// Renderer drives window selection over the buffered stream: it tracks
// the playback cursor, keeps the drawn window centered on it, and
// holds still while frozen or seeking.
type Renderer struct {
	state     State
	prevState State
	frozen    bool

	channels  []audio.Channel
	sampleDur units.Duration
	dims      Dimensions

	cursor      units.Timestamp
	forceRedraw bool

	lastLower units.SampleIndex
	lastUpper units.SampleIndex

	extractor Extractor
}

// NewRenderer wraps an extractor; conditions must be set before the
// first Render.
func NewRenderer(extractor Extractor) *Renderer {
	return &Renderer{state: StateNull, extractor: extractor}
}

// State returns the current lifecycle state.
func (r *Renderer) State() State {
	return r.state
}

// SetChannels sets the per-channel rendering weights.
func (r *Renderer) SetChannels(channels []audio.Channel) {
	r.channels = channels
}

// Channels returns the per-channel rendering weights.
func (r *Renderer) Channels() []audio.Channel {
	return r.channels
}

// SetSampleConditions sets the stream timing and resets cached window
// state. Called when the stream geometry becomes known.
func (r *Renderer) SetSampleConditions(sampleDur units.Duration) {
	r.sampleDur = sampleDur
	r.lastLower = 0
	r.lastUpper = 0
	r.extractor.Reset()
	r.forceRedraw = true
}

// UpdateConditions derives the sampling geometry from the visible
// duration and image size. Moves a Null renderer to Ready.
func (r *Renderer) UpdateConditions(visibleDur units.Duration, width, height int) {
	if r.sampleDur == 0 || width <= 0 {
		return
	}

	step := units.RangeFromDuration(visibleDur, r.sampleDur).Scale(1, uint64(width))
	if step == 0 {
		step = 1
	}

	r.dims = Dimensions{
		Width:      width,
		Height:     height,
		SampleStep: step,
		ReqWindow:  units.SampleIndexRange(uint64(step) * uint64(width)),
	}

	if r.state == StateNull {
		r.setState(StateReady)
	}
	r.extractor.Force()
	r.forceRedraw = true
}

// Dims returns the current sampling geometry.
func (r *Renderer) Dims() Dimensions {
	return r.dims
}

// Freeze suspends rendering; repeated calls are no-ops.
func (r *Renderer) Freeze() {
	r.frozen = true
}

// Release resumes rendering; repeated calls are no-ops. The next pass
// redraws unconditionally since conditions may have changed while
// frozen.
func (r *Renderer) Release() {
	if !r.frozen {
		return
	}
	r.frozen = false
	r.extractor.Force()
	r.forceRedraw = true
}

// Frozen reports whether rendering is suspended.
func (r *Renderer) Frozen() bool {
	return r.frozen
}

// SetPlaying moves to the playing state.
func (r *Renderer) SetPlaying() {
	if r.state == StateReady || r.state == StatePaused {
		r.setState(StatePlaying)
	}
}

// SetPaused moves to the paused state.
func (r *Renderer) SetPaused() {
	if r.state == StatePlaying {
		r.setState(StatePaused)
	}
}

// SeekStart suspends cursor tracking; the previous state is restored
// by SeekDone or CancelSeek.
func (r *Renderer) SeekStart() {
	if r.state == StateSeeking {
		return
	}
	r.prevState = r.state
	r.setState(StateSeeking)
}

// SeekDone moves the cursor to the seek target and restores the state
// active before SeekStart.
func (r *Renderer) SeekDone(ts units.Timestamp) {
	if r.state != StateSeeking {
		return
	}
	r.cursor = ts
	r.setState(r.prevState)
	r.extractor.Reset()
	r.forceRedraw = true
}

// CancelSeek restores the state active before SeekStart without moving
// the cursor.
func (r *Renderer) CancelSeek() {
	if r.state != StateSeeking {
		return
	}
	r.setState(r.prevState)
}

// Tick advances the cursor while playing.
func (r *Renderer) Tick(ts units.Timestamp) {
	if r.state == StatePlaying {
		r.cursor = ts
	}
}

// Cursor returns the current cursor position.
func (r *Renderer) Cursor() units.Timestamp {
	return r.cursor
}

func (r *Renderer) setState(s State) {
	if s == r.state {
		return
	}
	slog.Debug("renderer state", "from", r.state.String(), "to", s.String())
	r.state = s
}

// SelectWindow picks the sample window the next pass should draw:
// centered on the cursor, clamped to what the snapshot holds.
func (r *Renderer) SelectWindow(snap *audio.Snapshot) (units.SampleIndex, units.SampleIndex) {
	half := units.SampleIndexRange(uint64(r.dims.ReqWindow) / 2)
	cursorIdx := r.cursor.SampleIndex(r.sampleDur)

	lower := cursorIdx.SaturatingSub(half)
	if lower < snap.Lower {
		lower = snap.Lower
	}
	if lower > snap.Upper {
		lower = snap.Lower
	}

	upper := lower.Add(r.dims.ReqWindow)
	if upper > snap.Upper {
		upper = snap.Upper
	}
	return lower, upper
}

// Extract runs the extractor over the selected window. A nil series
// with nil error means the previous drawing still covers the window
// and no redraw is needed.
func (r *Renderer) Extract(snap *audio.Snapshot) (*Series, *RenderingStatus, error) {
	if r.frozen || r.state == StateNull || r.dims.SampleStep == 0 {
		return nil, nil, nil
	}

	lower, upper := r.SelectWindow(snap)
	series, fresh, err := r.extractor.Extract(snap, lower, upper, r.dims.SampleStep)
	if err != nil {
		return nil, nil, err
	}

	status := &RenderingStatus{Lower: series.Lower, WindowLen: r.dims.ReqWindow}
	if !fresh && !r.forceRedraw &&
		series.Lower == r.lastLower && series.Upper == r.lastUpper {
		return nil, status, nil
	}
	r.forceRedraw = false
	r.lastLower = series.Lower
	r.lastUpper = series.Upper
	return series, status, nil
}
