package waveform

import (
	"image"
	"sync"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/units"
)

// SamplePosition ties a horizontal pixel to its place on the timeline.
type SamplePosition struct {
	X         int
	Timestamp units.Timestamp
}

// ImagePositions maps the published image back to the timeline: the
// window origin, the cursor when visible, the last drawn column, and
// the sampling geometry needed to translate any pixel in between.
type ImagePositions struct {
	Offset     SamplePosition
	Cursor     *SamplePosition
	Last       SamplePosition
	SampleDur  units.Duration
	SampleStep units.SampleIndexRange
}

// TimestampAt translates a pixel column into a timeline position,
// clamping to the drawn window.
func (p *ImagePositions) TimestampAt(x int) units.Timestamp {
	if x <= p.Offset.X {
		return p.Offset.Timestamp
	}
	if x >= p.Last.X {
		return p.Last.Timestamp
	}
	perPixel := units.Duration(uint64(p.SampleStep) * uint64(p.SampleDur))
	return p.Offset.Timestamp.Add(perPixel.Mul(uint64(x - p.Offset.X)))
}

// DoubleRenderer runs a Renderer into two alternating RGBA images and
// publishes the finished one atomically, so a reader never sees a
// half-drawn trace.
type DoubleRenderer struct {
	mu        sync.Mutex
	published *image.RGBA
	positions ImagePositions

	working     *image.RGBA
	rend        *Renderer
	tracer      *Tracer
	series      *Series
	lastCursorX int
}

// NewDoubleRenderer builds the pair of images at the given size.
func NewDoubleRenderer(extractor Extractor, overrides *config.Overrides, width, height int) *DoubleRenderer {
	return &DoubleRenderer{
		published: image.NewRGBA(image.Rect(0, 0, width, height)),
		working:   image.NewRGBA(image.Rect(0, 0, width, height)),
		rend:      NewRenderer(extractor),
		tracer:    NewTracer(overrides),
	}
}

// Renderer exposes the inner state machine for playback control.
func (d *DoubleRenderer) Renderer() *Renderer {
	return d.rend
}

// LoadFont loads the label font into the tracer.
func (d *DoubleRenderer) LoadFont(path string) error {
	return d.tracer.LoadFont(path)
}

// UpdateConditions re-derives sampling geometry and resizes the images
// if the requested size changed.
func (d *DoubleRenderer) UpdateConditions(visibleDur units.Duration, width, height int) {
	d.mu.Lock()
	if d.working.Rect.Dx() != width || d.working.Rect.Dy() != height {
		d.working = image.NewRGBA(image.Rect(0, 0, width, height))
		d.published = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	d.mu.Unlock()
	d.rend.UpdateConditions(visibleDur, width, height)
}

// Render runs one pass: select the window, extract (or reuse the
// cached series), draw into the working image, and flip it to
// published. Returns the pass status, nil when nothing was drawn.
func (d *DoubleRenderer) Render(snap *audio.Snapshot) (*RenderingStatus, error) {
	series, status, err := d.rend.Extract(snap)
	if err != nil {
		return nil, err
	}
	if series != nil {
		d.series = series
	}
	if d.series == nil || status == nil {
		return status, nil
	}

	cursorX, cursorPos := d.cursorPixel()
	// Same window, cursor in the same column: the published image is
	// already current, so skip the pass entirely.
	if series == nil && cursorX == d.lastCursorX {
		return nil, nil
	}
	d.lastCursorX = cursorX

	d.tracer.Draw(d.working, d.series, d.rend.Channels(), cursorX, d.rend.sampleDur)

	// The last drawn column sits one step short of Upper; pairing it
	// with its own timestamp keeps TimestampAt continuous at the clamp.
	lastX := d.series.PointCount() - 1
	lastIdx := d.series.Lower.Add(units.SampleIndexRange(uint64(d.series.Step) * uint64(lastX)))

	positions := ImagePositions{
		Offset: SamplePosition{
			X:         0,
			Timestamp: d.series.Lower.Timestamp(d.rend.sampleDur),
		},
		Cursor: cursorPos,
		Last: SamplePosition{
			X:         lastX,
			Timestamp: lastIdx.Timestamp(d.rend.sampleDur),
		},
		SampleDur:  d.rend.sampleDur,
		SampleStep: d.series.Step,
	}

	d.mu.Lock()
	d.working, d.published = d.published, d.working
	d.positions = positions
	d.mu.Unlock()

	return status, nil
}

// cursorPixel locates the cursor inside the cached series window.
// Returns -1 and nil when the cursor is outside it.
func (d *DoubleRenderer) cursorPixel() (int, *SamplePosition) {
	if d.series == nil || d.series.Step == 0 {
		return -1, nil
	}
	cursor := d.rend.Cursor()
	idx := cursor.SampleIndex(d.rend.sampleDur)
	if idx < d.series.Lower || idx >= d.series.Upper {
		return -1, nil
	}
	x := int(uint64(idx.Sub(d.series.Lower)) / uint64(d.series.Step))
	return x, &SamplePosition{X: x, Timestamp: cursor}
}

// Image returns the last published image and its timeline mapping.
// The image is owned by the renderer; the caller must not draw on it.
func (d *DoubleRenderer) Image() (*image.RGBA, ImagePositions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.published, d.positions
}
