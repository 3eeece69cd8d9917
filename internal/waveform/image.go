package waveform

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/units"
)

// Tracer draws extracted series into an RGBA image: background, center
// axis, one weighted polyline per channel, the playback cursor, and
// timestamp labels when a font is loaded.
type Tracer struct {
	background color.RGBA
	axis       color.RGBA
	cursor     color.RGBA

	face font.Face
}

// NewTracer builds a tracer from the configured palette.
func NewTracer(overrides *config.Overrides) *Tracer {
	bgR, bgG, bgB := overrides.GetBackground()
	curR, curG, curB := overrides.GetCursor()
	return &Tracer{
		background: color.RGBA{R: bgR, G: bgG, B: bgB, A: 255},
		axis:       color.RGBA{R: config.AxisR, G: config.AxisG, B: config.AxisB, A: 255},
		cursor:     color.RGBA{R: curR, G: curG, B: curB, A: 255},
	}
}

// LoadFont loads a TTF file for timestamp labels. Without it labels
// are skipped and the trace still renders.
func (t *Tracer) LoadFont(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	t.face = truetype.NewFace(f, &truetype.Options{Size: 14})
	return nil
}

// channelColor maps a channel's field side and weight to a trace
// color: left leans white, right leans red, center green, unplaced
// blue.
func channelColor(ch audio.Channel) color.RGBA {
	f := uint8(ch.Factor * 255)
	switch ch.Side {
	case audio.SideCenter:
		return color.RGBA{R: 0, G: f, B: 0, A: 255}
	case audio.SideLeft:
		return color.RGBA{R: f, G: f, B: f, A: 255}
	case audio.SideRight:
		return color.RGBA{R: f, G: 0, B: 0, A: 255}
	default:
		return color.RGBA{R: 0, G: 0, B: f, A: 255}
	}
}

// Draw renders the series into img with the cursor at cursorX, or no
// cursor when cursorX is negative.
func (t *Tracer) Draw(img *image.RGBA, series *Series, channels []audio.Channel, cursorX int, sampleDur units.Duration) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()

	t.fill(img, t.background)
	t.hline(img, h/2, t.axis)

	for c, values := range series.Channels {
		ch := audio.Channel{Side: audio.SideNotLocalized, Factor: 0.6}
		if c < len(channels) {
			ch = channels[c]
		}
		t.polyline(img, values, channelColor(ch))
	}

	if cursorX >= 0 && cursorX < w {
		t.vline(img, cursorX, 0, h, t.cursor)
	}

	if t.face != nil {
		t.drawLabels(img, series, sampleDur)
	}
}

// fill paints the whole image one color.
func (t *Tracer) fill(img *image.RGBA, c color.RGBA) {
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

// hline draws a horizontal line across the full width.
func (t *Tracer) hline(img *image.RGBA, y int, c color.RGBA) {
	if y < 0 || y >= img.Rect.Dy() {
		return
	}
	row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		row[i] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
	}
}

// vline draws a vertical line segment.
func (t *Tracer) vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if x < 0 || x >= img.Rect.Dx() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Rect.Dy() {
		y1 = img.Rect.Dy()
	}
	for y := y0; y < y1; y++ {
		off := y*img.Stride + x*4
		img.Pix[off] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = c.A
	}
}

// polyline draws one value per pixel column, connecting adjacent
// columns with a vertical span so steep slopes stay solid.
func (t *Tracer) polyline(img *image.RGBA, values []float64, c color.RGBA) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	mid := float64(h) / 2

	prevY := -1
	for x := 0; x < w && x < len(values); x++ {
		// Positive samples go up.
		y := int(mid - values[x]*(mid-1))
		if y < 0 {
			y = 0
		}
		if y >= h {
			y = h - 1
		}

		y0, y1 := y, y+1
		if prevY >= 0 {
			if prevY < y {
				y0 = prevY
			} else if prevY > y {
				y1 = prevY + 1
			}
		}
		t.vline(img, x, y0, y1, c)
		prevY = y
	}
}

// drawLabels writes the window's first and last timestamps into the
// bottom corners.
func (t *Tracer) drawLabels(img *image.RGBA, series *Series, sampleDur units.Duration) {
	h := img.Rect.Dy()
	w := img.Rect.Dx()

	first := series.Lower.Timestamp(sampleDur).ForHumans()
	last := series.Upper.Timestamp(sampleDur).ForHumans()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(t.cursor),
		Face: t.face,
	}

	d.Dot = fixed.P(4, h-6)
	d.DrawString(first)

	width := d.MeasureString(last)
	d.Dot = fixed.P(w-4-width.Ceil(), h-6)
	d.DrawString(last)
}
