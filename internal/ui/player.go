package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/pipeline"
	"github.com/linuxmatters/jivescope/internal/units"
	"github.com/linuxmatters/jivescope/internal/waveform"
)

// tickMsg drives the consumer redraw loop.
type tickMsg time.Time

// PlayerModel is the Bubbletea model running the consumer side of the
// pipeline: on every tick it advances the cursor, snapshots the sample
// buffer, renders the trace and previews it in the terminal.
type PlayerModel struct {
	buf      *audio.DoubleBuffer
	rend     *waveform.DoubleRenderer
	producer *pipeline.Producer

	inputName  string
	visibleDur units.Duration
	totalDur   units.Duration

	// Wall-clock playback position: offset is the position when the
	// clock last started or stopped.
	playing bool
	started time.Time
	offset  units.Duration

	// seekPending holds while the producer restarts at a seek target;
	// until then the buffer still retains the old segment.
	seekPending bool

	progress progress.Model
	preview  PreviewConfig

	width    int
	quitting bool
	err      error
}

// NewPlayerModel wires the consumer over an already-running producer.
func NewPlayerModel(inputName string, buf *audio.DoubleBuffer, rend *waveform.DoubleRenderer, producer *pipeline.Producer, visibleDur units.Duration) *PlayerModel {
	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(50),
		progress.WithoutPercentage(),
	)

	var total units.Duration
	if frames := producer.NumFrames(); frames > 0 {
		total = units.DurationFromFrequency(uint64(producer.SampleRate())).Mul(uint64(frames))
	}

	return &PlayerModel{
		buf:        buf,
		rend:       rend,
		producer:   producer,
		inputName:  inputName,
		visibleDur: visibleDur,
		totalDur:   total,
		playing:    true,
		started:    time.Now(),
		progress:   p,
		preview:    DefaultPreviewConfig(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(config.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the redraw loop.
func (m *PlayerModel) Init() tea.Cmd {
	return tick()
}

// cursor returns the current playback position.
func (m *PlayerModel) cursor() units.Timestamp {
	pos := m.offset
	if m.playing {
		pos += units.Duration(time.Since(m.started).Nanoseconds())
	}
	if m.totalDur > 0 && pos > m.totalDur {
		pos = m.totalDur
	}
	return units.Timestamp(pos)
}

// Update handles ticks and key presses.
func (m *PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(msg.Width-30, 60)
		if w := msg.Width - 6; w > 20 {
			m.preview.Width = min(w, 120)
		}
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, tea.Quit
		}
		m.renderPass()
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case " ":
			m.togglePlayback()
		case "left":
			m.seekBy(-config.SeekStep)
		case "right":
			m.seekBy(config.SeekStep)
		case "+", "=":
			m.zoom(1, 2)
		case "-":
			m.zoom(2, 1)
		}
		return m, nil
	}

	return m, nil
}

// renderPass runs one consumer tick: pick the window around the
// cursor, snapshot it, render.
func (m *PlayerModel) renderPass() {
	r := m.rend.Renderer()
	ts := m.cursor()
	r.Tick(ts)

	dims := r.Dims()
	if dims.SampleStep == 0 {
		return
	}

	sampleDur := m.buf.SampleDuration()
	if sampleDur == 0 {
		return
	}

	half := units.SampleIndexRange(uint64(dims.ReqWindow) / 2)
	reqLower := ts.SampleIndex(sampleDur).SaturatingSub(half)
	reqUpper := reqLower.Add(dims.ReqWindow).Add(dims.SampleStep)

	snap, err := m.buf.Snapshot(reqLower, reqUpper)
	if errors.Is(err, audio.ErrNotYetAvailable) {
		// The producer has not reached this window yet; try again on
		// the next tick.
		return
	}
	var rangeErr *audio.RangeError
	if errors.As(err, &rangeErr) {
		if m.seekPending {
			// The retained window is still the pre-seek segment's;
			// leave the cursor on the seek target.
			return
		}
		// The window fell behind the retained data; jump the cursor
		// forward to the oldest retained sample.
		m.setCursor(rangeErr.BufLower.Timestamp(sampleDur))
		return
	}
	if err != nil {
		m.err = err
		return
	}
	m.seekPending = false

	if _, err := m.rend.Render(snap); err != nil && !errors.Is(err, audio.ErrNotYetAvailable) {
		m.err = err
	}

	// Stop the clock at the end of the stream.
	if m.playing && snap.EOS && ts >= snap.Upper.Timestamp(sampleDur) {
		m.offset = units.Duration(ts)
		m.playing = false
		r.SetPaused()
	}
}

func (m *PlayerModel) togglePlayback() {
	r := m.rend.Renderer()
	if m.playing {
		m.offset = units.Duration(m.cursor())
		m.playing = false
		r.SetPaused()
	} else {
		m.started = time.Now()
		m.playing = true
		r.SetPlaying()
	}
}

// setCursor moves the playback clock to ts without touching the
// renderer state machine.
func (m *PlayerModel) setCursor(ts units.Timestamp) {
	m.offset = units.Duration(ts)
	m.started = time.Now()
}

// seekBy jumps the playback position, freezing the trace for the
// duration of the jump so a half-filled buffer is never drawn.
func (m *PlayerModel) seekBy(delta time.Duration) {
	ts := m.cursor()
	var target units.Timestamp
	if delta >= 0 {
		target = ts.Add(units.Duration(delta.Nanoseconds()))
	} else {
		target = ts.SaturatingSub(units.Duration((-delta).Nanoseconds()))
	}
	if m.totalDur > 0 && target > units.Timestamp(m.totalDur) {
		target = units.Timestamp(m.totalDur)
	}

	sampleDur := m.buf.SampleDuration()
	if sampleDur == 0 {
		return
	}

	r := m.rend.Renderer()
	r.Freeze()
	r.SeekStart()
	m.producer.Seek(target.SampleIndex(sampleDur))
	m.seekPending = true
	m.setCursor(target)
	r.SeekDone(target)
	r.Release()
}

// zoom scales the visible duration by num/denom within the configured
// bounds.
func (m *PlayerModel) zoom(num, denom uint64) {
	next := units.Duration(uint64(m.visibleDur) * num / denom)
	if next < units.DurationFromMillis(config.MinVisibleMillis) {
		next = units.DurationFromMillis(config.MinVisibleMillis)
	}
	if next > units.DurationFromSecs(config.MaxVisibleSeconds) {
		next = units.DurationFromSecs(config.MaxVisibleSeconds)
	}
	if next == m.visibleDur {
		return
	}
	m.visibleDur = next
	m.rend.UpdateConditions(next, config.TraceWidth, config.TraceHeight)
}

// View renders the preview, transport line and key help.
func (m *PlayerModel) View() string {
	var s strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F8B31D")).
		Render("Jivescope")
	subtitle := lipgloss.NewStyle().
		Faint(true).
		Render(m.inputName)
	s.WriteString(title)
	s.WriteString("  ")
	s.WriteString(subtitle)
	s.WriteString("\n\n")

	img, _ := m.rend.Image()
	s.WriteString(RenderPreview(DownsampleTrace(img, m.preview)))
	s.WriteString("\n")

	ts := m.cursor()
	if m.totalDur > 0 {
		ratio := float64(uint64(ts)) / float64(uint64(m.totalDur))
		if ratio > 1 {
			ratio = 1
		}
		s.WriteString(m.progress.ViewAs(ratio))
		s.WriteString("\n")
	}

	state := "playing"
	if !m.playing {
		state = "paused"
	}
	transport := fmt.Sprintf("%s  %s / %s  window %.2fs",
		state, ts.ForHumans(),
		units.Timestamp(m.totalDur).ForHumans(),
		m.visibleDur.Seconds())
	if n := m.buf.Discontinuities(); n > 0 {
		transport += fmt.Sprintf("  discontinuities %d", n)
	}
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(transport))
	s.WriteString("\n")

	help := "space play/pause  ←/→ seek 5s  +/- zoom  q quit"
	s.WriteString(lipgloss.NewStyle().Faint(true).Italic(true).Render(help))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A40000")).
			Render(fmt.Sprintf("error: %v", m.err)))
		s.WriteString("\n")
	}

	return s.String()
}
