package ui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/pipeline"
	"github.com/linuxmatters/jivescope/internal/units"
	"github.com/linuxmatters/jivescope/internal/waveform"
)

// writeSilentWAV writes a mono 16-bit WAV of n silent frames.
func writeSilentWAV(t *testing.T, rate, n int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Data:           make([]int, n),
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	return path
}

// newTestPlayer builds a paused player over an unstarted producer so a
// test can drive the buffer and render passes by hand. 50 kHz keeps
// the per-sample duration an exact 20000 ns.
func newTestPlayer(t *testing.T) (*PlayerModel, *audio.DoubleBuffer) {
	t.Helper()

	const rate, frames = 50000, 250000
	path := writeSilentWAV(t, rate, frames)

	buf := audio.NewDoubleBuffer()
	producer, err := pipeline.NewProducer(path, buf, false)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	rend := waveform.NewDoubleRenderer(waveform.NewWaveExtractor(), &config.Overrides{}, 200, 100)
	rend.Renderer().SetChannels([]audio.Channel{audio.NewChannel(audio.PositionMono)})
	rend.Renderer().SetSampleConditions(units.DurationFromFrequency(rate))
	rend.UpdateConditions(units.DurationFromSecs(1), 200, 100)

	m := NewPlayerModel(path, buf, rend, producer, units.DurationFromSecs(1))
	m.playing = false
	return m, buf
}

func TestPlayerBackwardSeekKeepsCursorWhileProducerRestarts(t *testing.T) {
	m, buf := newTestPlayer(t)

	// The producer has decoded well past two seconds.
	buf.HaveSegment(100000)
	buf.Push(make([]byte, 10000*2), 100000)

	m.offset = units.DurationFromSecs(2) + units.DurationFromMillis(100)

	m.seekBy(-2 * time.Second)
	target := units.Timestamp(units.DurationFromMillis(100))
	if got := m.cursor(); got != target {
		t.Fatalf("cursor after seekBy = %d, want %d", got, target)
	}

	// Ticks before the producer restarts still see the old segment and
	// get a range error; the cursor must stay on the seek target.
	m.renderPass()
	if got := m.cursor(); got != target {
		t.Errorf("cursor after pre-restart tick = %d, want %d", got, target)
	}

	// The producer restarts at the target and fills past the window.
	buf.HaveSegment(5000)
	buf.Push(make([]byte, 55000*2), 5000)

	m.renderPass()
	if got := m.cursor(); got != target {
		t.Errorf("cursor after restart = %d, want %d", got, target)
	}
	if m.seekPending {
		t.Error("seekPending still set after a successful pass")
	}

	// With no seek outstanding, falling behind the retained window
	// jumps the cursor forward to the oldest retained sample.
	buf.HaveSegment(200000)
	buf.Push(make([]byte, 10000*2), 200000)

	m.renderPass()
	want := units.Timestamp(units.DurationFromSecs(4))
	if got := m.cursor(); got != want {
		t.Errorf("cursor after falling behind = %d, want %d", got, want)
	}
}
