package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/units"
)

// writeTestWAV writes a mono 16-bit WAV of n frames at the given rate,
// where frame f holds the value f.
func writeTestWAV(t *testing.T, rate, n int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	buf := &goaudio.IntBuffer{
		Data:           data,
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

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestProducerFillsBufferAndMarksEOS(t *testing.T) {
	const rate, frames = 8000, 12000
	path := writeTestWAV(t, rate, frames)

	buf := audio.NewDoubleBuffer()
	p, err := NewProducer(path, buf, false)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	if p.SampleRate() != rate {
		t.Errorf("SampleRate() = %d, want %d", p.SampleRate(), rate)
	}
	if p.NumChannels() != 1 {
		t.Errorf("NumChannels() = %d, want 1", p.NumChannels())
	}
	if p.NumFrames() != frames {
		t.Errorf("NumFrames() = %d, want %d", p.NumFrames(), frames)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, "EOS", buf.EOS)

	lower, upper := buf.Bounds()
	if upper != frames {
		t.Errorf("upper = %d, want %d", upper, frames)
	}
	// 1.5 s of audio fits inside the 5 s retention window.
	if lower != 0 {
		t.Errorf("lower = %d, want 0", lower)
	}

	// The decoded samples carry their frame values.
	snap, err := buf.Snapshot(0, 10)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	it, err := snap.Read(0, 10, 0, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := 0; i < 10; i++ {
		v, ok := it.Next()
		if !ok {
			t.Fatalf("Next() exhausted at %d", i)
		}
		if v != units.SampleValue(i) {
			t.Errorf("sample %d = %d, want %d", i, v, i)
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestProducerSeekStartsNewSegment(t *testing.T) {
	const rate, frames = 8000, 12000
	path := writeTestWAV(t, rate, frames)

	buf := audio.NewDoubleBuffer()
	p, err := NewProducer(path, buf, false)
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	waitFor(t, "first EOS", buf.EOS)

	// Seek restarts the stream at the target frame; the buffer starts
	// a fresh segment there and fills to the end again.
	p.Seek(4000)
	waitFor(t, "post-seek EOS", func() bool {
		lower, _ := buf.Bounds()
		return buf.EOS() && lower >= 4000
	})

	lower, upper := buf.Bounds()
	if lower != 4000 {
		t.Errorf("lower after seek = %d, want 4000", lower)
	}
	if upper != frames {
		t.Errorf("upper after seek = %d, want %d", upper, frames)
	}

	// The resumed data lines up with its timeline position.
	snap, err := buf.Snapshot(4000, 4010)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	it, err := snap.Read(4000, 4010, 0, 1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v, ok := it.Next(); !ok || v != 4000 {
		t.Errorf("first post-seek sample = %d, %v, want 4000, true", v, ok)
	}

	cancel()
	<-done
}
