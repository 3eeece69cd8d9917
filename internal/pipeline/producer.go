// Package pipeline connects decoders to the sample buffer: a producer
// goroutine that pushes timeline-ordered PCM blocks, optionally paced
// at real time, and restarts the stream on seeks.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/linuxmatters/jivescope/internal/audio"
	"github.com/linuxmatters/jivescope/internal/config"
	"github.com/linuxmatters/jivescope/internal/units"
)

// Producer decodes one audio file into a DoubleBuffer. Run drives the
// decode loop; Seek asks it to restart the stream at a new position.
type Producer struct {
	path        string
	buf         *audio.DoubleBuffer
	realtime    bool
	blockFrames int

	dec    audio.Decoder
	next   units.SampleIndex
	seekCh chan units.SampleIndex
}

// NewProducer opens the file and initializes the buffer geometry.
func NewProducer(path string, buf *audio.DoubleBuffer, realtime bool) (*Producer, error) {
	dec, err := audio.Open(path)
	if err != nil {
		return nil, err
	}

	retention := units.DurationFromSecs(config.RetentionSeconds)
	if err := buf.Init(dec.SampleRate(), dec.NumChannels(), retention); err != nil {
		dec.Close()
		return nil, fmt.Errorf("failed to init sample buffer: %w", err)
	}

	return &Producer{
		path:        path,
		buf:         buf,
		realtime:    realtime,
		blockFrames: config.BlockFrames,
		dec:         dec,
		seekCh:      make(chan units.SampleIndex, 1),
	}, nil
}

// SampleRate returns the stream sample rate in Hz.
func (p *Producer) SampleRate() int {
	return p.dec.SampleRate()
}

// NumChannels returns the stream channel count.
func (p *Producer) NumChannels() int {
	return p.dec.NumChannels()
}

// NumFrames returns the total frame count, or 0 when unknown.
func (p *Producer) NumFrames() int64 {
	return p.dec.NumFrames()
}

// Seek asks the running producer to restart the stream at the given
// frame. A pending unserviced seek is replaced.
func (p *Producer) Seek(target units.SampleIndex) {
	select {
	case <-p.seekCh:
	default:
	}
	p.seekCh <- target
}

// Run decodes until the stream ends or ctx is canceled. After EOS it
// stays alive to service seeks, so a paused consumer can still jump
// around. The decoder is closed on return.
func (p *Producer) Run(ctx context.Context) error {
	defer p.dec.Close()

	p.buf.HaveSegment(0)
	p.next = 0

	blockDur := time.Duration(p.blockFrames) * time.Second / time.Duration(p.dec.SampleRate())
	var ticker *time.Ticker
	if p.realtime {
		ticker = time.NewTicker(blockDur)
		defer ticker.Stop()
	}

	atEOF := false
	for {
		if atEOF {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case target := <-p.seekCh:
				if err := p.restartAt(target); err != nil {
					return err
				}
				atEOF = false
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case target := <-p.seekCh:
			if err := p.restartAt(target); err != nil {
				return err
			}
			continue
		default:
		}

		data, err := p.dec.ReadPCM(p.blockFrames)
		if err == io.EOF {
			p.buf.MarkEOS()
			atEOF = true
			continue
		}
		if err != nil {
			return fmt.Errorf("decode failed at frame %d: %w", p.next, err)
		}

		frames := len(data) / (2 * p.dec.NumChannels())
		p.buf.Push(data, p.next)
		p.next = p.next.Add(units.SampleIndexRange(frames))

		if p.realtime {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}
}

// restartAt reopens the decoder, skips ahead to the target frame and
// starts a new segment there. Decoders are sequential, so a backward
// seek costs a re-decode from the file start.
func (p *Producer) restartAt(target units.SampleIndex) error {
	slog.Debug("seek restart", "target", uint64(target))

	p.dec.Close()
	dec, err := audio.Open(p.path)
	if err != nil {
		return fmt.Errorf("failed to reopen for seek: %w", err)
	}
	p.dec = dec

	skipped := units.SampleIndex(0)
	for skipped < target {
		want := int(uint64(target - skipped))
		if want > p.blockFrames {
			want = p.blockFrames
		}
		data, err := dec.ReadPCM(want)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decode failed while seeking: %w", err)
		}
		skipped = skipped.Add(units.SampleIndexRange(len(data) / (2 * dec.NumChannels())))
	}

	p.buf.HaveSegment(skipped)
	p.next = skipped
	return nil
}
