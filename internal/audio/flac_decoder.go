package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACDecoder implements Decoder for FLAC files.
type FLACDecoder struct {
	stream      *flac.Stream
	file        *os.File
	sampleRate  int
	numFrames   int64
	numChannels int
	bitDepth    int

	// pending holds interleaved S16LE bytes decoded past the caller's
	// last request; FLAC frames rarely line up with block boundaries.
	pending []byte
}

// NewFLACDecoder opens a FLAC file. Geometry comes from the StreamInfo
// block.
func NewFLACDecoder(filename string) (*FLACDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create FLAC decoder: %w", err)
	}

	info := stream.Info
	return &FLACDecoder{
		stream:      stream,
		file:        f,
		sampleRate:  int(info.SampleRate),
		numFrames:   int64(info.NSamples),
		numChannels: int(info.NChannels),
		bitDepth:    int(info.BitsPerSample),
	}, nil
}

// ReadPCM reads up to frames frames as interleaved S16LE bytes,
// rescaling other bit depths to 16 bits.
func (d *FLACDecoder) ReadPCM(frames int) ([]byte, error) {
	want := frames * d.numChannels * 2

	for len(d.pending) < want {
		frame, err := d.stream.ParseNext()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		shift := 0
		widen := 0
		if d.bitDepth > 16 {
			shift = d.bitDepth - 16
		} else if d.bitDepth < 16 {
			widen = 16 - d.bitDepth
		}

		frameLen := len(frame.Subframes[0].Samples)
		for i := 0; i < frameLen; i++ {
			for _, sub := range frame.Subframes {
				v := int(sub.Samples[i])
				if shift > 0 {
					v >>= uint(shift)
				} else if widen > 0 {
					v <<= uint(widen)
				}
				d.pending = append(d.pending, byte(v), byte(v>>8))
			}
		}
	}

	if len(d.pending) == 0 {
		return nil, io.EOF
	}

	n := want
	if n > len(d.pending) {
		n = len(d.pending)
	}
	out := d.pending[:n]
	d.pending = d.pending[n:]
	return out, nil
}

// SampleRate returns the sample rate.
func (d *FLACDecoder) SampleRate() int {
	return d.sampleRate
}

// NumFrames returns the total frame count.
func (d *FLACDecoder) NumFrames() int64 {
	return d.numFrames
}

// NumChannels returns the number of audio channels.
func (d *FLACDecoder) NumChannels() int {
	return d.numChannels
}

// Close closes the decoder and releases resources.
func (d *FLACDecoder) Close() error {
	if d.stream != nil {
		d.stream.Close()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
