package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVDecoder implements Decoder for WAV files.
type WAVDecoder struct {
	decoder    *wav.Decoder
	file       *os.File
	sampleRate int
	bitDepth   int
	numChans   int
	numFrames  int64
}

// NewWAVDecoder opens a WAV file and seeks to its PCM data.
func NewWAVDecoder(filename string) (*WAVDecoder, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file")
	}

	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to seek to PCM data: %w", err)
	}

	d := &WAVDecoder{
		decoder:    decoder,
		file:       f,
		sampleRate: int(decoder.SampleRate),
		bitDepth:   int(decoder.BitDepth),
		numChans:   int(decoder.NumChans),
	}

	// PCM chunk size gives the exact frame count.
	bytesPerFrame := int64(d.numChans) * int64(d.bitDepth) / 8
	if bytesPerFrame > 0 {
		d.numFrames = decoder.PCMLen() / bytesPerFrame
	}

	return d, nil
}

// ReadPCM reads up to frames frames as interleaved S16LE bytes.
// Other bit depths are rescaled to 16 bits.
func (d *WAVDecoder) ReadPCM(frames int) ([]byte, error) {
	intBuf := &audio.IntBuffer{
		Data: make([]int, frames*d.numChans),
		Format: &audio.Format{
			NumChannels: d.numChans,
			SampleRate:  d.sampleRate,
		},
	}

	n, err := d.decoder.PCMBuffer(intBuf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read PCM buffer: %w", err)
	}
	if n == 0 {
		return nil, io.EOF
	}

	// Truncate a trailing partial frame.
	n -= n % d.numChans

	shift := uint(0)
	widen := uint(0)
	if d.bitDepth > 16 {
		shift = uint(d.bitDepth - 16)
	} else if d.bitDepth < 16 {
		widen = uint(16 - d.bitDepth)
	}

	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := intBuf.Data[i]
		// 8-bit WAV PCM is unsigned with silence at 128; recenter
		// before widening.
		if d.bitDepth == 8 {
			v -= 128
		}
		if shift > 0 {
			v >>= shift
		} else if widen > 0 {
			v <<= widen
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out, nil
}

// SampleRate returns the sample rate.
func (d *WAVDecoder) SampleRate() int {
	return d.sampleRate
}

// NumChannels returns the number of audio channels.
func (d *WAVDecoder) NumChannels() int {
	return d.numChans
}

// NumFrames returns the total frame count.
func (d *WAVDecoder) NumFrames() int64 {
	return d.numFrames
}

// Close closes the decoder and releases resources.
func (d *WAVDecoder) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}
