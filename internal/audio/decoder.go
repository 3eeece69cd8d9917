package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Decoder produces interleaved S16LE PCM blocks from an audio file.
type Decoder interface {
	// ReadPCM reads up to frames frames of interleaved S16LE bytes.
	// Returns io.EOF when the stream is exhausted.
	ReadPCM(frames int) ([]byte, error)

	// SampleRate returns the stream sample rate in Hz.
	SampleRate() int

	// NumChannels returns the number of interleaved channels.
	NumChannels() int

	// NumFrames returns the total frame count, or 0 when unknown.
	NumFrames() int64

	// Close releases the underlying file.
	Close() error
}

// Open picks a decoder by file extension.
func Open(filename string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return NewWAVDecoder(filename)
	case ".mp3":
		return NewMP3Decoder(filename)
	case ".flac":
		return NewFLACDecoder(filename)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(filename))
	}
}
