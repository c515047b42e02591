// Package audio probes song files for their duration in stream frames
// and pads them to match a finished stream.
//
// MP3 files are decoded with go-mp3 to measure their exact PCM length
// but the compressed bytes pass through untouched; extending an MP3
// would mean transcoding. WAV files are padded with true digital
// silence by growing the data chunk.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"

	"github.com/karaokeforge/cdg"
)

// Format identifies the container of a Track.
type Format int

const (
	FormatMP3 Format = iota
	FormatWAV
)

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatWAV {
		return ".wav"
	}
	return ".mp3"
}

// Track is a loaded song file with its measured duration.
type Track struct {
	Format Format

	// SampleRate in Hz.
	SampleRate int

	// Frames is the duration in stream frames (300 per second),
	// rounded up.
	Frames int

	data []byte
	wav  wavInfo
}

// Load reads a song file, dispatching on its extension.
func Load(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("audio: %s: %w: %v", path, cdg.ErrResource, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return ParseMP3(data)
	case ".wav":
		return ParseWAV(data)
	default:
		return nil, fmt.Errorf("audio: %s: unsupported format", path)
	}
}

// ParseMP3 measures an MP3 file by decoding its PCM length.
func ParseMP3(data []byte) (*Track, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w", err)
	}

	// Length is the decoded size in bytes: 16-bit stereo, 4 bytes per
	// sample regardless of the source channel count.
	if dec.Length() <= 0 {
		return nil, fmt.Errorf("audio: mp3 length not measurable")
	}
	samples := dec.Length() / 4
	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("audio: mp3 reports sample rate %d", rate)
	}
	return &Track{
		Format:     FormatMP3,
		SampleRate: rate,
		Frames:     framesFor(samples, int64(rate)),
		data:       data,
	}, nil
}

// WritePadded writes the track so that it covers at least the given
// number of stream frames. WAV data grows by true silence; MP3 bytes
// pass through unchanged, with a warning when the stream outlasts them.
func (t *Track) WritePadded(w io.Writer, frames int) error {
	switch t.Format {
	case FormatWAV:
		return t.writeWAV(w, frames)
	default:
		if frames > t.Frames {
			cdg.Logger().Warn("stream outlasts mp3 audio, not padding compressed data",
				"audio_frames", t.Frames, "stream_frames", frames)
		}
		_, err := w.Write(t.data)
		return err
	}
}

// PCM returns the track's samples as a stream for playback, together
// with the sample layout: rate in Hz, interleaved channel count, and
// bits per sample (signed 16 or unsigned 8, little endian).
//
// MP3 tracks are decoded on the fly and always come out as 16-bit
// stereo at the track's sample rate.
func (t *Track) PCM() (r io.Reader, rate, channels, bits int, err error) {
	switch t.Format {
	case FormatWAV:
		if t.wav.bits != 8 && t.wav.bits != 16 {
			return nil, 0, 0, 0, fmt.Errorf("audio: wav with %d-bit samples not playable", t.wav.bits)
		}
		if t.wav.channels == 0 {
			return nil, 0, 0, 0, fmt.Errorf("audio: wav fmt chunk reports zero channels")
		}
		end := t.wav.dataStart + t.wav.dataSize
		return bytes.NewReader(t.data[t.wav.dataStart:end]),
			t.SampleRate, int(t.wav.channels), int(t.wav.bits), nil
	default:
		dec, err := mp3.NewDecoder(bytes.NewReader(t.data))
		if err != nil {
			return nil, 0, 0, 0, fmt.Errorf("audio: decode mp3: %w", err)
		}
		return dec, dec.SampleRate(), 2, 16, nil
	}
}

// framesFor converts a PCM sample count to stream frames, rounding up.
func framesFor(samples, rate int64) int {
	return int((samples*cdg.PacketsPerSecond + rate - 1) / rate)
}
