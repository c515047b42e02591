package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/karaokeforge/cdg"
)

// wavInfo records where the data chunk sits and how fast it plays.
type wavInfo struct {
	channels   uint16
	bits       uint16
	byteRate   uint32
	blockAlign uint32
	dataStart  int // offset of the data chunk payload
	dataSize   int
}

// ParseWAV reads the RIFF chunk list of a WAV file and measures its
// duration from the data chunk size and byte rate.
func ParseWAV(data []byte) (*Track, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("audio: not a wav file")
	}

	var info wavInfo
	var sampleRate uint32
	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("audio: wav chunk %q overruns file", id)
		}
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("audio: wav fmt chunk too short")
			}
			info.channels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			info.byteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
			info.blockAlign = uint32(binary.LittleEndian.Uint16(data[body+12 : body+14]))
			info.bits = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case "data":
			info.dataStart = body
			info.dataSize = size
		}
		off = body + size
		if size%2 == 1 {
			off++ // chunks are word aligned
		}
	}

	if info.byteRate == 0 || info.blockAlign == 0 {
		return nil, fmt.Errorf("audio: wav has no usable fmt chunk")
	}
	if info.dataStart == 0 {
		return nil, fmt.Errorf("audio: wav has no data chunk")
	}

	frames := int((int64(info.dataSize)*cdg.PacketsPerSecond + int64(info.byteRate) - 1) / int64(info.byteRate))
	return &Track{
		Format:     FormatWAV,
		SampleRate: int(sampleRate),
		Frames:     frames,
		data:       data,
		wav:        info,
	}, nil
}

// writeWAV writes the file with the data chunk grown by silence until
// the audio covers frames stream frames. The RIFF and data sizes are
// patched; any chunks after the data chunk are preserved.
func (t *Track) writeWAV(w io.Writer, frames int) error {
	extra := 0
	if frames > t.Frames {
		need := int64(frames-t.Frames) * int64(t.wav.byteRate)
		extra = int((need + cdg.PacketsPerSecond - 1) / cdg.PacketsPerSecond)
		if rem := extra % int(t.wav.blockAlign); rem != 0 {
			extra += int(t.wav.blockAlign) - rem
		}
	}
	if extra == 0 {
		_, err := w.Write(t.data)
		return err
	}

	head := make([]byte, t.wav.dataStart)
	copy(head, t.data[:t.wav.dataStart])
	riffSize := binary.LittleEndian.Uint32(head[4:8])
	binary.LittleEndian.PutUint32(head[4:8], riffSize+uint32(extra))
	binary.LittleEndian.PutUint32(head[t.wav.dataStart-4:t.wav.dataStart],
		uint32(t.wav.dataSize+extra))

	if _, err := w.Write(head); err != nil {
		return err
	}
	dataEnd := t.wav.dataStart + t.wav.dataSize
	if _, err := w.Write(t.data[t.wav.dataStart:dataEnd]); err != nil {
		return err
	}
	// Silence is mid-scale for 8-bit unsigned PCM, zero otherwise.
	pad := make([]byte, extra)
	if t.wav.bits == 8 {
		for i := range pad {
			pad[i] = 0x80
		}
	}
	if _, err := w.Write(pad); err != nil {
		return err
	}
	_, err := w.Write(t.data[dataEnd:])
	return err
}
