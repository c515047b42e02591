package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"testing"
)

// makeWAV builds a PCM WAV file of silence.
func makeWAV(rate, channels, bits, samples int) []byte {
	blockAlign := channels * bits / 8
	byteRate := rate * blockAlign
	dataSize := samples * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	// Exactly two seconds of 44.1 kHz stereo.
	track, err := ParseWAV(makeWAV(44100, 2, 16, 88200))
	if err != nil {
		t.Fatal(err)
	}
	if track.Format != FormatWAV {
		t.Errorf("Format = %v", track.Format)
	}
	if track.SampleRate != 44100 {
		t.Errorf("SampleRate = %d", track.SampleRate)
	}
	if track.Frames != 600 {
		t.Errorf("Frames = %d, want 600", track.Frames)
	}

	// A fraction of a second rounds up.
	track, err = ParseWAV(makeWAV(44100, 2, 16, 44101))
	if err != nil {
		t.Fatal(err)
	}
	if track.Frames != 301 {
		t.Errorf("Frames = %d, want 301", track.Frames)
	}
}

func TestParseWAV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("OGGSXXXXWAVE")},
		{"truncated chunk", makeWAV(44100, 2, 16, 100)[:50]},
		{"no data chunk", makeWAV(44100, 2, 16, 0)[:36]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseWAV(tt.data); err == nil {
				t.Error("no error")
			}
		})
	}
}

func TestWritePadded_WAV(t *testing.T) {
	src := makeWAV(8000, 1, 16, 8000) // one second, 300 frames
	track, err := ParseWAV(src)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := track.WritePadded(&out, 450); err != nil {
		t.Fatal(err)
	}

	padded, err := ParseWAV(out.Bytes())
	if err != nil {
		t.Fatalf("padded output does not reparse: %v", err)
	}
	if padded.Frames < 450 {
		t.Errorf("padded Frames = %d, want at least 450", padded.Frames)
	}

	// Half a second of 16 kB/s audio is exactly 8000 extra bytes.
	if got, want := out.Len(), len(src)+8000; got != want {
		t.Errorf("padded size = %d, want %d", got, want)
	}

	// The RIFF size field covers the whole grown file.
	riffSize := binary.LittleEndian.Uint32(out.Bytes()[4:8])
	if int(riffSize) != out.Len()-8 {
		t.Errorf("riff size = %d, file size - 8 = %d", riffSize, out.Len()-8)
	}
}

func TestWritePadded_WAV8BitSilence(t *testing.T) {
	src := makeWAV(8000, 1, 8, 8000) // one second, 300 frames
	track, err := ParseWAV(src)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := track.WritePadded(&out, 450); err != nil {
		t.Fatal(err)
	}

	// Half a second of 8 kB/s audio is exactly 4000 extra bytes, and
	// 8-bit silence is mid-scale, not zero.
	if got, want := out.Len(), len(src)+4000; got != want {
		t.Fatalf("padded size = %d, want %d", got, want)
	}
	for i, b := range out.Bytes()[len(src):] {
		if b != 0x80 {
			t.Fatalf("pad byte %d = %#x, want 0x80", i, b)
		}
	}
}

func TestWritePadded_WAVNoGrowth(t *testing.T) {
	src := makeWAV(8000, 1, 16, 8000)
	track, err := ParseWAV(src)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := track.WritePadded(&out, 300); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out.Bytes(), src) {
		t.Error("unpadded track changed on write")
	}
}

func TestParseMP3_Garbage(t *testing.T) {
	if _, err := ParseMP3([]byte("definitely not an mp3 file")); err == nil {
		t.Error("no error for garbage data")
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := t.TempDir() + "/song.ogg"
	if err := os.WriteFile(path, []byte("OggS"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("no error for unsupported extension")
	}
}

func TestLoad_WAV(t *testing.T) {
	path := t.TempDir() + "/song.wav"
	if err := os.WriteFile(path, makeWAV(8000, 1, 16, 4000), 0o644); err != nil {
		t.Fatal(err)
	}
	track, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if track.Frames != 150 {
		t.Errorf("Frames = %d, want 150", track.Frames)
	}
}

func TestPCM_WAV(t *testing.T) {
	track, err := ParseWAV(makeWAV(22050, 2, 16, 1000))
	if err != nil {
		t.Fatal(err)
	}
	r, rate, channels, bits, err := track.PCM()
	if err != nil {
		t.Fatal(err)
	}
	if rate != 22050 || channels != 2 || bits != 16 {
		t.Errorf("layout = %d Hz, %d ch, %d bit", rate, channels, bits)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 1000*4 {
		t.Errorf("pcm size = %d, want %d", len(data), 1000*4)
	}
}

func TestPCM_WAVUnplayableDepth(t *testing.T) {
	track, err := ParseWAV(makeWAV(44100, 2, 24, 100))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, _, err := track.PCM(); err == nil {
		t.Error("no error for 24-bit samples")
	}
}

func TestFormat_Ext(t *testing.T) {
	if FormatMP3.Ext() != ".mp3" || FormatWAV.Ext() != ".wav" {
		t.Error("wrong extensions")
	}
}
