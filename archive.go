package cdg

import (
	"archive/zip"
	"fmt"
	"io"
)

// Archive packages a composed packet stream and its audio track into the
// zip layout karaoke players expect: <name>.cdg next to <name>.<audio ext>.
type Archive struct {
	// Name is the base name of both archive members, without extension.
	Name string

	// AudioExt is the audio member's extension including the dot,
	// e.g. ".mp3".
	AudioExt string
}

// Write writes the archive to w. audio supplies the padded audio track and
// is copied through unmodified.
func (a Archive) Write(w io.Writer, packets []Packet, audio io.Reader) error {
	name := a.Name
	if name == "" {
		name = "output"
	}
	zw := zip.NewWriter(w)

	cw, err := zw.Create(name + ".cdg")
	if err != nil {
		return fmt.Errorf("cdg: creating stream member: %w", err)
	}
	if _, err := WritePackets(cw, packets); err != nil {
		return fmt.Errorf("cdg: writing stream member: %w", err)
	}

	aw, err := zw.Create(name + a.AudioExt)
	if err != nil {
		return fmt.Errorf("cdg: creating audio member: %w", err)
	}
	if _, err := io.Copy(aw, audio); err != nil {
		return fmt.Errorf("cdg: writing audio member: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("cdg: finalizing archive: %w", err)
	}
	return nil
}
