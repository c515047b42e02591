// Command cdgplay previews a CD+G stream in a window.
//
// It accepts either a finished archive (the zip written by cdggen, with
// the graphics stream and the song side by side) or a bare .cdg file,
// optionally paired with an audio file. Graphics replay at the nominal
// 300 packets per second, clocked against the audio playback.
//
// Usage:
//
//	cdgplay song.zip
//	cdgplay -audio song.mp3 song.cdg
package main

import (
	"archive/zip"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/karaokeforge/cdg"
	"github.com/karaokeforge/cdg/audio"
)

func main() {
	var (
		audioPath = flag.String("audio", "", "audio file for a bare .cdg stream")
		scale     = flag.Int("scale", 3, "window scale factor")
		mute      = flag.Bool("mute", false, "replay graphics without sound")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	stream, track, err := load(flag.Arg(0), *audioPath)
	if err != nil {
		log.Fatalf("cdgplay: %v", err)
	}

	g := &game{
		screen: cdg.NewScreen(),
		stream: stream,
		frame:  ebiten.NewImage(cdg.ScreenWidth, cdg.ScreenHeight),
	}

	if track != nil && !*mute {
		stop, err := startAudio(track)
		if err != nil {
			log.Fatalf("cdgplay: %v", err)
		}
		defer stop()
	}
	g.start = time.Now()

	ebiten.SetWindowSize(cdg.ScreenWidth**scale, cdg.ScreenHeight**scale)
	ebiten.SetWindowTitle("cdgplay")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("cdgplay: %v", err)
	}
}

// load resolves the input into a packet stream and an optional track.
func load(path, audioPath string) ([]byte, *audio.Track, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadArchive(path)
	}

	stream, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var track *audio.Track
	if audioPath != "" {
		if track, err = audio.Load(audioPath); err != nil {
			return nil, nil, err
		}
	}
	return stream, track, nil
}

// loadArchive pulls the graphics stream and the song out of a zip.
func loadArchive(path string) ([]byte, *audio.Track, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer zr.Close()

	var stream []byte
	var track *audio.Track
	for _, f := range zr.File {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".cdg" && ext != ".mp3" && ext != ".wav" {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		switch ext {
		case ".cdg":
			stream = data
		case ".mp3":
			track, err = audio.ParseMP3(data)
		case ".wav":
			track, err = audio.ParseWAV(data)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	if stream == nil {
		return nil, nil, errors.New("archive has no .cdg member")
	}
	return stream, track, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// startAudio plays the track in the background and returns a stop func.
func startAudio(track *audio.Track) (func(), error) {
	pcm, rate, channels, bits, err := track.PCM()
	if err != nil {
		return nil, err
	}
	format := oto.FormatSignedInt16LE
	if bits == 8 {
		format = oto.FormatUnsignedInt8
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       format,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	player := ctx.NewPlayer(pcm)
	player.Play()
	return func() { player.Close() }, nil
}

// game replays the stream onto a Screen, advancing to the packet index
// the wall clock has reached since playback started.
type game struct {
	screen *cdg.Screen
	stream []byte
	off    int
	start  time.Time
	frame  *ebiten.Image
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	elapsed := time.Since(g.start)
	target := int(elapsed*cdg.PacketsPerSecond/time.Second) * cdg.PacketSize
	if target > len(g.stream) {
		target = len(g.stream)
	}
	if target > g.off {
		if err := g.screen.ApplyBinary(g.stream[g.off:target]); err != nil {
			return err
		}
		g.off = target
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.frame.WritePixels(g.screen.RGBA().Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return cdg.ScreenWidth, cdg.ScreenHeight
}
