// Command cdggen renders a karaoke project into a CD+G archive.
//
// The project file describes the song (title, colors, font, timed lyrics)
// in YAML. The audio file supplies the soundtrack and the stream length.
//
// Usage:
//
//	cdggen -config song.yaml -audio song.mp3 -o song.zip
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/karaokeforge/cdg"
	"github.com/karaokeforge/cdg/karaoke"
)

func main() {
	var (
		configPath = flag.String("config", "", "project YAML file")
		audioPath  = flag.String("audio", "", "audio file (.mp3 or .wav)")
		output     = flag.String("o", "", "output archive (default <title>.zip)")
		verbose    = flag.Bool("v", false, "log composition details")
	)
	flag.Parse()

	if *configPath == "" || *audioPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	cdg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	out := *output
	if out == "" {
		out = defaultOutput(*configPath)
	}

	warnings, err := karaoke.BuildFile(*configPath, *audioPath, out)
	if err != nil {
		log.Fatalf("cdggen: %v", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "cdggen: frame %d line %d: %s\n",
			w.Frame, w.Line, w.Message)
	}
	log.Printf("wrote %s", out)
}

func defaultOutput(configPath string) string {
	base := filepath.Base(configPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".zip"
}
