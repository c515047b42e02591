// Package karaoke turns a project description and a song file into a
// finished CD+G archive. It wires the pipeline together: project
// parsing, font rendering, quantized background pictures, stream
// composition, and zip assembly.
package karaoke

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/karaokeforge/cdg"
	"github.com/karaokeforge/cdg/audio"
	"github.com/karaokeforge/cdg/compose"
	"github.com/karaokeforge/cdg/config"
	"github.com/karaokeforge/cdg/text"
)

// BuildFile runs the whole pipeline: project at projectPath, song at
// audioPath, zip archive written to outPath. Timing degradations are
// returned as warnings; they do not fail the build.
func BuildFile(projectPath, audioPath, outPath string) ([]compose.Warning, error) {
	project, err := config.Load(projectPath)
	if err != nil {
		return nil, err
	}
	track, err := audio.Load(audioPath)
	if err != nil {
		return nil, err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("karaoke: create %s: %w", outPath, err)
	}
	warnings, err := Build(project, track, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return warnings, err
}

// Build composes the stream for a parsed project and writes the
// archive.
func Build(project *config.Project, track *audio.Track, w io.Writer) ([]compose.Warning, error) {
	palette, err := buildPalette(project)
	if err != nil {
		return nil, err
	}

	src := text.LoadSource(project.Font.Path)
	size := project.Font.Size
	if size <= 0 {
		size = defaultLyricSize
	}
	face := src.Face(size, text.WithStroke(project.Font.Stroke))

	lyrics, err := renderLyrics(project, face, palette)
	if err != nil {
		return nil, err
	}
	instrumentals, err := renderInstrumentals(project, src, palette)
	if err != nil {
		return nil, err
	}
	intro := introScreen(project, src)

	composer, err := compose.NewComposer(palette, lyrics,
		compose.WithInstrumentals(instrumentals),
		compose.WithIntro(intro),
		compose.WithAudioFrames(track.Frames),
	)
	if err != nil {
		return nil, err
	}
	packets, err := composer.Compose()
	if err != nil {
		return composer.Warnings(), err
	}

	var padded bytes.Buffer
	if err := track.WritePadded(&padded, len(packets)); err != nil {
		return composer.Warnings(), fmt.Errorf("karaoke: pad audio: %w", err)
	}

	archive := cdg.Archive{
		Name:     archiveName(project),
		AudioExt: track.Format.Ext(),
	}
	if err := archive.Write(w, packets, &padded); err != nil {
		return composer.Warnings(), err
	}

	cdg.Logger().Info("archive built",
		"title", project.Title,
		"packets", len(packets),
		"warnings", len(composer.Warnings()))
	return composer.Warnings(), nil
}

// buildPalette allocates the color table from the project's styling.
func buildPalette(project *config.Project) (*cdg.Palette, error) {
	background, err := config.ParseColor(project.Colors.Background)
	if err != nil {
		return nil, fmt.Errorf("karaoke: %w", err)
	}
	border, err := config.ParseColor(project.Colors.Border)
	if err != nil {
		return nil, fmt.Errorf("karaoke: %w", err)
	}
	title, err := config.ParseColor(project.Colors.Title)
	if err != nil {
		return nil, fmt.Errorf("karaoke: %w", err)
	}
	subtitle := title
	if project.Colors.Artist != "" {
		if subtitle, err = config.ParseColor(project.Colors.Artist); err != nil {
			return nil, fmt.Errorf("karaoke: %w", err)
		}
	}

	palette := cdg.NewPalette(background, border, title, subtitle)
	for i, sc := range project.Colors.Singers {
		fill, _ := config.ParseColor(sc.Fill)
		stroke, _ := config.ParseColor(sc.Stroke)
		activeFill, _ := config.ParseColor(sc.ActiveFill)
		activeStroke, _ := config.ParseColor(sc.ActiveStroke)
		if _, err := palette.AddSinger(fill, stroke, activeFill, activeStroke); err != nil {
			return nil, fmt.Errorf("karaoke: singer %d: %w", i+1, err)
		}
	}
	return palette, nil
}

// archiveName derives the inner file name from the project title.
func archiveName(project *config.Project) string {
	name := make([]rune, 0, len(project.Title))
	for _, r := range project.Title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			name = append(name, r)
		case r == ' ', r == '-', r == '_':
			name = append(name, '_')
		}
	}
	if len(name) == 0 {
		return "output"
	}
	return string(name)
}
