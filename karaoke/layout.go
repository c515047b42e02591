package karaoke

import (
	"fmt"

	"github.com/karaokeforge/cdg"
	"github.com/karaokeforge/cdg/compose"
	"github.com/karaokeforge/cdg/config"
	"github.com/karaokeforge/cdg/internal/quantize"
	"github.com/karaokeforge/cdg/text"
)

const (
	defaultLyricSize    = 18
	defaultLinesPerPage = 4

	introTitleSize  = 34.0
	introArtistSize = 22.0
	captionSize     = 26.0
	minFitSize      = 10.0

	visibleLeft = (cdg.ScreenWidth - cdg.VisibleWidth) / 2
	visibleTop  = (cdg.ScreenHeight - cdg.VisibleHeight) / 2
)

// clearMode maps the project's mode string to the composer's enum.
func clearMode(s string) compose.ClearMode {
	switch s {
	case "eager":
		return compose.ClearLineEager
	case "page":
		return compose.ClearPage
	default:
		return compose.ClearLineDelayed
	}
}

// renderLyrics rasterizes every lyric line and lays it out on the
// screen: lines cycle through rows, centered horizontally.
func renderLyrics(project *config.Project, face *text.Face, palette *cdg.Palette) ([]*compose.Lyric, error) {
	perPage := project.LinesPerPage
	if perPage < 1 {
		perPage = defaultLinesPerPage
	}
	rowHeight := cdg.VisibleHeight / perPage

	var lyrics []*compose.Lyric
	for si, set := range project.Lyrics {
		ly := &compose.Lyric{
			Mode:         clearMode(project.ClearMode),
			LinesPerPage: perPage,
		}
		for li, entry := range set {
			parsed, err := config.ParseLine(entry.Text)
			if err != nil {
				return nil, fmt.Errorf("karaoke: lyrics[%d][%d]: %w", si, li, err)
			}
			slots := palette.Singer(parsed.Singer)
			rendered, err := face.RenderLine(parsed.Syllables,
				slots.InactiveFill, slots.InactiveStroke)
			if err != nil {
				return nil, fmt.Errorf("karaoke: lyrics[%d][%d]: %w", si, li, err)
			}

			x := (cdg.ScreenWidth - rendered.Bitmap.Width()) / 2
			if x < visibleLeft {
				x = visibleLeft
			}
			row := li % perPage
			y := visibleTop + row*rowHeight + (rowHeight-rendered.Bitmap.Height())/2
			if y < visibleTop {
				y = visibleTop
			}

			line := compose.Line{
				Bitmap: rendered.Bitmap,
				X:      x,
				Y:      y,
				Singer: parsed.Singer,
			}
			for j, syl := range rendered.Syllables {
				line.Syllables = append(line.Syllables, compose.Syllable{
					Text:  syl.Text,
					Start: config.Frames(entry.Sync[j]),
					End:   config.Frames(entry.Sync[j+1]),
					Left:  x + syl.Left,
					Right: x + syl.Right,
					Mask:  syl.Mask,
				})
			}
			ly.Lines = append(ly.Lines, line)
		}
		lyrics = append(lyrics, ly)
	}
	return lyrics, nil
}

// renderInstrumentals builds the screens shown during breaks. Quantized
// picture colors share the trailing color table slots; when several
// pictures are configured the free slots are split between them.
func renderInstrumentals(project *config.Project, src *text.Source, palette *cdg.Palette) ([]compose.Instrumental, error) {
	pictures := 0
	for _, ins := range project.Instrumentals {
		if ins.Image != "" {
			pictures++
		}
	}
	budget := 0
	if pictures > 0 {
		budget = palette.FreeSlots() / pictures
	}

	var out []compose.Instrumental
	for i, ins := range project.Instrumentals {
		var screen *cdg.Bitmap
		if ins.Image != "" {
			if budget < 1 {
				cdg.Logger().Warn("no color table slots left for picture, skipping",
					"image", ins.Image)
			} else {
				base := cdg.ColorIndex(16 - palette.FreeSlots())
				bm, colors, err := quantize.File(ins.Image, base, budget)
				if err != nil {
					return nil, fmt.Errorf("karaoke: instrumentals[%d]: %w", i, err)
				}
				if _, err := palette.AllocImage(colors); err != nil {
					return nil, fmt.Errorf("karaoke: instrumentals[%d]: %w", i, err)
				}
				screen = bm
			}
		}
		if ins.Text != "" {
			caption, err := fitText(src, ins.Text, captionSize,
				cdg.VisibleWidth-2*visibleLeft, cdg.TitleIndex)
			if err != nil {
				return nil, fmt.Errorf("karaoke: instrumentals[%d]: %w", i, err)
			}
			if screen == nil {
				screen = cdg.NewBitmap(cdg.ScreenWidth, cdg.ScreenHeight)
			}
			blit(screen, caption,
				(cdg.ScreenWidth-caption.Width())/2,
				(cdg.ScreenHeight-caption.Height())/2)
		}
		out = append(out, compose.Instrumental{
			Frame:  config.Frames(ins.Sync),
			Wait:   ins.Wait,
			Screen: screen,
		})
	}
	return out, nil
}

// introScreen renders the title splash: song title over artist name,
// both centered. The title size shrinks until the text fits the
// visible width.
func introScreen(project *config.Project, src *text.Source) *cdg.Bitmap {
	screen := cdg.NewBitmap(cdg.ScreenWidth, cdg.ScreenHeight)
	maxWidth := cdg.VisibleWidth - 2*visibleLeft

	title, err := fitText(src, project.Title, introTitleSize, maxWidth, cdg.TitleIndex)
	if err != nil {
		cdg.Logger().Warn("title render failed, splash skipped", "error", err)
		return nil
	}
	y := cdg.ScreenHeight/3 - title.Height()/2
	if y < visibleTop {
		y = visibleTop
	}
	blit(screen, title, (cdg.ScreenWidth-title.Width())/2, y)
	y += title.Height()

	if project.Artist != "" {
		artist, err := fitText(src, project.Artist, introArtistSize, maxWidth, cdg.SubtitleIndex)
		if err == nil {
			blit(screen, artist, (cdg.ScreenWidth-artist.Width())/2, y+visibleTop)
		}
	}
	return screen
}

// fitText renders a run of text, shrinking the face until it fits
// maxWidth.
func fitText(src *text.Source, s string, size float64, maxWidth int, fill cdg.ColorIndex) (*cdg.Bitmap, error) {
	for size > minFitSize {
		if src.Face(size).Measure(s) <= float64(maxWidth) {
			break
		}
		size -= 2
	}
	return src.Face(size).RenderText(s, fill, fill)
}

// blit copies the non-transparent pixels of src onto dst at (x, y).
func blit(dst, src *cdg.Bitmap, x, y int) {
	for sy := 0; sy < src.Height(); sy++ {
		for sx := 0; sx < src.Width(); sx++ {
			if c := src.At(sx, sy); c != 0 {
				dst.Set(x+sx, y+sy, c)
			}
		}
	}
}
