// Package text renders lyric lines into indexed bitmaps.
//
// A Source wraps a loaded TTF or OTF font and hands out Faces at
// concrete pixel sizes. A Face shapes text with HarfBuzz (ligatures,
// kerning) and rasterizes the shaped glyphs into a Line: one indexed
// bitmap for the whole line plus, per syllable, a reveal mask and the
// pixel span the highlight sweep moves across.
//
// Input text is NFC-normalized before shaping so decomposed input and
// precomposed input shape identically.
package text
