package source

import (
	"io"

	"github.com/dgallion1/rechord/internal/chordpro"
	"github.com/dgallion1/rechord/internal/song"
)

// TextParser handles songs already written in the native dialect.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*song.Song, error) {
	return song.Load(r)
}

// ChordProParser converts ChordPro directives before tokenizing.
type ChordProParser struct{}

func (p *ChordProParser) Parse(r io.Reader, filename string) (*song.Song, error) {
	doc, err := chordpro.Convert(r)
	if err != nil {
		return nil, err
	}
	return assemble(doc.Title, doc.Subtitle, doc.Lines), nil
}
