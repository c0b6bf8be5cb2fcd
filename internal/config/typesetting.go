package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/rechord/internal/book"
	"github.com/dgallion1/rechord/internal/fonts"
	"github.com/dgallion1/rechord/internal/layout"
	"github.com/dgallion1/rechord/internal/song"
)

// Output formats understood by the renderers.
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Typesetting is the resolved, immutable result of a config File.
type Typesetting struct {
	Page  layout.Settings
	Fonts map[song.TextType]fonts.Spec
	Book  book.Options

	Output string
	Format string
}

var lengthKeys = []string{
	"page-width", "page-height",
	"margin-left", "margin-top", "margin-right", "margin-bottom",
	"line-indent", "block-indent",
	"text-size", "line-gap", "stanza-gap", "title-gap",
}

func knownKey(key string) bool {
	switch key {
	case "index-location", "layout", "overflow", "output", "format":
		return true
	}
	for _, k := range lengthKeys {
		if k == key {
			return true
		}
	}
	name, suffix, ok := strings.Cut(key, "-")
	if !ok {
		return false
	}
	if _, err := song.ParseTextType(name); err != nil {
		return false
	}
	switch suffix {
	case "font", "size", "base", "height":
		return true
	}
	return false
}

// resolver reads values from a File, remembering the first bad value of
// each key.
type resolver struct {
	f    *File
	errs []error
}

func (r *resolver) length(key string, fallback float64) float64 {
	v, ok := r.f.values[key]
	if !ok {
		return fallback
	}
	n, err := ParseLength(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

// Typesetting resolves every option, applying the defaults of a US letter
// songbook with 12pt text.
func (f *File) Typesetting() (Typesetting, error) {
	r := &resolver{f: f}

	width := r.length("page-width", 8.5*72)
	height := r.length("page-height", 11*72)
	textSize := r.length("text-size", 12)
	stanzaGap := r.length("stanza-gap", textSize*1.5)

	ts := Typesetting{
		Page: layout.Settings{
			Width:        width,
			Height:       height,
			MarginLeft:   r.length("margin-left", 72),
			MarginTop:    r.length("margin-top", 72),
			MarginRight:  r.length("margin-right", 72),
			MarginBottom: r.length("margin-bottom", 72),
			Indent:       r.length("line-indent", 36),
			Outdent:      r.length("block-indent", 0.2*72),
			LineGap:      r.length("line-gap", textSize*0.25),
			StanzaGap:    stanzaGap,
			TitleGap:     r.length("title-gap", stanzaGap),
		},
		Fonts:  make(map[song.TextType]fonts.Spec, len(song.AllTypes)),
		Output: f.Text("output", ""),
		Format: strings.ToLower(f.Text("format", FormatPDF)),
	}

	// Furniture faces default to the body faces they resemble.
	family := map[song.TextType]string{}
	family[song.Chord] = f.Text("chord-font", "medium")
	family[song.Text] = f.Text("text-font", "regular")
	family[song.Subtext] = f.Text("subtext-font", "italic")
	family[song.Title] = f.Text("title-font", family[song.Chord])
	family[song.Subtitle] = f.Text("subtitle-font", family[song.Subtext])
	family[song.Number] = f.Text("number-font", family[song.Subtitle])
	family[song.Index] = f.Text("index-font", family[song.Text])

	size := map[song.TextType]float64{}
	size[song.Chord] = r.length("chord-size", textSize)
	size[song.Text] = textSize
	size[song.Subtext] = r.length("subtext-size", textSize)
	size[song.Title] = r.length("title-size", 1.2*textSize)
	size[song.Subtitle] = r.length("subtitle-size", 0.8*size[song.Subtext])
	size[song.Number] = r.length("number-size", size[song.Subtitle])
	size[song.Index] = r.length("index-size", textSize)

	for _, t := range song.AllTypes {
		ts.Fonts[t] = fonts.Spec{
			Family:     family[t],
			Size:       size[t],
			Baseline:   r.length(t.String()+"-base", 0.75*size[t]),
			LineHeight: r.length(t.String()+"-height", 1.15*size[t]),
		}
	}

	var err error
	ts.Book.Index, err = book.ParseIndexLocation(f.Text("index-location", string(book.IndexNone)))
	if err != nil {
		r.errs = append(r.errs, err)
	}
	ts.Book.Presentation, err = book.ParsePresentation(f.Text("layout", string(book.Single)))
	if err != nil {
		r.errs = append(r.errs, err)
	}
	ts.Book.Overflow, err = book.ParseOverflowPolicy(f.Text("overflow", string(book.OverflowReject)))
	if err != nil {
		r.errs = append(r.errs, err)
	}
	if ts.Format != FormatPDF && ts.Format != FormatHTML {
		r.errs = append(r.errs, fmt.Errorf("unknown format %q (want pdf or html)", ts.Format))
	}
	if err := ts.Page.Validate(); err != nil {
		r.errs = append(r.errs, err)
	}

	if len(r.errs) > 0 {
		return Typesetting{}, fmt.Errorf("typesetting config: %w", errors.Join(r.errs...))
	}
	return ts, nil
}
