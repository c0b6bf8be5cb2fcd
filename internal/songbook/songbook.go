// Package songbook wires the typesetting stages together: songs are laid
// out with the configured faces and drawn by the configured renderer.
package songbook

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/rechord/internal/book"
	"github.com/dgallion1/rechord/internal/config"
	"github.com/dgallion1/rechord/internal/fonts"
	"github.com/dgallion1/rechord/internal/layout"
	"github.com/dgallion1/rechord/internal/render"
	"github.com/dgallion1/rechord/internal/song"
	"github.com/dgallion1/rechord/internal/source"
)

// Compiler turns songs into a rendered document. Its state is read-only
// after New, so one Compiler may serve concurrent compilations.
type Compiler struct {
	ts       config.Typesetting
	fonts    *fonts.Set
	ctx      *layout.Context
	renderer render.Renderer
	log      *slog.Logger
}

// New loads the faces named in ts and prepares the layout context and
// renderer. A nil logger discards output.
func New(ts config.Typesetting, log *slog.Logger) (*Compiler, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	set, err := fonts.NewSet(ts.Fonts)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}
	ctx, err := layout.NewContext(ts.Page, set)
	if err != nil {
		set.Close()
		return nil, err
	}
	r, err := render.ForFormat(ts.Format, set, ts.Page)
	if err != nil {
		set.Close()
		return nil, err
	}
	return &Compiler{ts: ts, fonts: set, ctx: ctx, renderer: r, log: log}, nil
}

// Typesetting returns the settings the compiler was built from.
func (c *Compiler) Typesetting() config.Typesetting {
	return c.ts
}

// ContentType is the MIME type of rendered output.
func (c *Compiler) ContentType() string {
	return c.renderer.ContentType()
}

// Layout flows songs onto pages.
func (c *Compiler) Layout(songs []*song.Song) (*book.Book, error) {
	b, err := book.NewLayouter(c.ctx, c.ts.Book, c.log).Layout(songs)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	c.log.Info("laid out songbook", "songs", b.Songs, "skipped", len(b.Skipped), "pages", len(b.Pages))
	return b, nil
}

// Render writes a laid out book.
func (c *Compiler) Render(w io.Writer, b *book.Book) error {
	if err := c.renderer.Render(w, b); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Compile lays out and renders songs in one step.
func (c *Compiler) Compile(w io.Writer, songs []*song.Song) (*book.Book, error) {
	b, err := c.Layout(songs)
	if err != nil {
		return nil, err
	}
	if err := c.Render(w, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Close releases the font faces.
func (c *Compiler) Close() error {
	return c.fonts.Close()
}

// LoadSongs reads each path with the parser for its extension, in order.
func LoadSongs(paths []string, log *slog.Logger) ([]*song.Song, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	songs := make([]*song.Song, 0, len(paths))
	for _, path := range paths {
		s, err := source.LoadFile(path)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded song", "path", path, "title", s.Title, "lines", len(s.Lines))
		songs = append(songs, s)
	}
	return songs, nil
}
