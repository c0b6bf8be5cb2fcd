package book

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/rechord/internal/layout"
	"github.com/dgallion1/rechord/internal/song"
)

// Book is a laid out document in reading order.
type Book struct {
	Pages        []*layout.Page
	Presentation Presentation

	Songs   int      // songs laid out
	Skipped []string // reasons for discarded songs
}

// PrintOrder returns the pages in the order they are printed. Booklets are
// imposed for folding; other presentations print in reading order.
func (b *Book) PrintOrder() ([]*layout.Page, error) {
	if b.Presentation != Booklet {
		return b.Pages, nil
	}
	return Reorder(b.Pages)
}

// Reorder imposes pages for a folded booklet: N, 1, 2, N-1, N-2, 3, 4, ...
func Reorder[T any](pages []T) ([]T, error) {
	if len(pages)%4 != 0 {
		return nil, fmt.Errorf("%w: %d pages", ErrNotImposable, len(pages))
	}
	out := make([]T, 0, len(pages))
	lo, hi := 0, len(pages)-1
	for lo < hi {
		out = append(out, pages[hi], pages[lo], pages[lo+1], pages[hi-1])
		lo += 2
		hi -= 2
	}
	return out, nil
}

// Layouter flows songs onto pages. It is single-threaded; use one per document.
type Layouter struct {
	ctx  *layout.Context
	opts Options
	log  *slog.Logger

	pages []*layout.Page
	index []*layout.Page
}

// NewLayouter creates a Layouter. A nil logger discards output.
func NewLayouter(ctx *layout.Context, opts Options, log *slog.Logger) *Layouter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.Index == "" {
		opts.Index = IndexNone
	}
	if opts.Presentation == "" {
		opts.Presentation = Single
	}
	if opts.Overflow == "" {
		opts.Overflow = OverflowReject
	}
	return &Layouter{ctx: ctx, opts: opts, log: log}
}

// Layout lays out songs in order, splices the index, numbers the pages and
// pads booklets to a multiple of four.
func (l *Layouter) Layout(songs []*song.Song) (*Book, error) {
	l.pages = nil
	l.index = nil
	if l.opts.Index != IndexNone {
		l.index = []*layout.Page{l.ctx.NewPage(0)}
	}

	b := &Book{Presentation: l.opts.Presentation}
	for _, s := range songs {
		if err := s.Validate(); err != nil {
			l.log.Warn("skipping song", "error", err)
			b.Skipped = append(b.Skipped, err.Error())
			continue
		}
		first := len(l.pages) + 1
		if err := l.layoutSong(s); err != nil {
			return nil, err
		}
		b.Songs++
		l.log.Debug("laid out song", "title", s.Title, "first_page", first, "pages", len(l.pages)-first+1)
	}

	pages := l.pages
	switch l.opts.Index {
	case IndexFront:
		pages = append(append([]*layout.Page{}, l.index...), pages...)
	case IndexBack:
		pages = append(pages, l.index...)
	}

	if len(pages) > 1 {
		side := layout.SideCenter
		if l.opts.Presentation == Booklet {
			side = layout.SideRight
		}
		for _, p := range pages {
			p.PlaceNumber(side)
			side = -side
		}
	}
	if l.opts.Presentation == Booklet {
		for len(pages)%4 != 0 {
			pages = append(pages, l.ctx.NewPage(0))
		}
	}

	b.Pages = pages
	return b, nil
}

func (l *Layouter) layoutSong(s *song.Song) error {
	page := l.newPage()
	if l.index != nil {
		if err := l.addIndexRow(s.IndexEntry(), page.Number()); err != nil {
			return err
		}
	}

	// The title starts an empty page; failing here means the page itself is
	// too small for it.
	if err := l.titleLine(page, song.Title, s.Title, s); err != nil {
		return err
	}
	if s.Subtitle != "" {
		if err := l.titleLine(page, song.Subtitle, s.Subtitle, s); err != nil {
			return err
		}
	}
	page.EndTitle()

	for i := range s.Lines {
		line := &s.Lines[i]
		l.current().Indent(line.IsIndented())
		blocks := line.Blocks()
		for j := range blocks {
			if err := l.addBlock(s, i, line, &blocks[j]); err != nil {
				return err
			}
		}
		l.current().EndLine(line)
	}
	return nil
}

// addBlock places one block, moving to a fresh page once if needed.
func (l *Layouter) addBlock(s *song.Song, lineNo int, line *song.Line, block *song.Block) error {
	if l.current().Add(line, block, false) {
		return nil
	}
	page := l.newPage()
	if line.IsFirst(block) {
		page.Indent(line.IsIndented())
	}
	if page.Add(line, block, false) {
		return nil
	}
	if l.opts.Overflow == OverflowForce {
		l.log.Warn("line overflows page", "title", s.Title, "line", lineNo+1, "page", page.Number())
		page.Overfill(line, block)
		return nil
	}
	return fmt.Errorf("%w: song %q, line %d", ErrUnplaceable, s.Title, lineNo+1)
}

func (l *Layouter) addIndexRow(entry, number string) error {
	if l.index[len(l.index)-1].AddLine(song.Index, entry, number) {
		return nil
	}
	page := l.ctx.NewPage(0)
	l.index = append(l.index, page)
	if page.AddLine(song.Index, entry, number) {
		return nil
	}
	if l.opts.Overflow == OverflowForce {
		l.log.Warn("index row overflows page", "entry", entry)
		page.OverfillLine(song.Index, entry, number)
		return nil
	}
	return fmt.Errorf("%w: index entry %q", ErrUnplaceable, entry)
}

func (l *Layouter) titleLine(page *layout.Page, t song.TextType, text string, s *song.Song) error {
	if page.AddLine(t, text, "") {
		return nil
	}
	if l.opts.Overflow == OverflowForce {
		l.log.Warn("title overflows page", "title", s.Title)
		page.OverfillLine(t, text, "")
		return nil
	}
	return fmt.Errorf("%w: %s of song %q", ErrUnplaceable, t, s.Title)
}

func (l *Layouter) newPage() *layout.Page {
	p := l.ctx.NewPage(len(l.pages) + 1)
	l.pages = append(l.pages, p)
	return p
}

func (l *Layouter) current() *layout.Page {
	return l.pages[len(l.pages)-1]
}
