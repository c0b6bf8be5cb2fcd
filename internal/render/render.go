// Package render draws laid out pages onto output sheets.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/rechord/internal/book"
	"github.com/dgallion1/rechord/internal/fonts"
	"github.com/dgallion1/rechord/internal/layout"
)

// Renderer writes a book in one output format.
type Renderer interface {
	Render(w io.Writer, b *book.Book) error
	ContentType() string
}

// ForFormat returns the renderer for "pdf" or "html". Every renderer draws
// with the faces that measured the layout.
func ForFormat(format string, set *fonts.Set, page layout.Settings) (Renderer, error) {
	switch strings.ToLower(format) {
	case "pdf", "":
		return &PDF{fonts: set, page: page}, nil
	case "html", "svg":
		return &HTML{fonts: set, page: page}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// Sheet is one physical side of paper. Slot i holds the page drawn at
// horizontal offset i times the page width; a nil slot stays blank.
type Sheet []*layout.Page

// Sheets groups the book's pages in print order, two per sheet for 2up and
// booklet presentations.
func Sheets(b *book.Book) ([]Sheet, error) {
	pages, err := b.PrintOrder()
	if err != nil {
		return nil, fmt.Errorf("impose pages: %w", err)
	}
	per := b.Presentation.PagesPerSheet()
	sheets := make([]Sheet, 0, (len(pages)+per-1)/per)
	for start := 0; start < len(pages); start += per {
		sheet := make(Sheet, per)
		copy(sheet, pages[start:min(start+per, len(pages))])
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
