package source

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dgallion1/rechord/internal/song"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser recovers lyric sheets from PDF text. Each text row becomes a
// native source line, so a sheet typed in the native dialect round-trips.
// Rows further apart than one and a half line heights become stanza breaks.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*song.Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdflib.Null {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		if i > 1 && len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, rowLines(rows)...)
	}
	return song.FromLines(trimBlank(lines)), nil
}

// rowLines joins the runs of each row left to right. PDF rows are ordered by
// descending Y, so a gap is measured top down.
func rowLines(rows pdflib.Rows) []string {
	var out []string
	var prevY, step float64
	for i, row := range rows {
		texts := append([]pdflib.Text(nil), row.Content...)
		sort.SliceStable(texts, func(a, b int) bool { return texts[a].X < texts[b].X })

		var b strings.Builder
		var size float64
		for _, t := range texts {
			b.WriteString(t.S)
			if t.FontSize > size {
				size = t.FontSize
			}
		}

		y := float64(row.Position)
		if i > 0 {
			gap := prevY - y
			if gap < 0 {
				gap = -gap
			}
			if step == 0 {
				step = size * 1.2
			}
			if step > 0 && gap > 1.5*step {
				out = append(out, "")
			}
		}
		prevY = y
		out = append(out, b.String())
	}
	return out
}
