package render

import (
	"fmt"
	"io"

	"github.com/dgallion1/rechord/internal/book"
	"github.com/dgallion1/rechord/internal/fonts"
	"github.com/dgallion1/rechord/internal/layout"
	"github.com/dgallion1/rechord/internal/song"
	"github.com/go-pdf/fpdf"
)

// Leaders are drawn as 1pt dots every 8pt.
var leaderDash = []float64{1, 7}

// PDF renders sheets with the layout faces embedded as UTF-8 TrueType fonts.
type PDF struct {
	fonts *fonts.Set
	page  layout.Settings
}

func (r *PDF) ContentType() string { return "application/pdf" }

func (r *PDF) Render(w io.Writer, b *book.Book) error {
	sheets, err := Sheets(b)
	if err != nil {
		return err
	}
	per := float64(b.Presentation.PagesPerSheet())

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr:        "pt",
		OrientationStr: "P",
		Size:           fpdf.SizeType{Wd: per * r.page.Width, Ht: r.page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("rechord", true)

	names := r.registerFonts(pdf)
	for _, sheet := range sheets {
		pdf.AddPage()
		for slot, page := range sheet {
			if page == nil {
				continue
			}
			r.drawPage(pdf, names, page, float64(slot)*r.page.Width)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// registerFonts embeds each distinct face once and returns the fpdf family
// name per TextType.
func (r *PDF) registerFonts(pdf *fpdf.Fpdf) map[song.TextType]string {
	byFamily := make(map[string]string)
	names := make(map[song.TextType]string, len(song.AllTypes))
	for _, t := range song.AllTypes {
		face := r.fonts.Face(t)
		family := face.Spec().Family
		name, ok := byFamily[family]
		if !ok {
			name = fmt.Sprintf("face%d", len(byFamily))
			pdf.AddUTF8FontFromBytes(name, "", face.TTF())
			byFamily[family] = name
		}
		names[t] = name
	}
	return names
}

func (r *PDF) drawPage(pdf *fpdf.Fpdf, names map[song.TextType]string, page *layout.Page, offset float64) {
	for _, frag := range page.Fragments() {
		if frag.Text == "" {
			continue
		}
		spec := r.fonts.Face(frag.Type).Spec()
		pdf.SetFont(names[frag.Type], "", spec.Size)
		pdf.Text(offset+frag.X, frag.Y+spec.Baseline, frag.Text)
	}
	if len(page.Leaders()) == 0 {
		return
	}
	pdf.SetLineWidth(1)
	pdf.SetDashPattern(leaderDash, 0)
	for _, l := range page.Leaders() {
		pdf.Line(offset+l.FromX, l.Y, offset+l.ToX, l.Y)
	}
	pdf.SetDashPattern(nil, 0)
}
