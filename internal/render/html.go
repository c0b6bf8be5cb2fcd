package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/rechord/internal/book"
	"github.com/dgallion1/rechord/internal/fonts"
	"github.com/dgallion1/rechord/internal/layout"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTML renders a standalone page with one inline SVG per sheet. Text is set
// in CSS generic families approximating the layout faces.
type HTML struct {
	fonts *fonts.Set
	page  layout.Settings
}

func (r *HTML) ContentType() string { return "text/html; charset=utf-8" }

func (r *HTML) Render(w io.Writer, b *book.Book) error {
	sheets, err := Sheets(b)
	if err != nil {
		return err
	}
	width := float64(b.Presentation.PagesPerSheet()) * r.page.Width

	body := element("body")
	for i, sheet := range sheets {
		svg := element("svg",
			"xmlns", "http://www.w3.org/2000/svg",
			"class", "sheet",
			"id", "sheet-"+strconv.Itoa(i+1),
			"width", num(width)+"pt",
			"height", num(r.page.Height)+"pt",
			"viewBox", "0 0 "+num(width)+" "+num(r.page.Height),
		)
		for slot, page := range sheet {
			if page != nil {
				r.drawPage(svg, page, float64(slot)*r.page.Width)
			}
		}
		body.AppendChild(svg)
	}

	head := element("head")
	head.AppendChild(element("meta", "charset", "utf-8"))
	style := element("style")
	style.AppendChild(&html.Node{Type: html.TextNode, Data: stylesheet})
	head.AppendChild(style)

	root := element("html")
	root.AppendChild(head)
	root.AppendChild(body)

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(root)
	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

const stylesheet = `body{background:#ddd;margin:0}
.sheet{display:block;background:#fff;margin:1em auto;box-shadow:0 0 4px #888}
.sheet text{white-space:pre}
`

func (r *HTML) drawPage(svg *html.Node, page *layout.Page, offset float64) {
	for _, frag := range page.Fragments() {
		if frag.Text == "" {
			continue
		}
		spec := r.fonts.Face(frag.Type).Spec()
		attrs := []string{
			"class", frag.Type.String(),
			"x", num(offset + frag.X),
			"y", num(frag.Y + spec.Baseline),
			"font-size", num(spec.Size),
		}
		attrs = append(attrs, cssFont(spec.Family)...)
		text := element("text", attrs...)
		text.AppendChild(&html.Node{Type: html.TextNode, Data: frag.Text})
		svg.AppendChild(text)
	}
	for _, l := range page.Leaders() {
		svg.AppendChild(element("line",
			"class", "leader",
			"x1", num(offset+l.FromX),
			"y1", num(l.Y),
			"x2", num(offset+l.ToX),
			"y2", num(l.Y),
			"stroke", "black",
			"stroke-width", "1",
			"stroke-dasharray", "1 7",
		))
	}
}

// cssFont maps a face name onto font-family, weight and style attributes.
func cssFont(family string) []string {
	name := strings.ToLower(family)
	attrs := []string{"font-family", "Go, sans-serif"}
	switch {
	case strings.HasPrefix(name, "mono"):
		attrs[1] = "'Go Mono', monospace"
	case name == "smallcaps":
		attrs = append(attrs, "font-variant", "small-caps")
	}
	switch {
	case strings.Contains(name, "bold"):
		attrs = append(attrs, "font-weight", "bold")
	case strings.Contains(name, "medium"):
		attrs = append(attrs, "font-weight", "500")
	}
	if strings.Contains(name, "italic") {
		attrs = append(attrs, "font-style", "italic")
	}
	return attrs
}

func element(tag string, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: atom.Lookup([]byte(tag)), Data: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
