package source

import (
	"io"
	"strings"

	"github.com/dgallion1/rechord/internal/song"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown songs using goldmark. The first level-1
// heading is the title and the first level-2 heading the subtitle. Other
// blocks contribute their raw source lines, so chord brackets survive
// untouched, and each block is its own stanza.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*song.Song, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var title, subtitle string
	var body []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := strings.TrimSpace(strings.Join(rawLines(node, src), " "))
			switch {
			case node.Level == 1 && title == "":
				title = heading
				continue
			case node.Level == 2 && subtitle == "" && title != "":
				subtitle = heading
				continue
			}
			body = append(body, heading, "")
		case *ast.ThematicBreak, *ast.HTMLBlock:
			continue
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				for c := item.FirstChild(); c != nil; c = c.NextSibling() {
					body = append(body, rawLines(c, src)...)
				}
			}
			body = append(body, "")
		default:
			body = append(body, rawLines(n, src)...)
			body = append(body, "")
		}
	}
	return assemble(title, subtitle, body), nil
}

// rawLines returns the source text of a block node, one entry per line.
func rawLines(n ast.Node, src []byte) []string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return out
}
