package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/rechord/internal/song"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML songs. <h1> (or <title>) is the title and the
// first <h2> the subtitle. <pre> blocks keep their lines verbatim and
// paragraphs break lines at <br>.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*song.Song, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var title, subtitle string
	var body []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "head":
				return
			case "h1":
				if title == "" {
					title = collapse(textContent(n))
					return
				}
			case "h2":
				if subtitle == "" && title != "" {
					subtitle = collapse(textContent(n))
					return
				}
			case "pre":
				body = append(body, strings.Split(strings.Trim(textContent(n), "\n"), "\n")...)
				body = append(body, "")
				return
			}
			if isTextBlock(n.Data) {
				for _, line := range strings.Split(textContent(n), "\n") {
					body = append(body, collapse(line))
				}
				body = append(body, "")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	if title == "" {
		if t := findElement(doc, "title"); t != nil {
			title = collapse(textContent(t))
		}
	}
	return assemble(title, subtitle, body), nil
}

func isTextBlock(tag string) bool {
	switch tag {
	case "p", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// textContent concatenates descendant text, turning <br> into newlines.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// collapse squeezes the whitespace HTML treats as insignificant.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
