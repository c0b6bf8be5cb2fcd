package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/rechord/internal/song"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles Word documents. Paragraphs styled Title or Heading1
// give the title and Subtitle or Heading2 the subtitle. When neither style
// is present the paragraphs are read as a native song.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*song.Song, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var title, subtitle string
	var body []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		switch docxStyle(para) {
		case "title", "heading1", "heading 1":
			if title == "" {
				title = text
				continue
			}
		case "subtitle", "heading2", "heading 2":
			if subtitle == "" && title != "" {
				subtitle = text
				continue
			}
		}
		body = append(body, text)
	}
	if title == "" {
		return song.FromLines(body), nil
	}
	return assemble(title, subtitle, body), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(para.Properties.Style.Val)
}

// docxParagraphText joins the text runs of a paragraph.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimRight(buf.String(), " ")
}
