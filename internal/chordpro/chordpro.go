// Package chordpro converts ChordPro song files into the plain chord-over-text
// dialect read by the song package.
package chordpro

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Document is a converted song: title and subtitle lifted out of the
// directives, followed by the body lines in the native dialect.
type Document struct {
	Title    string
	Subtitle string
	Lines    []string
}

// Convert reads a ChordPro file. Chord brackets pass through unchanged since
// both dialects write chords as [C]. Directives other than title, subtitle,
// chorus markers and comments are dropped.
func Convert(r io.Reader) (*Document, error) {
	doc := &Document{}
	chorus := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := scanner.Text()
		indented := raw != "" && raw[0] <= ' '

		line := squash(raw)
		if line == "" {
			// Collapse runs of blank lines and drop leading ones.
			if n := len(doc.Lines); n > 0 && doc.Lines[n-1] != "" {
				doc.Lines = append(doc.Lines, "")
			}
			continue
		}
		if line[0] == '#' {
			continue
		}
		if line[0] == '{' && line[len(line)-1] == '}' {
			key, value := directive(line)
			switch key {
			case "t", "title":
				doc.Title = value
			case "st", "subtitle":
				doc.Subtitle = value
			case "soc", "start_of_chorus":
				chorus = true
			case "eoc", "end_of_chorus":
				chorus = false
			case "c", "comment", "ci", "comment_italic", "cb", "comment_box":
				comment := "{" + value + "}"
				if chorus {
					comment = "\t" + comment
				}
				doc.Lines = append(doc.Lines, comment)
			}
			continue
		}
		if chorus || indented {
			line = "\t" + line
		}
		doc.Lines = append(doc.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chordpro: %w", err)
	}
	return doc, nil
}

// Source returns the document as native source lines: title, subtitle, a
// separator, then the body.
func (d *Document) Source() []string {
	out := make([]string, 0, len(d.Lines)+3)
	out = append(out, d.Title, d.Subtitle, "")
	return append(out, d.Lines...)
}

// WriteTo writes the native source, one line per row.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, line := range d.Source() {
		n, err := bw.WriteString(line + "\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// squash trims control and space bytes from both ends and collapses interior
// runs of them to a single space.
func squash(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	pending := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c <= ' ' {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte(' ')
			pending = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

// directive splits "{key: value}" into its parts. A directive without a colon
// has an empty value.
func directive(line string) (key, value string) {
	inner := line[1 : len(line)-1]
	key, value, _ = strings.Cut(inner, ":")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}
