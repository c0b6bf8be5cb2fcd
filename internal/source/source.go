// Package source reads songs from the file formats a songbook is assembled
// from. Every format ends up in the native chord-over-text model.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/rechord/internal/song"
)

// ErrUnsupported is returned for file extensions no parser handles.
var ErrUnsupported = errors.New("unsupported file extension")

// Parser converts raw file bytes into a Song.
type Parser interface {
	Parse(r io.Reader, filename string) (*song.Song, error)
}

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".song":     true,
	".chords":   true,
	".cho":      true,
	".chopro":   true,
	".crd":      true,
	".pro":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".song", ".chords":
		return &TextParser{}, nil
	case ".cho", ".chopro", ".crd", ".pro":
		return &ChordProParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Extensions returns the supported extensions in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(SupportedExtensions))
	for ext := range SupportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// LoadFile opens path and parses it with the parser for its extension.
func LoadFile(path string) (*song.Song, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open song: %w", err)
	}
	defer f.Close()

	s, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// assemble builds a song from furniture recovered out of document structure
// plus body lines in the native dialect. Without a title the lines are read
// as a native song, so the first line becomes the title.
func assemble(title, subtitle string, body []string) *song.Song {
	body = trimBlank(body)
	title = strings.TrimSpace(title)
	if title == "" {
		return song.FromLines(body)
	}
	lines := []string{title, strings.TrimSpace(subtitle)}
	if lines[1] != "" {
		lines = append(lines, "")
	}
	return song.FromLines(append(lines, body...))
}

// trimBlank drops leading and trailing blank lines and collapses interior
// runs of them to one stanza break.
func trimBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r\n")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
