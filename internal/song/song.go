package song

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidSong marks a song that must not be laid out.
var ErrInvalidSong = errors.New("invalid song")

// Song is a parsed song: title furniture plus body lines.
type Song struct {
	Title    string
	Subtitle string
	Lines    []Line
}

// Load reads a song in the native format: line 1 is the title, line 2 the
// subtitle, then (after a separator when a subtitle exists) the body.
func Load(r io.Reader) (*Song, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read song: %w", err)
	}
	return FromLines(lines), nil
}

// FromLines builds a Song from already split source lines.
func FromLines(lines []string) *Song {
	s := &Song{}
	next := func() (string, bool) {
		if len(lines) == 0 {
			return "", false
		}
		line := normalize(lines[0])
		lines = lines[1:]
		return line, true
	}

	// Emptiness is judged on the raw line: a whitespace-only subtitle still
	// consumes the separator.
	title, _ := next()
	if title != "" {
		subtitle, _ := next()
		if subtitle != "" {
			next()
		}
		s.Subtitle = strings.TrimSpace(subtitle)
	}
	s.Title = strings.TrimSpace(title)

	for {
		line, ok := next()
		if !ok {
			break
		}
		if IsComment(line) {
			continue
		}
		s.Lines = append(s.Lines, Parse(line))
	}
	return s
}

// IsComment reports whether the first non-whitespace character is '#'.
func IsComment(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "#")
}

// Validate returns ErrInvalidSong when the song has no title or no body.
func (s *Song) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidSong)
	}
	if len(s.Lines) == 0 {
		return fmt.Errorf("%w: %q has no body", ErrInvalidSong, s.Title)
	}
	return nil
}

// IndexEntry is the table-of-contents label for the song.
func (s *Song) IndexEntry() string {
	if s.Subtitle == "" {
		return s.Title
	}
	return s.Title + " (" + s.Subtitle + ")"
}

func normalize(line string) string {
	return norm.NFC.String(strings.TrimRight(line, "\r"))
}
