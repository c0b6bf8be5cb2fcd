package song

import "strings"

// Block is one horizontally positioned group holding at most one run per
// content track. Blocks are built by Parse and never modified afterwards.
type Block struct {
	runs     [len(ContentTypes)]string
	indented [len(ContentTypes)]bool
}

// Has reports whether the track for t holds any text.
func (b *Block) Has(t TextType) bool {
	return t.IsContent() && b.runs[t] != ""
}

// Get returns the run stored for t, or "" for furniture types.
func (b *Block) Get(t TextType) string {
	if !t.IsContent() {
		return ""
	}
	return b.runs[t]
}

// IsIndented reports whether the run for t was marked with a leading
// whitespace character. It is false when the track is empty.
func (b *Block) IsIndented(t TextType) bool {
	return b.Has(t) && b.indented[t]
}

func (b *Block) add(token string, t TextType) {
	// A single leading whitespace character on the first run of a track is an
	// offset marker, not content.
	if b.runs[t] == "" && token != "" && isBlank(token[0]) {
		b.indented[t] = true
		token = token[1:]
	}
	b.runs[t] += token
	// Chords never carry their own trailing space, so consecutive chords
	// would otherwise touch.
	if t == Chord {
		b.runs[t] += " "
	}
}

// Line is one source line split into Blocks. A Line without Blocks is a
// stanza separator.
type Line struct {
	blocks   []Block
	has      [len(ContentTypes)]bool
	indented bool
}

// Blocks returns the Blocks in rendering order. Callers must not modify them.
func (l *Line) Blocks() []Block {
	return l.blocks
}

// IsBlank reports whether the line separates stanzas.
func (l *Line) IsBlank() bool {
	return len(l.blocks) == 0
}

// IsIndented reports whether the source line started with whitespace.
func (l *Line) IsIndented() bool {
	return l.indented
}

// Has reports whether any Block of the line carries text of type t.
func (l *Line) Has(t TextType) bool {
	return t.IsContent() && l.has[t]
}

// IsFirst reports whether b is the line's leading Block.
func (l *Line) IsFirst(b *Block) bool {
	return len(l.blocks) > 0 && b == &l.blocks[0]
}

// Parse tokenizes one body line. Comment lines must be filtered by the caller.
func Parse(raw string) Line {
	var line Line

	pos := 0
	for pos < len(raw) && isBlank(raw[pos]) {
		pos++
	}
	if pos == len(raw) {
		return line
	}
	line.indented = pos != 0

	for pos < len(raw) {
		var token string
		var t TextType
		token, t, pos = nextToken(raw, pos)

		if len(line.blocks) == 0 || startsBlock(&line.blocks[len(line.blocks)-1], t) {
			line.blocks = append(line.blocks, Block{})
		}
		line.blocks[len(line.blocks)-1].add(token, t)
	}

	for i := range line.blocks {
		for _, t := range ContentTypes {
			line.has[t] = line.has[t] || line.blocks[i].Has(t)
		}
	}
	return line
}

// startsBlock decides whether a token of type t opens a new Block. Chords and
// annotations attach to the lyric that follows them, so they open a new Block
// once the current one already has its lyric or annotation.
func startsBlock(current *Block, t TextType) bool {
	if t == Text {
		return current.Has(Text)
	}
	return current.Has(Text) || current.Has(Subtext)
}

// nextToken reads the token starting at pos and returns it with its type and
// the position just past it. An unterminated '[' or '{' runs to end of line.
func nextToken(line string, pos int) (string, TextType, int) {
	t := Text
	start := pos
	switch line[pos] {
	case '[':
		t, start = Chord, pos+1
	case '{':
		t, start = Subtext, pos+1
	}

	var end int
	switch t {
	case Chord:
		end = strings.IndexByte(line[start:], ']')
	case Subtext:
		end = strings.IndexByte(line[start:], '}')
	default:
		end = strings.IndexAny(line[start:], "[{")
	}
	if end < 0 {
		end = len(line)
	} else {
		end += start
	}

	next := end
	if t != Text && end < len(line) {
		next++
	}
	return line[start:end], t, next
}

func isBlank(c byte) bool {
	return c > 0 && c <= ' '
}
