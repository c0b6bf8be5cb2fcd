package song

import "fmt"

// TextType classifies a run of text. Chord, Text and Subtext are the content
// tracks of a song body; the rest are page furniture.
type TextType int

const (
	Chord TextType = iota
	Text
	Subtext
	Title
	Subtitle
	Number
	Index
)

// ContentTypes lists the body tracks in the order they stack vertically.
var ContentTypes = [...]TextType{Chord, Text, Subtext}

// AllTypes lists every TextType in declaration order.
var AllTypes = [...]TextType{Chord, Text, Subtext, Title, Subtitle, Number, Index}

var typeNames = map[TextType]string{
	Chord:    "chord",
	Text:     "text",
	Subtext:  "subtext",
	Title:    "title",
	Subtitle: "subtitle",
	Number:   "number",
	Index:    "index",
}

func (t TextType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TextType(%d)", int(t))
}

// IsContent reports whether t can appear inside a Block.
func (t TextType) IsContent() bool {
	return t == Chord || t == Text || t == Subtext
}

// ParseTextType maps a config-style name ("chord", "index", ...) to its TextType.
func ParseTextType(name string) (TextType, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown text type: %q", name)
}
