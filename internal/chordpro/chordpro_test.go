package chordpro

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConvert(t *testing.T) {
	input := `# exported by some editor
{title: Amazing   Grace}
{subtitle: John Newton}


[G]Amazing [C]grace, how [G]sweet the sound

{c: Chorus}
{soc}
[D]I once was lost
{comment_italic: softly}
{eoc}
   [G]but now am found
{define: G base-fret 1 frets 3 2 0 0 0 3}
{x_custom}
`
	doc, err := Convert(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Amazing Grace" {
		t.Errorf("expected title %q, got %q", "Amazing Grace", doc.Title)
	}
	if doc.Subtitle != "John Newton" {
		t.Errorf("expected subtitle %q, got %q", "John Newton", doc.Subtitle)
	}
	want := []string{
		"[G]Amazing [C]grace, how [G]sweet the sound",
		"",
		"{Chorus}",
		"\t[D]I once was lost",
		"\t{softly}",
		"\t[G]but now am found",
	}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_ShortDirectives(t *testing.T) {
	doc, err := Convert(strings.NewReader("{t:Song}\n{st:Sub}\n{soc}\nla\n{eoc}\nlo\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Song" || doc.Subtitle != "Sub" {
		t.Errorf("unexpected furniture %q / %q", doc.Title, doc.Subtitle)
	}
	if diff := cmp.Diff([]string{"\tla", "lo"}, doc.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestConvert_BlankRunsCollapse(t *testing.T) {
	doc, err := Convert(strings.NewReader("\n\none\n\n \n\t\ntwo\n\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"one", "", "two", ""}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSquash(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"   ":              "",
		"a":                "a",
		"  a  b\t\tc  ":    "a b c",
		"[C]x   [G]y\r":    "[C]x [G]y",
		"\tindented  line": "indented line",
	}
	for in, want := range cases {
		if got := squash(in); got != want {
			t.Errorf("squash(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestDocument_WriteTo(t *testing.T) {
	doc := &Document{Title: "T", Lines: []string{"[C]la", "\tlo"}}
	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "T\n\n\n[C]la\n\tlo\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
	if n != int64(len(want)) {
		t.Errorf("expected %d bytes, got %d", len(want), n)
	}
}
