package layout

import (
	"testing"

	"github.com/dgallion1/rechord/internal/song"
	"github.com/google/go-cmp/cmp"
)

// fixedMetrics advances every character by 2pt.
type fixedMetrics struct{}

var testHeights = map[song.TextType]float64{
	song.Chord:    10,
	song.Text:     12,
	song.Subtext:  8,
	song.Title:    15,
	song.Subtitle: 11,
	song.Number:   9,
	song.Index:    10,
}

func (fixedMetrics) Width(t song.TextType, text string) float64 {
	return 2 * float64(len([]rune(text)))
}

func (fixedMetrics) LineHeight(t song.TextType) float64 { return testHeights[t] }

func (fixedMetrics) Baseline(t song.TextType) float64 { return 3 }

func testSettings() Settings {
	return Settings{
		Width: 200, Height: 100,
		MarginLeft: 10, MarginTop: 10, MarginRight: 10, MarginBottom: 10,
		Indent: 20, Outdent: 5,
		LineGap: 2, StanzaGap: 8, TitleGap: 6,
	}
}

func newTestPage(t *testing.T, number int) *Page {
	t.Helper()
	ctx, err := NewContext(testSettings(), fixedMetrics{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ctx.NewPage(number)
}

func addLine(t *testing.T, p *Page, line *song.Line) {
	t.Helper()
	for i := range line.Blocks() {
		if !p.Add(line, &line.Blocks()[i], false) {
			t.Fatalf("block %d did not fit", i)
		}
	}
}

func assertCursor(t *testing.T, p *Page, wantX, wantY float64) {
	t.Helper()
	x, y := p.Cursor()
	if x != wantX || y != wantY {
		t.Errorf("expected cursor (%g, %g), got (%g, %g)", wantX, wantY, x, y)
	}
}

func TestNewContext_Validation(t *testing.T) {
	if _, err := NewContext(testSettings(), nil); err == nil {
		t.Error("expected error without metrics")
	}
	s := testSettings()
	s.MarginLeft, s.MarginRight = 100, 100
	if _, err := NewContext(s, fixedMetrics{}); err == nil {
		t.Error("expected error when margins cover the page")
	}
	s = testSettings()
	s.Height = 0
	if _, err := NewContext(s, fixedMetrics{}); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestNewPage_StartsAtMargin(t *testing.T) {
	p := newTestPage(t, 0)
	assertCursor(t, p, 10, 10)
	if p.Number() != "" {
		t.Errorf("expected unnumbered page, got %q", p.Number())
	}
	if !p.IsEmpty() {
		t.Error("expected new page to be empty")
	}
	if got := newTestPage(t, 7).Number(); got != "7" {
		t.Errorf("expected number %q, got %q", "7", got)
	}
}

func TestAdd_PlacesTracksInOrder(t *testing.T) {
	p := newTestPage(t, 1)
	line := song.Parse("[C]Hello [G]world")
	addLine(t, p, &line)

	want := []Fragment{
		{Text: "C ", Type: song.Chord, X: 10, Y: 10},
		{Text: "Hello ", Type: song.Text, X: 10, Y: 20},
		{Text: "G ", Type: song.Chord, X: 22, Y: 10},
		{Text: "world", Type: song.Text, X: 22, Y: 20},
	}
	if diff := cmp.Diff(want, p.Fragments()); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	assertCursor(t, p, 32, 10)
}

func TestAdd_MissingTrackKeepsLineSpacing(t *testing.T) {
	// The second block has no chord, but its text still sits below the
	// chord track supplied by the first block.
	p := newTestPage(t, 1)
	line := song.Parse("[C]la {soft}")
	addLine(t, p, &line)

	frags := p.Fragments()
	last := frags[len(frags)-1]
	if last.Type != song.Subtext || last.Y != 10+10+12 {
		t.Errorf("expected subtext at y=32, got %+v", last)
	}
}

func TestAdd_VerticalOverflowLeavesPageUntouched(t *testing.T) {
	p := newTestPage(t, 1)
	line := song.Parse("[C]Hi")
	for i := 0; i < 3; i++ {
		addLine(t, p, &line)
		p.EndLine(&line)
	}
	assertCursor(t, p, 10, 82)
	before := len(p.Fragments())

	if p.Add(&line, &line.Blocks()[0], false) {
		t.Fatal("expected block not to fit below y=82")
	}
	if len(p.Fragments()) != before {
		t.Errorf("expected no new fragments, got %d", len(p.Fragments())-before)
	}
	assertCursor(t, p, 10, 82)
}

func TestAdd_WrapsWithinPage(t *testing.T) {
	p := newTestPage(t, 1)
	a, b := repeat('a', 50), repeat('b', 50)
	line := song.Parse("[C]" + a + "[G]" + b)
	addLine(t, p, &line)

	frags := p.Fragments()
	if len(frags) != 4 {
		t.Fatalf("expected 4 fragments, got %d", len(frags))
	}
	if frags[2].X != 10 || frags[2].Y != 32 {
		t.Errorf("expected wrapped chord at (10, 32), got (%g, %g)", frags[2].X, frags[2].Y)
	}
	if frags[3].Y != 42 {
		t.Errorf("expected wrapped text at y=42, got %g", frags[3].Y)
	}
	assertCursor(t, p, 110, 32)
}

func TestAdd_ForcedOverflowWrapsOnce(t *testing.T) {
	p := newTestPage(t, 1)
	line := song.Parse(repeat('x', 100))
	if !p.Add(&line, &line.Blocks()[0], false) {
		t.Fatal("expected over-wide block to be placed")
	}
	// One row advance, never more.
	frags := p.Fragments()
	if len(frags) != 1 || frags[0].X != 10 || frags[0].Y != 22 {
		t.Fatalf("expected single fragment at (10, 22), got %+v", frags)
	}
	assertCursor(t, p, 210, 22)
}

func TestAdd_ForceSkipsHorizontalCheck(t *testing.T) {
	p := newTestPage(t, 1)
	line := song.Parse(repeat('x', 100))
	if !p.Add(&line, &line.Blocks()[0], true) {
		t.Fatal("expected forced block to be placed")
	}
	assertCursor(t, p, 210, 10)
}

func TestAdd_OutdentsIndentedFirstBlock(t *testing.T) {
	p := newTestPage(t, 1)
	line := song.Parse("[C] Hi")
	addLine(t, p, &line)

	want := []Fragment{
		{Text: "C ", Type: song.Chord, X: 5, Y: 10},
		{Text: "Hi", Type: song.Text, X: 10, Y: 20},
	}
	if diff := cmp.Diff(want, p.Fragments()); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	assertCursor(t, p, 14, 10)
}

func TestIndent(t *testing.T) {
	p := newTestPage(t, 1)
	p.Indent(false)
	assertCursor(t, p, 10, 10)
	p.Indent(true)
	assertCursor(t, p, 30, 10)
}

func TestEndLine_VerticalAdvance(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		wantY float64
	}{
		{"chord and text", "[C]Hi", 10 + 22 + 2},
		{"all tracks", "[C]Hi{x}", 10 + 30 + 2},
		{"text only", "Hi", 10 + 12 + 2},
		{"blank", "", 10 + 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestPage(t, 1)
			line := song.Parse(tc.raw)
			p.Indent(line.IsIndented())
			for i := range line.Blocks() {
				p.Add(&line, &line.Blocks()[i], false)
			}
			p.EndLine(&line)
			assertCursor(t, p, 10, tc.wantY)
		})
	}
}

func TestEndLine_IndependentOfWraps(t *testing.T) {
	p := newTestPage(t, 1)
	line := song.Parse("[C]" + repeat('a', 50) + "[G]" + repeat('b', 50))
	addLine(t, p, &line)
	p.EndLine(&line)
	// One wrap (22) plus the line itself (22) plus the line gap.
	assertCursor(t, p, 10, 10+22+22+2)
}

func TestEndTitle(t *testing.T) {
	p := newTestPage(t, 1)
	p.Indent(true)
	p.EndTitle()
	assertCursor(t, p, 10, 16)
}

func TestAddLine_LeftOnly(t *testing.T) {
	p := newTestPage(t, 1)
	if !p.AddLine(song.Title, "Greensleeves", "") {
		t.Fatal("expected title to fit")
	}
	want := []Fragment{{Text: "Greensleeves", Type: song.Title, X: 10, Y: 10}}
	if diff := cmp.Diff(want, p.Fragments()); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	if len(p.Leaders()) != 0 {
		t.Errorf("expected no leaders, got %d", len(p.Leaders()))
	}
	assertCursor(t, p, 10, 25)
}

func TestAddLine_LeaderRow(t *testing.T) {
	p := newTestPage(t, 0)
	if !p.AddLine(song.Index, "Song", "12") {
		t.Fatal("expected index row to fit")
	}
	wantFrags := []Fragment{
		{Text: "Song", Type: song.Index, X: 10, Y: 10},
		{Text: "12", Type: song.Index, X: 186, Y: 10},
	}
	if diff := cmp.Diff(wantFrags, p.Fragments()); diff != "" {
		t.Errorf("fragments mismatch (-want +got):\n%s", diff)
	}
	wantLeaders := []Leader{{FromX: 21, ToX: 183, Y: 13}}
	if diff := cmp.Diff(wantLeaders, p.Leaders()); diff != "" {
		t.Errorf("leaders mismatch (-want +got):\n%s", diff)
	}
	assertCursor(t, p, 10, 20)
}

func TestAddLine_OverflowLeavesPageUntouched(t *testing.T) {
	p := newTestPage(t, 0)
	for i := 0; i < 8; i++ {
		if !p.AddLine(song.Index, "row", "1") {
			t.Fatalf("row %d should fit", i)
		}
	}
	before := len(p.Fragments())
	if p.AddLine(song.Index, "row", "1") {
		t.Fatal("expected ninth row not to fit")
	}
	if len(p.Fragments()) != before {
		t.Error("expected no mutation on failure")
	}
	assertCursor(t, p, 10, 90)
}

func TestOverfill_IgnoresBottomMargin(t *testing.T) {
	p := newTestPage(t, 1)
	for i := 0; i < 8; i++ {
		p.AddLine(song.Index, "row", "")
	}
	line := song.Parse("[C]Hi")
	if p.Add(&line, &line.Blocks()[0], false) {
		t.Fatal("expected Add to refuse")
	}
	p.Overfill(&line, &line.Blocks()[0])
	p.OverfillLine(song.Index, "more", "")
	if got := len(p.Fragments()); got != 8+2+1 {
		t.Errorf("expected 11 fragments, got %d", got)
	}
}

func TestPlaceNumber(t *testing.T) {
	cases := []struct {
		side  Side
		wantX float64
	}{
		{SideLeft, 10},
		{SideCenter, 99},
		{SideRight, 188},
	}
	for _, tc := range cases {
		p := newTestPage(t, 3)
		p.PlaceNumber(tc.side)
		want := []Fragment{{Text: "3", Type: song.Number, X: tc.wantX, Y: 90}}
		if diff := cmp.Diff(want, p.Fragments()); diff != "" {
			t.Errorf("side %d: fragments mismatch (-want +got):\n%s", tc.side, diff)
		}
	}
}

func TestPlaceNumber_UnnumberedIsNoop(t *testing.T) {
	p := newTestPage(t, 0)
	p.PlaceNumber(SideCenter)
	p.PlaceNumber(SideRight)
	if !p.IsEmpty() {
		t.Errorf("expected no fragments, got %d", len(p.Fragments()))
	}
}

func repeat(c rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = c
	}
	return string(out)
}
