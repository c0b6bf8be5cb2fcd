package layout

import (
	"math"

	"github.com/dgallion1/rechord/internal/song"
)

// Fragment is a run of text placed on a page. Y is the top of the line box;
// renderers add the type's baseline.
type Fragment struct {
	Text string
	Type song.TextType
	X    float64
	Y    float64
}

// Leader is a dotted connector between the two halves of a furniture line.
type Leader struct {
	FromX float64
	ToX   float64
	Y     float64
}

// Side positions the page number.
type Side int

const (
	SideLeft   Side = -1
	SideCenter Side = 0
	SideRight  Side = 1
)

// Page is the layout cursor for one output page. Pages are filled strictly
// in order and never touched again once the document moves on.
type Page struct {
	ctx    *Context
	number string
	x, y   float64

	fragments []Fragment
	leaders   []Leader
}

// Number returns the page label, or "" for unnumbered pages.
func (p *Page) Number() string {
	return p.number
}

// Fragments returns the placed text runs in placement order.
func (p *Page) Fragments() []Fragment {
	return p.fragments
}

// Leaders returns the placed leader lines.
func (p *Page) Leaders() []Leader {
	return p.leaders
}

// Cursor returns the current layout position.
func (p *Page) Cursor() (x, y float64) {
	return p.x, p.y
}

// IsEmpty reports whether nothing has been placed on the page.
func (p *Page) IsEmpty() bool {
	return len(p.fragments) == 0 && len(p.leaders) == 0
}

// Indent shifts the cursor for an indented source line. Call it once per
// line, before its first block.
func (p *Page) Indent(isIndented bool) {
	if isIndented {
		p.x += p.ctx.settings.Indent
	}
}

// Add places block, which belongs to line, at the cursor. It returns false
// without changing the page when the line's tracks do not fit above the
// bottom margin. A block that does not fit horizontally wraps to a new row;
// with force set it is drawn in place even if it overflows the right margin.
func (p *Page) Add(line *song.Line, block *song.Block, force bool) bool {
	return p.add(line, block, force, false)
}

// Overfill places block like Add but ignores the bottom margin. It is the
// last resort for content taller than an empty page.
func (p *Page) Overfill(line *song.Line, block *song.Block) {
	p.add(line, block, false, true)
}

func (p *Page) add(line *song.Line, block *song.Block, force, unbounded bool) bool {
	m := p.ctx.metrics
	outdent := p.ctx.settings.Outdent

	// Every track of the line advances together, so the height comes from
	// the line even when this block lacks one of the tracks.
	height := lineHeight(m, line)
	width := 0.0
	for _, t := range song.ContentTypes {
		if !block.Has(t) {
			continue
		}
		w := m.Width(t, block.Get(t))
		if block.IsIndented(t) {
			w += outdent
		}
		width = math.Max(width, w)
	}

	if !unbounded && p.y+height > p.ctx.bottom {
		return false
	}

	// At the start of a line, indented lyric or annotation text pulls the
	// chords outward so that the text stays flush.
	if line.IsFirst(block) && (block.IsIndented(song.Text) || block.IsIndented(song.Subtext)) {
		p.x -= outdent
	}

	if !force && p.x+width > p.ctx.right {
		p.y += height
		p.x = p.ctx.left
		return p.add(line, block, true, unbounded)
	}

	textY := p.y
	for _, t := range song.ContentTypes {
		if block.Has(t) {
			x := p.x
			if block.IsIndented(t) {
				x += outdent
			}
			p.fragments = append(p.fragments, Fragment{Text: block.Get(t), Type: t, X: x, Y: textY})
		}
		if line.Has(t) {
			textY += m.LineHeight(t)
		}
	}
	p.x += width
	return true
}

// AddLine places a furniture line. When right is non-empty it is aligned to
// the right margin and joined to left by a leader. It returns false without
// changing the page when the line does not fit.
func (p *Page) AddLine(t song.TextType, left, right string) bool {
	if p.y+p.ctx.metrics.LineHeight(t) > p.ctx.bottom {
		return false
	}
	p.placeLine(t, left, right)
	return true
}

// OverfillLine places a furniture line ignoring the bottom margin.
func (p *Page) OverfillLine(t song.TextType, left, right string) {
	p.placeLine(t, left, right)
}

func (p *Page) placeLine(t song.TextType, left, right string) {
	m := p.ctx.metrics
	if left != "" {
		p.fragments = append(p.fragments, Fragment{Text: left, Type: t, X: p.ctx.left, Y: p.y})
	}
	if right != "" {
		base := m.Baseline(t)
		rightWidth := m.Width(t, right)
		from := p.ctx.left + m.Width(t, left) + base
		to := p.ctx.right - rightWidth - base
		if from < to {
			p.leaders = append(p.leaders, Leader{FromX: from, ToX: to, Y: p.y + base})
		}
		p.fragments = append(p.fragments, Fragment{Text: right, Type: t, X: p.ctx.right - rightWidth, Y: p.y})
	}
	p.y += m.LineHeight(t)
}

// EndLine finishes a body line: the cursor drops by the line's track heights
// plus the stanza gap for blank lines or the line gap otherwise.
func (p *Page) EndLine(line *song.Line) {
	p.y += lineHeight(p.ctx.metrics, line)
	if line.IsBlank() {
		p.y += p.ctx.settings.StanzaGap
	} else {
		p.y += p.ctx.settings.LineGap
	}
	p.x = p.ctx.left
}

// EndTitle adds the gap between a song's title block and its body.
func (p *Page) EndTitle() {
	p.y += p.ctx.settings.TitleGap
	p.x = p.ctx.left
}

// PlaceNumber draws the page label at the bottom margin. Unnumbered pages
// are left untouched.
func (p *Page) PlaceNumber(side Side) {
	if p.number == "" {
		return
	}
	w := p.ctx.metrics.Width(song.Number, p.number)
	span := p.ctx.right - p.ctx.left - w
	x := p.ctx.left + float64(side+1)*span*0.5
	p.fragments = append(p.fragments, Fragment{Text: p.number, Type: song.Number, X: x, Y: p.ctx.bottom})
}

func lineHeight(m Metrics, line *song.Line) float64 {
	h := 0.0
	for _, t := range song.ContentTypes {
		if line.Has(t) {
			h += m.LineHeight(t)
		}
	}
	return h
}
