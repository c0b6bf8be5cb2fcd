package layout

import (
	"fmt"

	"github.com/dgallion1/rechord/internal/song"
)

// Metrics measures text set in the font bound to each TextType. All values
// are in points.
type Metrics interface {
	Width(t song.TextType, text string) float64
	LineHeight(t song.TextType) float64
	Baseline(t song.TextType) float64
}

// Settings is the page geometry and spacing used by the flow engine.
type Settings struct {
	Width  float64
	Height float64

	MarginLeft   float64
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64

	Indent  float64 // applied to indented source lines
	Outdent float64 // offset of indented block runs

	LineGap   float64
	StanzaGap float64
	TitleGap  float64
}

// Validate checks that the margins leave a usable content area.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("page size must be positive, got %gx%g", s.Width, s.Height)
	}
	if s.MarginLeft+s.MarginRight >= s.Width {
		return fmt.Errorf("horizontal margins (%g + %g) leave no room on a %g wide page", s.MarginLeft, s.MarginRight, s.Width)
	}
	if s.MarginTop+s.MarginBottom >= s.Height {
		return fmt.Errorf("vertical margins (%g + %g) leave no room on a %g high page", s.MarginTop, s.MarginBottom, s.Height)
	}
	return nil
}

// Context bundles immutable settings with the metrics backend. Every Page of
// a document shares one Context.
type Context struct {
	settings Settings
	metrics  Metrics

	left, right, top, bottom float64
}

// NewContext validates the settings and precomputes the content edges.
func NewContext(s Settings, m Metrics) (*Context, error) {
	if m == nil {
		return nil, fmt.Errorf("layout: metrics backend is required")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return &Context{
		settings: s,
		metrics:  m,
		left:     s.MarginLeft,
		top:      s.MarginTop,
		right:    s.Width - s.MarginRight,
		bottom:   s.Height - s.MarginBottom,
	}, nil
}

// Settings returns a copy of the page settings.
func (c *Context) Settings() Settings {
	return c.settings
}

// Metrics returns the metrics backend.
func (c *Context) Metrics() Metrics {
	return c.metrics
}

// ContentHeight is the vertical space between the top and bottom margins.
func (c *Context) ContentHeight() float64 {
	return c.bottom - c.top
}

// NewPage opens a page with the cursor at the top-left content corner.
// A number of 0 leaves the page unnumbered.
func (c *Context) NewPage(number int) *Page {
	p := &Page{ctx: c, x: c.left, y: c.top}
	if number > 0 {
		p.number = fmt.Sprint(number)
	}
	return p
}
