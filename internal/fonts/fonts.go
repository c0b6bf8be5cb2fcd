// Package fonts measures text for layout using TrueType faces from the Go
// font family or from files on disk.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dgallion1/rechord/internal/song"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
	"golang.org/x/image/font/opentype"
)

var builtin = map[string][]byte{
	"regular":      goregular.TTF,
	"medium":       gomedium.TTF,
	"italic":       goitalic.TTF,
	"mediumitalic": gomediumitalic.TTF,
	"bold":         gobold.TTF,
	"bolditalic":   gobolditalic.TTF,
	"mono":         gomono.TTF,
	"monobold":     gomonobold.TTF,
	"monoitalic":   gomonoitalic.TTF,
	"smallcaps":    gosmallcaps.TTF,
}

// ErrCFFOutlines rejects OpenType fonts with CFF outlines, which cannot be
// embedded in PDF output.
var ErrCFFOutlines = errors.New("font has CFF outlines; use a TrueType font")

// Builtin lists the names of the embedded faces.
func Builtin() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spec describes the face bound to one TextType. Family is a builtin name or
// a path to a .ttf file.
type Spec struct {
	Family     string
	Size       float64
	Baseline   float64
	LineHeight float64
}

// Face is a sized font face. Measuring is safe for concurrent use.
type Face struct {
	spec Spec
	ttf  []byte

	mu   sync.Mutex
	face font.Face
}

// Spec returns the face's specification.
func (f *Face) Spec() Spec { return f.spec }

// TTF returns the raw font file, for embedding by renderers.
func (f *Face) TTF() []byte { return f.ttf }

// Width returns the advance width of text in points.
func (f *Face) Width(text string) float64 {
	if text == "" {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return float64(font.MeasureString(f.face, text)) / 64
}

// Set binds a Face to every TextType. It implements layout.Metrics.
type Set struct {
	faces map[song.TextType]*Face
}

// NewSet loads the faces described by specs. Every TextType needs a spec.
func NewSet(specs map[song.TextType]Spec) (*Set, error) {
	parsed := make(map[string]*opentype.Font)
	raw := make(map[string][]byte)
	s := &Set{faces: make(map[song.TextType]*Face, len(song.AllTypes))}

	for _, t := range song.AllTypes {
		spec, ok := specs[t]
		if !ok {
			return nil, fmt.Errorf("no font configured for %s text", t)
		}
		if spec.Size <= 0 {
			return nil, fmt.Errorf("%s font size must be positive, got %g", t, spec.Size)
		}

		f, ok := parsed[spec.Family]
		if !ok {
			data, err := load(spec.Family)
			if err != nil {
				return nil, fmt.Errorf("%s font: %w", t, err)
			}
			f, err = opentype.Parse(data)
			if err != nil {
				return nil, fmt.Errorf("%s font: parse %q: %w", t, spec.Family, err)
			}
			parsed[spec.Family] = f
			raw[spec.Family] = data
		}

		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    spec.Size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return nil, fmt.Errorf("%s font: %w", t, err)
		}
		s.faces[t] = &Face{spec: spec, ttf: raw[spec.Family], face: face}
	}
	return s, nil
}

// Face returns the face bound to t.
func (s *Set) Face(t song.TextType) *Face {
	return s.faces[t]
}

func (s *Set) Width(t song.TextType, text string) float64 {
	return s.faces[t].Width(text)
}

func (s *Set) LineHeight(t song.TextType) float64 {
	return s.faces[t].spec.LineHeight
}

func (s *Set) Baseline(t song.TextType) float64 {
	return s.faces[t].spec.Baseline
}

// Close releases the underlying faces.
func (s *Set) Close() error {
	for _, f := range s.faces {
		f.mu.Lock()
		f.face.Close()
		f.mu.Unlock()
	}
	return nil
}

func load(family string) ([]byte, error) {
	if data, ok := builtin[strings.ToLower(family)]; ok {
		return data, nil
	}
	if !strings.HasSuffix(strings.ToLower(family), ".ttf") {
		return nil, fmt.Errorf("unknown font %q (builtin: %s, or a .ttf path)", family, strings.Join(Builtin(), ", "))
	}
	data, err := os.ReadFile(family)
	if err != nil {
		return nil, fmt.Errorf("read font file: %w", err)
	}
	// The PDF renderer embeds TrueType outlines only.
	if bytes.HasPrefix(data, []byte("OTTO")) {
		return nil, fmt.Errorf("%s: %w", family, ErrCFFOutlines)
	}
	return data, nil
}
