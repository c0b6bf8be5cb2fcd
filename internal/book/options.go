package book

import (
	"errors"
	"fmt"
)

var (
	// ErrUnplaceable is returned when a unit does not fit even on a fresh,
	// empty page and the overflow policy is OverflowReject.
	ErrUnplaceable = errors.New("content does not fit on an empty page")

	// ErrNotImposable is returned when booklet order is requested for a
	// page count that is not a multiple of four.
	ErrNotImposable = errors.New("page count is not a multiple of four")
)

// IndexLocation says where the table of contents goes.
type IndexLocation string

const (
	IndexNone  IndexLocation = "none"
	IndexFront IndexLocation = "front"
	IndexBack  IndexLocation = "back"
)

// Presentation is the physical arrangement of pages on sheets.
type Presentation string

const (
	Single  Presentation = "single"
	TwoUp   Presentation = "2up"
	Booklet Presentation = "booklet"
)

// PagesPerSheet is the number of logical pages drawn side by side.
func (p Presentation) PagesPerSheet() int {
	if p == TwoUp || p == Booklet {
		return 2
	}
	return 1
}

// OverflowPolicy decides what happens to a unit that fails on an empty page.
type OverflowPolicy string

const (
	OverflowReject OverflowPolicy = "reject"
	OverflowForce  OverflowPolicy = "force"
)

// Options configures document assembly.
type Options struct {
	Index        IndexLocation
	Presentation Presentation
	Overflow     OverflowPolicy
}

// DefaultOptions mirrors the defaults of the typesetting config.
func DefaultOptions() Options {
	return Options{
		Index:        IndexNone,
		Presentation: Single,
		Overflow:     OverflowReject,
	}
}

// ParseIndexLocation validates an index-location value.
func ParseIndexLocation(s string) (IndexLocation, error) {
	switch l := IndexLocation(s); l {
	case IndexNone, IndexFront, IndexBack:
		return l, nil
	}
	return "", fmt.Errorf("unknown index location %q (want none, front or back)", s)
}

// ParsePresentation validates a layout value.
func ParsePresentation(s string) (Presentation, error) {
	switch p := Presentation(s); p {
	case Single, TwoUp, Booklet:
		return p, nil
	}
	return "", fmt.Errorf("unknown layout %q (want single, 2up or booklet)", s)
}

// ParseOverflowPolicy validates an overflow value.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch o := OverflowPolicy(s); o {
	case OverflowReject, OverflowForce:
		return o, nil
	}
	return "", fmt.Errorf("unknown overflow policy %q (want reject or force)", s)
}
