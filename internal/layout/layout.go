package layout

import (
	"fmt"
	"image"
)

// Reference resolution the region table is authored for.
const (
	ReferenceWidth  = 1920
	ReferenceHeight = 1080
)

// SlotCount is the number of reward slots a layout shows.
type SlotCount int

const (
	One   SlotCount = 1
	Two   SlotCount = 2
	Three SlotCount = 3
	Four  SlotCount = 4
)

// SearchOrder is the order the resolver tries layouts in, richest first.
var SearchOrder = []SlotCount{Four, Three, Two, One}

func (s SlotCount) String() string {
	return fmt.Sprintf("%d-slot", int(s))
}

// Layout is a fixed arrangement of reward-name regions, left to right.
type Layout struct {
	Slots   SlotCount         `json:"slots"`
	Regions []image.Rectangle `json:"regions"`
}

// Reward name strips are 230x55 at the reference resolution, 242px apart,
// centered on the screen.
const (
	regionTop    = 405
	regionWidth  = 230
	regionHeight = 55
)

func strip(x int) image.Rectangle {
	return image.Rect(x, regionTop, x+regionWidth, regionTop+regionHeight)
}

var table = map[SlotCount]Layout{
	Four:  {Slots: Four, Regions: []image.Rectangle{strip(480), strip(722), strip(964), strip(1210)}},
	Three: {Slots: Three, Regions: []image.Rectangle{strip(603), strip(845), strip(1087)}},
	Two:   {Slots: Two, Regions: []image.Rectangle{strip(724), strip(966)}},
	One:   {Slots: One, Regions: []image.Rectangle{strip(845)}},
}

// ForSlots returns the layout for n slots.
func ForSlots(n SlotCount) (Layout, bool) {
	l, ok := table[n]
	if !ok {
		return Layout{}, false
	}
	return l.clone(), true
}

// All returns every layout in search order.
func All() []Layout {
	out := make([]Layout, 0, len(SearchOrder))
	for _, n := range SearchOrder {
		out = append(out, table[n].clone())
	}
	return out
}

func (l Layout) clone() Layout {
	regions := make([]image.Rectangle, len(l.Regions))
	copy(regions, l.Regions)
	return Layout{Slots: l.Slots, Regions: regions}
}

// ScaledTo maps the layout's regions onto a capture with the given bounds.
// At the reference resolution the regions come back unchanged.
func (l Layout) ScaledTo(bounds image.Rectangle) []image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]image.Rectangle, len(l.Regions))
	for i, r := range l.Regions {
		out[i] = image.Rect(
			r.Min.X*w/ReferenceWidth,
			r.Min.Y*h/ReferenceHeight,
			r.Max.X*w/ReferenceWidth,
			r.Max.Y*h/ReferenceHeight,
		).Add(bounds.Min)
	}
	return out
}
