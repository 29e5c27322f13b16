package svgpdf

import (
	"golang.org/x/image/math/fixed"
)

// BoundingBox accumulates the extent of a path, needed when
// painting gradients with objectBoundingBox units.
// The zero value is an empty box.
type BoundingBox struct {
	fixed.Rectangle26_6
	started bool
}

// Start begins a new subpath at a.
func (b *BoundingBox) Start(a fixed.Point26_6) {
	if !b.started {
		b.Rectangle26_6 = fixed.Rectangle26_6{Min: a, Max: a} // degenerate case
		b.started = true
		return
	}
	b.add(a)
}

// Line extends the box to contain p.
func (b *BoundingBox) Line(p fixed.Point26_6) {
	if !b.started {
		b.Start(p)
		return
	}
	b.add(p)
}

func (b *BoundingBox) add(p fixed.Point26_6) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
}

// Empty is true until a point has been added.
func (b *BoundingBox) Empty() bool { return !b.started }

// Center returns the middle of the box, rounded down to whole units.
func (b *BoundingBox) Center() (x, y int) {
	return (b.Min.X + b.Max.X).Floor() / 2, (b.Min.Y + b.Max.Y).Floor() / 2
}
