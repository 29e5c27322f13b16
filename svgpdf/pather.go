package svgpdf

import (
	"fmt"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Pather implements the path commands of rasterx.Scanner shared by
// the PDF backends: it buffers the flattened polygons sent by the
// rasterx filler, their extent, the winding rule and the paint,
// until the backend draws them.
type Pather struct {
	Subpaths       [][]fixed.Point26_6
	NonZeroWinding bool
	Paint          color.NRGBA

	box BoundingBox
	err error
}

// NewPather returns an empty path, painted opaque black
// with the nonzero winding rule.
func NewPather() Pather {
	return Pather{NonZeroWinding: true, Paint: color.NRGBA{A: 0xff}}
}

func (p *Pather) Start(a fixed.Point26_6) {
	p.Subpaths = append(p.Subpaths, []fixed.Point26_6{a})
	p.box.Start(a)
}

func (p *Pather) Line(b fixed.Point26_6) {
	if len(p.Subpaths) == 0 {
		p.Start(b)
		return
	}
	last := len(p.Subpaths) - 1
	p.Subpaths[last] = append(p.Subpaths[last], b)
	p.box.Line(b)
}

func (p *Pather) Clear() {
	p.Subpaths = p.Subpaths[:0]
	p.box = BoundingBox{}
}

func (p *Pather) GetPathExtent() fixed.Rectangle26_6 { return p.box.Rectangle26_6 }

// SetBounds is a no-op: the page size is fixed by the surface.
func (p *Pather) SetBounds(w, h int) {}

func (p *Pather) SetWinding(useNonZeroWinding bool) { p.NonZeroWinding = useNonZeroWinding }

// SetColor accepts a color.Color or a rasterx.ColorFunc.
// Any other paint is recorded as an error.
func (p *Pather) SetColor(clr interface{}) {
	switch clr := clr.(type) {
	case color.Color:
		p.Paint = color.NRGBAModel.Convert(clr).(color.NRGBA)
	case rasterx.ColorFunc:
		p.Paint = p.sample(clr)
	case func(x, y int) color.Color:
		p.Paint = p.sample(clr)
	default:
		p.Fail(fmt.Errorf("svgpdf: unsupported paint %T", clr))
	}
}

// TODO: emit PDF shading patterns for gradients instead of a flat color.
func (p *Pather) sample(fn func(x, y int) color.Color) color.NRGBA {
	x, y := p.box.Center()
	return color.NRGBAModel.Convert(fn(x, y)).(color.NRGBA)
}

// Visible is false when Draw has nothing to paint.
func (p *Pather) Visible() bool {
	return len(p.Subpaths) != 0 && p.Paint.A != 0
}

// Alpha returns the opacity of the paint, in [0, 1].
func (p *Pather) Alpha() float64 { return float64(p.Paint.A) / 0xff }

// Fail records err, unless an error is already recorded.
func (p *Pather) Fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// Err returns the first error met while drawing.
func (p *Pather) Err() error { return p.err }

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// ToPoints converts a from device units to points.
func ToPoints(a fixed.Point26_6, scale float64) (float64, float64) {
	x, y := fixedTof(a)
	return x / scale, y / scale
}
