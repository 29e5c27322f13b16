package svgpdf

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func fToFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func TestPatherDefaults(t *testing.T) {
	p := NewPather()
	assert.True(t, p.NonZeroWinding)
	assert.Equal(t, 1., p.Alpha())
	assert.False(t, p.Visible())

	p.Line(fToFixed(1, 2)) // implicit start
	require.Len(t, p.Subpaths, 1)
	assert.True(t, p.Visible())
	assert.Equal(t, fixed.Rectangle26_6{Min: fToFixed(1, 2), Max: fToFixed(1, 2)}, p.GetPathExtent())

	p.SetColor(color.Transparent)
	assert.False(t, p.Visible())
}

func TestPatherColorFunc(t *testing.T) {
	p := NewPather()
	p.Start(fToFixed(0, 0))
	p.Line(fToFixed(8, 4))
	p.SetColor(rasterx.ColorFunc(func(x, y int) color.Color {
		return color.NRGBA{R: uint8(x), G: uint8(y), A: 0xff}
	}))
	require.NoError(t, p.Err())
	assert.Equal(t, color.NRGBA{R: 4, G: 2, A: 0xff}, p.Paint)
}

func TestPatherKeepsFirstError(t *testing.T) {
	p := NewPather()
	p.SetColor(42)
	first := p.Err()
	require.Error(t, first)
	p.SetColor(struct{}{})
	assert.Equal(t, first, p.Err())
}

func TestToPoints(t *testing.T) {
	x, y := ToPoints(fToFixed(40, 20), 4)
	assert.Equal(t, 10., x)
	assert.Equal(t, 5., y)
}

// the rasterx filler drives the context as it would drive a rasterizer
func TestFillerDrivesContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filler.pdf")
	s, err := Create(path, 100, 100, Options{Uncompressed: true})
	require.NoError(t, err)
	defer s.Close()
	c, err := s.NewContext()
	require.NoError(t, err)

	filler := rasterx.NewFiller(100, 100, c)
	filler.Clear()
	filler.Start(fToFixed(10, 10))
	filler.Line(fToFixed(90, 10))
	filler.QuadBezier(fToFixed(90, 90), fToFixed(10, 90))
	filler.Stop(true)
	filler.SetColor(color.NRGBA{G: 0x80, A: 0xff})
	filler.Draw()
	require.NoError(t, c.Err())

	out := finish(t, s, path)
	assert.Contains(t, out, "10.00 90.00 m")
	assert.Contains(t, out, "0.000 0.502 0.000 rg")
}
