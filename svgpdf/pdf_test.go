package svgpdf

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func newTestSurface(t *testing.T, opts Options) (*Surface, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.pdf")
	s, err := Create(path, 100, 100, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// drawSquare fills the (10,10)-(50,50) square, in points
func drawSquare(c *Context, clr interface{}) {
	k := c.scale
	c.Clear()
	c.Start(fToFixed(10*k, 10*k))
	c.Line(fToFixed(50*k, 10*k))
	c.Line(fToFixed(50*k, 50*k))
	c.Line(fToFixed(10*k, 50*k))
	c.SetColor(clr)
	c.Draw()
}

func finish(t *testing.T, s *Surface, path string) string {
	t.Helper()
	require.NoError(t, s.Finish())
	require.NoError(t, s.Close())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(b[:4]))
	return string(b)
}

func TestFill(t *testing.T) {
	s, path := newTestSurface(t, Options{Uncompressed: true})
	c, err := s.NewContext()
	require.NoError(t, err)

	drawSquare(c, color.NRGBA{R: 0xff, A: 0xff})
	require.NoError(t, c.Err())
	require.NoError(t, c.Close())

	out := finish(t, s, path)
	// gofpdf flips the y axis: page height is 100
	assert.Contains(t, out, "10.00 90.00 m")
	assert.Contains(t, out, "50.00 50.00 l")
	assert.Contains(t, out, "1.000 0.000 0.000 rg")
	assert.Contains(t, out, "\nf\n")
	assert.Contains(t, out, "/MediaBox [0 0 100.00 100.00]")
	assert.NotContains(t, out, " gs")
}

func TestEvenOddAndAlpha(t *testing.T) {
	s, path := newTestSurface(t, Options{Uncompressed: true})
	c, err := s.NewContext()
	require.NoError(t, err)

	c.SetWinding(false)
	drawSquare(c, color.NRGBA{B: 0xff, A: 0x80})
	require.NoError(t, c.Err())

	out := finish(t, s, path)
	assert.Contains(t, out, "\nf*\n")
	assert.Contains(t, out, " gs")
}

func TestOversample(t *testing.T) {
	s, path := newTestSurface(t, Options{Uncompressed: true, Oversample: 4})
	assert.Equal(t, 4., s.Scale())
	c, err := s.NewContext()
	require.NoError(t, err)

	drawSquare(c, color.Black)
	out := finish(t, s, path)
	assert.Contains(t, out, "10.00 90.00 m")
}

func TestOptionsScale(t *testing.T) {
	for _, test := range []struct {
		oversample, scale float64
	}{
		{0, 1}, {0.5, 1}, {1, 1}, {4, 4},
		{math.NaN(), 1}, {math.Inf(1), 1}, {math.Inf(-1), 1},
	} {
		assert.Equal(t, test.scale, Options{Oversample: test.oversample}.Scale(), test.oversample)
	}
}

func TestTransparentAndEmpty(t *testing.T) {
	s, path := newTestSurface(t, Options{Uncompressed: true})
	c, err := s.NewContext()
	require.NoError(t, err)

	drawSquare(c, color.NRGBA{R: 0xff})
	c.Clear()
	c.SetColor(color.Black)
	c.Draw()
	require.NoError(t, c.Err())

	out := finish(t, s, path)
	assert.NotContains(t, out, " m\n")
}

func TestClearedPathIsNotDrawn(t *testing.T) {
	s, path := newTestSurface(t, Options{Uncompressed: true})
	c, err := s.NewContext()
	require.NoError(t, err)

	c.Start(fToFixed(1, 1))
	c.Line(fToFixed(2, 2))
	c.Clear()
	assert.True(t, c.box.Empty())

	out := finish(t, s, path)
	assert.NotContains(t, out, "1.00 99.00 m")
}

func TestClip(t *testing.T) {
	s, path := newTestSurface(t, Options{Uncompressed: true})
	c, err := s.NewContext()
	require.NoError(t, err)

	c.SetClip(image.Rect(0, 0, 20, 20))
	drawSquare(c, color.Black)
	c.SetClip(image.Rectangle{})
	require.NoError(t, c.Err())

	out := finish(t, s, path)
	assert.Contains(t, out, " re W n")
}

func TestGradientSample(t *testing.T) {
	s, _ := newTestSurface(t, Options{})
	c, err := s.NewContext()
	require.NoError(t, err)

	var sampledX, sampledY int
	gradient := func(x, y int) color.Color {
		sampledX, sampledY = x, y
		return color.NRGBA{G: 0xff, A: 0xff}
	}
	drawSquare(c, gradient)
	require.NoError(t, c.Err())
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, c.Paint)
	assert.Equal(t, 30, sampledX)
	assert.Equal(t, 30, sampledY)
}

func TestUnsupportedPaint(t *testing.T) {
	s, _ := newTestSurface(t, Options{})
	c, err := s.NewContext()
	require.NoError(t, err)

	drawSquare(c, "papayawhip")
	assert.Error(t, c.Err())
}

func TestBoundingBox(t *testing.T) {
	var bb BoundingBox
	assert.True(t, bb.Empty())

	bb.Start(fToFixed(40, 40))
	bb.Line(fToFixed(10, 70))
	bb.Line(fToFixed(90, 20))
	bb.Start(fToFixed(50, 5))

	assert.False(t, bb.Empty())
	assert.Equal(t, fixed.Rectangle26_6{Min: fToFixed(10, 5), Max: fToFixed(90, 70)}, bb.Rectangle26_6)
	x, y := bb.Center()
	assert.Equal(t, 50, x)
	assert.Equal(t, 37, y)

	var lineFirst BoundingBox
	lineFirst.Line(fToFixed(3, 4))
	assert.Equal(t, fixed.Rectangle26_6{Min: fToFixed(3, 4), Max: fToFixed(3, 4)}, lineFirst.Rectangle26_6)
}

func TestCreateErrors(t *testing.T) {
	dir := t.TempDir()
	for _, size := range [][2]float64{{0, 10}, {10, -1}} {
		_, err := Create(filepath.Join(dir, "bad.pdf"), size[0], size[1], Options{})
		assert.Error(t, err, size)
	}
	assert.NoFileExists(t, filepath.Join(dir, "bad.pdf"))

	_, err := Create(filepath.Join(dir, "missing", "out.pdf"), 10, 10, Options{})
	assert.Error(t, err)
}

func TestSingleContext(t *testing.T) {
	s, _ := newTestSurface(t, Options{})
	_, err := s.NewContext()
	require.NoError(t, err)
	_, err = s.NewContext()
	assert.ErrorIs(t, err, errHasContext)
}

func TestUnfinishedSurfaceIsRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	s, err := Create(path, 10, 10, Options{})
	require.NoError(t, err)
	assert.FileExists(t, path)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.NoFileExists(t, path)
}

func TestReproducibleOutput(t *testing.T) {
	date := time.Date(2019, 3, 14, 15, 9, 26, 0, time.UTC)
	render := func() []byte {
		s, path := newTestSurface(t, Options{CreationDate: date, Title: "square"})
		c, err := s.NewContext()
		require.NoError(t, err)
		drawSquare(c, color.NRGBA{R: 0x20, G: 0x40, B: 0x60, A: 0xc0})
		finish(t, s, path)
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, render(), render())
}
