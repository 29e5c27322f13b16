// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
//
// The drawing Context implements rasterx.Scanner: the rasterx filler and
// dasher flatten curves and strokes into polygons, which the context
// writes as vector fill operations on the page.
package svgpdf

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/srwiley/rasterx"
	"go.uber.org/multierr"
)

// assert interface conformance
var _ rasterx.Scanner = (*Context)(nil)

var errHasContext = errors.New("svgpdf: surface already has a context")

// Options tunes the generated document. The zero value is ready to use.
type Options struct {
	// Oversample is the number of device units per point. Curves are
	// flattened in device units, so a larger value gives smoother output.
	// Values below 1 are treated as 1.
	Oversample float64

	// CreationDate fixes the creation date of the document,
	// making the output reproducible. Zero means now.
	CreationDate time.Time

	Title string

	// Uncompressed disables the compression of page content.
	Uncompressed bool
}

// Scale returns the oversampling factor to use: Oversample,
// or 1 when it is below 1 or not finite.
func (o Options) Scale() float64 {
	if o.Oversample < 1 || math.IsNaN(o.Oversample) || math.IsInf(o.Oversample, 0) {
		return 1
	}
	return o.Oversample
}

// ValidSize reports whether v can be used as a page dimension.
func ValidSize(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Surface is a single page PDF document bound to a destination file.
// It must be released with Close; an unfinished document is then removed.
type Surface struct {
	pdf           *gofpdf.Fpdf
	file          *os.File
	path          string
	width, height float64
	scale         float64
	ctx           *Context
	finished      bool
}

// Create opens the destination file and prepares a width x height
// points document.
func Create(path string, width, height float64, opts Options) (*Surface, error) {
	if !ValidSize(width) || !ValidSize(height) {
		return nil, fmt.Errorf("svgpdf: invalid page size %gx%g", width, height)
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(!opts.Uncompressed)
	pdf.SetCreator("svg2pdf", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if !opts.CreationDate.IsZero() {
		pdf.SetCreationDate(opts.CreationDate)
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Surface{
		pdf:    pdf,
		file:   file,
		path:   path,
		width:  width,
		height: height,
		scale:  opts.Scale(),
	}, nil
}

// Size returns the page size, in points.
func (s *Surface) Size() (width, height float64) { return s.width, s.height }

// Scale returns the number of device units per point.
func (s *Surface) Scale() float64 { return s.scale }

// NewContext adds the page and returns the context drawing on it.
// A surface has at most one context.
func (s *Surface) NewContext() (*Context, error) {
	if s.ctx != nil {
		return nil, errHasContext
	}
	s.pdf.AddPage()
	if err := s.pdf.Error(); err != nil {
		return nil, err
	}
	s.ctx = newContext(s.pdf, s.scale)
	return s.ctx, nil
}

// Finish writes the document to the destination file.
func (s *Surface) Finish() error {
	if s.finished {
		return nil
	}
	if s.file == nil {
		return os.ErrClosed
	}
	if err := s.pdf.Output(s.file); err != nil {
		return err
	}
	s.finished = true
	return nil
}

// Close releases the destination file, removing it when
// the document was not finished. Closing twice is a no-op.
func (s *Surface) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if !s.finished {
		err = multierr.Append(err, os.Remove(s.path))
	}
	s.pdf = nil
	return err
}

// Context is the drawing context of a Surface page.
// Paths are buffered until Draw, so that a clip rectangle or
// a Clear can still apply to them.
type Context struct {
	Pather
	pdf   *gofpdf.Fpdf
	scale float64 // device units per point
	alpha float64 // current alpha of the page
	clip  image.Rectangle

	closed bool
}

func newContext(pdf *gofpdf.Fpdf, scale float64) *Context {
	return &Context{Pather: NewPather(), pdf: pdf, scale: scale, alpha: 1}
}

// SetClip restricts the following fills to rect, in device units.
// An empty rectangle removes the clip.
func (c *Context) SetClip(rect image.Rectangle) { c.clip = rect }

func (c *Context) setAlpha(alpha float64) {
	if alpha == c.alpha {
		return
	}
	c.pdf.SetAlpha(alpha, "")
	c.alpha = alpha
}

// Draw fills the buffered path with the current color.
func (c *Context) Draw() {
	if c.closed || c.Err() != nil || !c.Visible() {
		return
	}
	c.pdf.SetFillColor(int(c.Paint.R), int(c.Paint.G), int(c.Paint.B))
	c.setAlpha(c.Alpha())

	clipped := !c.clip.Empty()
	if clipped {
		r, s := c.clip, c.scale
		c.pdf.ClipRect(float64(r.Min.X)/s, float64(r.Min.Y)/s, float64(r.Dx())/s, float64(r.Dy())/s, false)
	}
	for _, sp := range c.Subpaths {
		c.pdf.MoveTo(ToPoints(sp[0], c.scale))
		for _, p := range sp[1:] {
			c.pdf.LineTo(ToPoints(p, c.scale))
		}
		c.pdf.ClosePath()
	}
	styleStr := "f*"
	if c.NonZeroWinding {
		styleStr = "f"
	}
	c.pdf.DrawPath(styleStr)
	if clipped {
		c.pdf.ClipEnd()
	}
	if err := c.pdf.Error(); err != nil {
		c.Fail(err)
	}
}

// Close releases the context; later drawing is ignored.
func (c *Context) Close() error {
	c.closed = true
	c.Subpaths = nil
	return nil
}
