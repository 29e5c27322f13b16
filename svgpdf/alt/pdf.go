// Alternative implementation of PDF rendering, writing the page
// content stream with github.com/benoitkugler/pdf instead of gofpdf.
package alt

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/svg2pdf/svgpdf"
	"github.com/srwiley/rasterx"
)

// assert interface conformance
var _ rasterx.Scanner = (*Context)(nil)

var errHasContext = errors.New("alt: surface already has a context")

// Surface is a single page document bound to a destination file.
// The document is written in one go by Finish.
type Surface struct {
	page          *contentstream.Appearance
	path          string
	width, height float64
	scale         float64
	ctx           *Context
	compress      bool
	finished      bool
	closed        bool
}

// Create checks that the destination can be written and
// prepares a width x height points page. The Oversample and
// Uncompressed fields of opts are used.
func Create(path string, width, height float64, opts svgpdf.Options) (*Surface, error) {
	if !svgpdf.ValidSize(width) || !svgpdf.ValidSize(height) {
		return nil, fmt.Errorf("alt: invalid page size %gx%g", width, height)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err = f.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}
	page := contentstream.NewAppearance(width, height)
	return &Surface{
		page:     &page,
		path:     path,
		width:    width,
		height:   height,
		scale:    opts.Scale(),
		compress: !opts.Uncompressed,
	}, nil
}

// Size returns the page size, in points.
func (s *Surface) Size() (width, height float64) { return s.width, s.height }

// Scale returns the number of device units per point.
func (s *Surface) Scale() float64 { return s.scale }

// NewContext returns the context drawing on the page.
// The SVG y axis points down: the context flips the page.
func (s *Surface) NewContext() (*Context, error) {
	if s.ctx != nil {
		return nil, errHasContext
	}
	s.page.Ops(
		contentstream.OpSave{},
		contentstream.OpConcat{Matrix: model.Matrix{1, 0, 0, -1, 0, s.height}},
	)
	s.ctx = &Context{
		Pather:        svgpdf.NewPather(),
		page:          s.page,
		scale:         s.scale,
		alpha:         1,
		opacityStates: make(map[float64]*model.GraphicState),
	}
	return s.ctx, nil
}

// Finish writes the document to the destination file.
func (s *Surface) Finish() error {
	if s.finished {
		return nil
	}
	if s.closed {
		return os.ErrClosed
	}
	if s.ctx != nil {
		s.ctx.Close()
	}
	var (
		doc  model.Document
		page model.PageObject
	)
	s.page.ApplyToPageObject(&page, s.compress)
	doc.Catalog.Pages.Kids = append(doc.Catalog.Pages.Kids, &page)
	if err := doc.WriteFile(s.path, nil); err != nil {
		return err
	}
	s.finished = true
	return nil
}

// Close releases the page, removing the destination file
// when the document was not finished.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.page = nil
	if !s.finished {
		return os.Remove(s.path)
	}
	return nil
}

// Context draws on the page of a Surface.
// Clipping is not supported: SetClip is ignored.
type Context struct {
	svgpdf.Pather
	page          *contentstream.Appearance
	scale         float64
	alpha         float64
	opacityStates map[float64]*model.GraphicState
	closed        bool
}

func (c *Context) SetClip(image.Rectangle) {}

func (c *Context) setAlpha(alpha float64) {
	if alpha == c.alpha {
		return
	}
	// cache the opacity states
	gs, ok := c.opacityStates[alpha]
	if !ok {
		gs = &model.GraphicState{Ca: model.ObjFloat(alpha), BM: []model.Name{"Normal"}}
		c.opacityStates[alpha] = gs
	}
	name := c.page.AddExtGState(gs)
	c.page.Ops(contentstream.OpSetExtGState{Dict: name})
	c.alpha = alpha
}

// Draw fills the buffered path with the current color.
func (c *Context) Draw() {
	if c.closed || c.Err() != nil || !c.Visible() {
		return
	}
	c.page.SetColorFill(c.Paint)
	c.setAlpha(c.Alpha())

	for _, sp := range c.Subpaths {
		x, y := svgpdf.ToPoints(sp[0], c.scale)
		c.page.Ops(contentstream.OpMoveTo{X: x, Y: y})
		for _, p := range sp[1:] {
			x, y = svgpdf.ToPoints(p, c.scale)
			c.page.Ops(contentstream.OpLineTo{X: x, Y: y})
		}
		c.page.Ops(contentstream.OpClosePath{})
	}
	if c.NonZeroWinding {
		c.page.Ops(contentstream.OpFill{})
	} else {
		c.page.Ops(contentstream.OpEOFill{})
	}
}

// Close restores the graphic state saved by NewContext.
// Closing twice is a no-op.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.Subpaths = nil
	c.page.Ops(contentstream.OpRestore{})
	return nil
}
