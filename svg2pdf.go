// Package svg2pdf renders SVG documents to single page PDF files.
//
// Parsing is done by github.com/srwiley/oksvg and curves are flattened
// by github.com/srwiley/rasterx; the resulting polygons are written as
// vector fills by one of the PDF backends of svg2pdf/svgpdf.
package svg2pdf

import (
	"math"
	"os"
	"time"

	"github.com/benoitkugler/svg2pdf/svgicon"
	"github.com/benoitkugler/svg2pdf/svgpdf"
	"github.com/benoitkugler/svg2pdf/svgraster"
	"github.com/dustin/go-humanize"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/srwiley/rasterx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultOversample is the number of device units per point
// used when Converter.Oversample is zero.
const DefaultOversample = 4

// Fit controls how the document is placed on the page.
type Fit = svgicon.Fit

const (
	FitContain = svgicon.Contain // keep the aspect ratio, centered on the page
	FitStretch = svgicon.Stretch // fill the whole page
	FitNone    = svgicon.None    // one user unit is one point
)

// Converter holds the conversion settings.
// The zero value is ready to use, and a Converter
// may be shared by concurrent callers.
type Converter struct {
	Backend Backend
	Fit     Fit

	// Strict makes unsupported SVG elements fail the parsing,
	// instead of being skipped with a warning.
	Strict bool

	// MaxInputSize is the maximum size of the SVG input, in bytes.
	// Zero means no limit.
	MaxInputSize int64

	// Oversample is the number of device units per point used
	// to flatten curves. Zero means DefaultOversample.
	Oversample float64

	// PreviewPath, if not empty, is the destination of a PNG
	// rendering of the page.
	PreviewPath string

	// Validate checks the written PDF with pdfcpu.
	Validate bool

	// CreationDate, if not zero, is written as the creation date of
	// the document, so that the output is reproducible.
	CreationDate time.Time

	// Logger receives debug messages for each step. Nil disables logging.
	Logger *zap.Logger
}

// Convert renders the SVG file at inputPath to a width x height points
// PDF page at outputPath, using the default settings.
func Convert(inputPath, outputPath string, height, width float64) error {
	var c Converter
	return c.Convert(inputPath, outputPath, height, width)
}

func (c *Converter) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Converter) errorMode() svgicon.ErrorMode {
	if c.Strict {
		return svgicon.StrictErrorMode
	}
	return svgicon.WarnErrorMode
}

func (c *Converter) options(title string) svgpdf.Options {
	oversample := c.Oversample
	if oversample == 0 {
		oversample = DefaultOversample
	}
	return svgpdf.Options{Oversample: oversample, CreationDate: c.CreationDate, Title: title}
}

// Convert renders the SVG file at inputPath to a width x height points
// PDF page at outputPath. The returned error is an *Error, possibly
// combined with errors met while releasing the resources.
// On failure, no output file is left behind.
func (c *Converter) Convert(inputPath, outputPath string, height, width float64) (err error) {
	log := c.logger().With(zap.String("input", inputPath), zap.String("output", outputPath))

	in, err := os.Open(inputPath)
	if err != nil {
		return &Error{Kind: IOError, Op: "open", Path: inputPath, Err: err}
	}
	log.Debug("input opened")

	icon, err := svgicon.ReadIconStream(in, c.errorMode(), c.MaxInputSize)
	if cerr := in.Close(); err == nil && cerr != nil {
		icon.Close()
		return &Error{Kind: IOError, Op: "close", Path: inputPath, Err: cerr}
	}
	if err != nil {
		return &Error{Kind: ParseError, Op: "parse", Path: inputPath, Err: err}
	}
	log.Debug("document parsed",
		zap.Float64s("viewBox", []float64{icon.ViewBox.X, icon.ViewBox.Y, icon.ViewBox.W, icon.ViewBox.H}),
		zap.Int("paths", icon.NumPaths()))

	var (
		surface Surface
		ctx     Context
		written bool
	)
	defer func() {
		var rerr error
		if err != nil && written {
			rerr = os.Remove(outputPath)
		}
		if surface != nil {
			rerr = multierr.Append(rerr, surface.Close())
		}
		if ctx != nil {
			rerr = multierr.Append(rerr, ctx.Close())
		}
		rerr = multierr.Append(rerr, icon.Close())
		if rerr == nil {
			return
		}
		if err == nil {
			err = &Error{Kind: OutputError, Op: "close", Path: outputPath, Err: rerr}
			return
		}
		err = multierr.Append(err, rerr)
	}()

	surface, err = createSurface(c.Backend, outputPath, width, height, c.options(icon.Title()))
	if err != nil {
		return &Error{Kind: OutputError, Op: "surface", Path: outputPath, Err: err}
	}
	log.Debug("surface created", zap.Stringer("backend", c.Backend),
		zap.Float64("width", width), zap.Float64("height", height))

	ctx, err = surface.NewContext()
	if err != nil {
		return &Error{Kind: OutputError, Op: "context", Path: outputPath, Err: err}
	}

	k := surface.Scale()
	target := icon.Target(width, height, c.Fit)
	icon.SetTarget(target.Scale(k))
	dasher := rasterx.NewDasher(int(math.Ceil(width*k)), int(math.Ceil(height*k)), ctx)
	if err = icon.Draw(dasher, 1); err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return &Error{Kind: RenderError, Op: "render", Path: inputPath, Err: err}
	}
	log.Debug("document rendered", zap.Stringer("fit", c.Fit),
		zap.Float64s("target", []float64{target.X, target.Y, target.W, target.H}))

	if err = surface.Finish(); err != nil {
		return &Error{Kind: OutputError, Op: "write", Path: outputPath, Err: err}
	}
	written = true
	err = surface.Close()
	surface = nil
	if err != nil {
		return &Error{Kind: OutputError, Op: "close", Path: outputPath, Err: err}
	}
	if fi, serr := os.Stat(outputPath); serr == nil {
		log.Debug("document written", zap.String("size", humanize.Bytes(uint64(fi.Size()))))
	}

	if c.PreviewPath != "" {
		if err = c.preview(icon, width, height); err != nil {
			return &Error{Kind: OutputError, Op: "preview", Path: c.PreviewPath, Err: err}
		}
		log.Debug("preview written", zap.String("preview", c.PreviewPath))
	}

	if c.Validate {
		if err = api.ValidateFile(outputPath, model.NewDefaultConfiguration()); err != nil {
			return &Error{Kind: OutputError, Op: "validate", Path: outputPath, Err: err}
		}
		log.Debug("document validated")
	}
	return nil
}

// preview rasterizes the page, one pixel per point.
func (c *Converter) preview(icon *svgicon.Icon, width, height float64) error {
	img, err := svgraster.Raster(icon, int(math.Ceil(width)), int(math.Ceil(height)), c.Fit)
	if err != nil {
		return err
	}
	return svgraster.WritePNG(c.PreviewPath, img)
}
