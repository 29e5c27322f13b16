// Provides the parsed representation of an SVG document.
// Parsing is delegated to github.com/srwiley/oksvg; this package
// checks the document root, places the icon on a target page
// and paints it through a rasterx dasher.
// See svg2pdf/svgpdf or svg2pdf/svgraster for the painting backends.
package svgicon

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"
)

// ErrorMode determines if unsupported elements are ignored,
// logged, or reported as parse errors.
type ErrorMode = oksvg.ErrorMode

const (
	IgnoreErrorMode = oksvg.IgnoreErrorMode
	WarnErrorMode   = oksvg.WarnErrorMode
	StrictErrorMode = oksvg.StrictErrorMode
)

var (
	// ErrTooLarge is returned when the input exceeds the size limit
	// given to ReadIconStream.
	ErrTooLarge = errors.New("svgicon: input exceeds size limit")

	errNoRoot = errors.New("svgicon: no root element")
	errNotSVG = errors.New("svgicon: root element is not <svg>")
	errClosed = errors.New("svgicon: icon is closed")
)

// Bounds defines a bounding box, such as a viewport
// or the target rectangle of an icon.
type Bounds struct{ X, Y, W, H float64 }

// Scale returns b with every component multiplied by k.
func (b Bounds) Scale(k float64) Bounds {
	return Bounds{X: b.X * k, Y: b.Y * k, W: b.W * k, H: b.H * k}
}

// Fit controls how an icon is placed on a page.
type Fit uint8

const (
	Contain Fit = iota // uniform scale, centered on the page
	Stretch            // view box mapped onto the whole page
	None               // user units are page units
)

func (f Fit) String() string {
	switch f {
	case Contain:
		return "contain"
	case Stretch:
		return "stretch"
	case None:
		return "none"
	default:
		return "<unknown Fit>"
	}
}

// ParseFit is the inverse of Fit.String.
func ParseFit(s string) (Fit, error) {
	for _, f := range [...]Fit{Contain, Stretch, None} {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("svgicon: unknown fit %q", s)
}

// Icon is a parsed SVG document. It is released with Close.
type Icon struct {
	ViewBox Bounds
	icon    *oksvg.SvgIcon
}

// ReadIconStream reads a whole SVG document from stream.
// A positive maxSize bounds the number of bytes accepted, zero means
// no limit. errMode determines if the icon ignores, errors out, or logs
// a warning if it does not handle an element found in the document.
func ReadIconStream(stream io.Reader, errMode ErrorMode, maxSize int64) (*Icon, error) {
	src, err := readAll(stream, maxSize)
	if err != nil {
		return nil, err
	}
	if err = checkRoot(src); err != nil {
		return nil, err
	}
	parsed, err := oksvg.ReadIconStream(bytes.NewReader(src), errMode)
	if err != nil {
		return nil, err
	}
	ic := &Icon{icon: parsed}
	ic.ViewBox = Bounds{X: parsed.ViewBox.X, Y: parsed.ViewBox.Y, W: parsed.ViewBox.W, H: parsed.ViewBox.H}
	return ic, nil
}

// ReadIcon reads the Icon from the named file.
func ReadIcon(iconFile string, errMode ErrorMode, maxSize int64) (*Icon, error) {
	fin, err := os.Open(iconFile)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return ReadIconStream(fin, errMode, maxSize)
}

func readAll(r io.Reader, maxSize int64) ([]byte, error) {
	// no input can exceed math.MaxInt64 bytes
	if maxSize <= 0 || maxSize == math.MaxInt64 {
		return io.ReadAll(r)
	}
	src, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(src)) > maxSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxSize)
	}
	return src, nil
}

// checkRoot makes sure the first element of the document is <svg>.
// oksvg happily accepts any well formed XML.
func checkRoot(src []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(src))
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			return errNoRoot
		}
		if err != nil {
			return err
		}
		if se, ok := t.(xml.StartElement); ok {
			if se.Name.Local != "svg" {
				return fmt.Errorf("%w: found <%s>", errNotSVG, se.Name.Local)
			}
			return nil
		}
	}
}

// Title returns the first <title> of the document, if any.
func (ic *Icon) Title() string {
	if ic.icon == nil || len(ic.icon.Titles) == 0 {
		return ""
	}
	return strings.TrimSpace(ic.icon.Titles[0])
}

// NumPaths returns the number of painted paths in the document.
func (ic *Icon) NumPaths() int {
	if ic.icon == nil {
		return 0
	}
	return len(ic.icon.SVGPaths)
}

// Target returns the rectangle of a w x h page on which the icon is drawn.
// Documents without a usable view box are measured in page units.
func (ic *Icon) Target(w, h float64, fit Fit) Bounds {
	if ic.ViewBox.W <= 0 || ic.ViewBox.H <= 0 {
		ic.ViewBox = Bounds{W: w, H: h}
	}
	vb := ic.ViewBox
	switch fit {
	case Stretch:
		return Bounds{W: w, H: h}
	case None:
		return Bounds{W: vb.W, H: vb.H}
	default:
		s := math.Min(w/vb.W, h/vb.H)
		return Bounds{X: (w - vb.W*s) / 2, Y: (h - vb.H*s) / 2, W: vb.W * s, H: vb.H * s}
	}
}

// SetTarget sets the transform mapping the view box onto b.
func (ic *Icon) SetTarget(b Bounds) {
	if ic.icon == nil {
		return
	}
	vb := ic.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		vb = Bounds{W: b.W, H: b.H}
	}
	ic.icon.Transform = rasterx.Identity.
		Translate(b.X, b.Y).
		Scale(b.W/vb.W, b.H/vb.H).
		Translate(-vb.X, -vb.Y)
}

// Draw paints the icon through d. A panic raised by the painting
// code is returned as an error.
func (ic *Icon) Draw(d *rasterx.Dasher, opacity float64) (err error) {
	if ic.icon == nil {
		return errClosed
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("svgicon: draw: %v", r)
		}
	}()
	ic.icon.Draw(d, opacity)
	return nil
}

// Close releases the parsed document. Closing twice is a no-op.
func (ic *Icon) Close() error {
	ic.icon = nil
	return nil
}
