package svg2pdf

import (
	"fmt"

	"github.com/benoitkugler/svg2pdf/svgpdf"
	"github.com/benoitkugler/svg2pdf/svgpdf/alt"
	"github.com/srwiley/rasterx"
)

// Backend selects the library writing the PDF.
type Backend uint8

const (
	BackendFPDF          Backend = iota // github.com/jung-kurt/gofpdf
	BackendContentStream                // github.com/benoitkugler/pdf
)

func (b Backend) String() string {
	switch b {
	case BackendFPDF:
		return "fpdf"
	case BackendContentStream:
		return "contentstream"
	default:
		return "<unknown Backend>"
	}
}

// ParseBackend is the inverse of Backend.String.
func ParseBackend(s string) (Backend, error) {
	for _, b := range [...]Backend{BackendFPDF, BackendContentStream} {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("svg2pdf: unknown backend %q", s)
}

// Context is a drawing context on the page of a Surface.
// The rasterx dasher drives it; errors met while drawing
// are reported by Err.
type Context interface {
	rasterx.Scanner
	Err() error
	Close() error
}

// Surface is a single page PDF document bound to a destination file.
type Surface interface {
	NewContext() (Context, error)
	Size() (width, height float64)
	Scale() float64
	Finish() error
	Close() error
}

// createSurface opens the surface of a conversion; tests replace it
// to inject backend failures.
var createSurface = Backend.create

func (b Backend) create(path string, width, height float64, opts svgpdf.Options) (Surface, error) {
	switch b {
	case BackendFPDF:
		s, err := svgpdf.Create(path, width, height, opts)
		if err != nil {
			return nil, err
		}
		return fpdfSurface{s}, nil
	case BackendContentStream:
		s, err := alt.Create(path, width, height, opts)
		if err != nil {
			return nil, err
		}
		return contentStreamSurface{s}, nil
	default:
		return nil, fmt.Errorf("svg2pdf: unknown backend %d", b)
	}
}

type fpdfSurface struct{ *svgpdf.Surface }

func (s fpdfSurface) NewContext() (Context, error) {
	c, err := s.Surface.NewContext()
	if err != nil {
		return nil, err
	}
	return c, nil
}

type contentStreamSurface struct{ *alt.Surface }

func (s contentStreamSurface) NewContext() (Context, error) {
	c, err := s.Surface.NewContext()
	if err != nil {
		return nil, err
	}
	return c, nil
}
