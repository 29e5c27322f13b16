package svg2pdf

import (
	"errors"
	"fmt"
)

// Kind classifies the step of a conversion which failed.
type Kind uint8

const (
	_           Kind = iota
	IOError          // the input can't be read
	ParseError       // the input is not a valid SVG document
	OutputError      // the PDF surface can't be created, written or released
	RenderError      // the document can't be painted on the page
)

func (k Kind) String() string {
	switch k {
	case IOError:
		return "IOError"
	case ParseError:
		return "ParseError"
	case OutputError:
		return "OutputError"
	case RenderError:
		return "RenderError"
	default:
		return fmt.Sprintf("<unknown Kind %d>", uint8(k))
	}
}

// Error is returned by Convert. It records the failing
// operation and unwraps to the error of the underlying library.
type Error struct {
	Kind Kind
	Op   string // open, parse, surface, context, render, write, close, preview, validate
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("svg2pdf: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error found in the
// chain of err, or 0 if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
