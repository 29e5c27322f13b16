// Command svg2pdf renders an SVG document to a single page PDF file.
//
// Usage:
//
//	svg2pdf [flags] <input.svg> <output.pdf>
//
// The page size defaults to 3000 x 2500 points, and may be set with
// the --width and --height flags or the SVG2PDF_WIDTH and SVG2PDF_HEIGHT
// environment variables, which are also read from a .env file.
package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"strconv"

	"github.com/benoitkugler/svg2pdf"
	"github.com/benoitkugler/svg2pdf/svgicon"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build information (set by the linker)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultHeight = 2500
	defaultWidth  = 3000
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	if err := opts.loadEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	rootCmd := newRootCommand(&opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	switch svg2pdf.KindOf(err) {
	case svg2pdf.IOError:
		return 2
	case svg2pdf.ParseError:
		return 3
	case svg2pdf.OutputError:
		return 4
	case svg2pdf.RenderError:
		return 5
	default:
		return 1
	}
}

type options struct {
	height, width float64
	fit           string
	backend       string
	strict        bool
	maxInputSize  string
	preview       string
	validate      bool
	debug         bool
}

// loadEnv sets the defaults which may be overridden by the environment.
func (o *options) loadEnv() error {
	o.height, o.width = defaultHeight, defaultWidth
	for _, v := range [...]struct {
		name string
		dst  *float64
	}{{"SVG2PDF_HEIGHT", &o.height}, {"SVG2PDF_WIDTH", &o.width}} {
		s, ok := os.LookupEnv(v.name)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.name, err)
		}
		*v.dst = f
	}
	if s, ok := os.LookupEnv("SVG2PDF_DEBUG"); ok {
		debug, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid SVG2PDF_DEBUG: %w", err)
		}
		o.debug = debug
	}
	return nil
}

func bindPFlags(flags *pflag.FlagSet, o *options) {
	flags.Float64Var(&o.height, "height", o.height, "Page height, in points (env SVG2PDF_HEIGHT)")
	flags.Float64Var(&o.width, "width", o.width, "Page width, in points (env SVG2PDF_WIDTH)")
	flags.StringVar(&o.fit, "fit", svg2pdf.FitContain.String(), "Placement of the drawing: contain, stretch, none")
	flags.StringVar(&o.backend, "backend", svg2pdf.BackendFPDF.String(), "PDF writer: fpdf, contentstream")
	flags.BoolVar(&o.strict, "strict", false, "Fail on unsupported SVG elements")
	flags.StringVar(&o.maxInputSize, "max-input-size", "", "Maximum size of the SVG input, such as 10MB (default unlimited)")
	flags.StringVar(&o.preview, "preview", "", "Also write a PNG preview of the page to this file")
	flags.BoolVar(&o.validate, "validate", false, "Validate the PDF after writing it")
	flags.BoolVar(&o.debug, "debug", o.debug, "Log each conversion step (env SVG2PDF_DEBUG)")
}

func (o *options) converter() (*svg2pdf.Converter, error) {
	fit, err := svgicon.ParseFit(o.fit)
	if err != nil {
		return nil, err
	}
	backend, err := svg2pdf.ParseBackend(o.backend)
	if err != nil {
		return nil, err
	}
	var maxSize uint64
	if o.maxInputSize != "" {
		if maxSize, err = humanize.ParseBytes(o.maxInputSize); err != nil {
			return nil, fmt.Errorf("invalid --max-input-size: %w", err)
		}
		if maxSize > math.MaxInt64 {
			return nil, fmt.Errorf("invalid --max-input-size: %s exceeds %s",
				o.maxInputSize, humanize.Bytes(math.MaxInt64))
		}
	}
	return &svg2pdf.Converter{
		Backend:      backend,
		Fit:          fit,
		Strict:       o.strict,
		MaxInputSize: int64(maxSize),
		PreviewPath:  o.preview,
		Validate:     o.validate,
	}, nil
}

// newLogger logs to w, with the console encoding of zap.NewDevelopment
// in debug mode and the JSON encoding of zap.NewProduction otherwise.
func newLogger(debug bool, w io.Writer) *zap.Logger {
	enc, level := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zap.InfoLevel
	if debug {
		enc, level = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zap.DebugLevel
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "svg2pdf [flags] <input.svg> <output.pdf>",
		Short: "Render an SVG document to a single page PDF",
		Long: `svg2pdf renders an SVG document as vector graphics on a single PDF page
of the given size. The drawing keeps its aspect ratio and is centered on the
page, unless --fit says otherwise.`,
		Example: `  svg2pdf map.svg map.pdf
  svg2pdf --height 842 --width 595 --fit stretch map.svg map.pdf
  svg2pdf --preview map.png --validate map.svg map.pdf`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := opts.converter()
			if err != nil {
				return err
			}
			logger := newLogger(opts.debug, cmd.ErrOrStderr())
			defer logger.Sync()
			conv.Logger = logger

			if err = conv.Convert(args[0], args[1], opts.height, opts.width); err != nil {
				var e *svg2pdf.Error
				if errors.As(err, &e) {
					logger.Error("conversion failed", zap.Stringer("kind", e.Kind), zap.String("op", e.Op), zap.Error(e.Err))
				}
				return err
			}
			logger.Info("conversion done", zap.String("output", args[1]))
			return nil
		},
	}
	bindPFlags(rootCmd.Flags(), opts)

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), getVersionInfo())
		},
	}
}

func getVersionInfo() string {
	return fmt.Sprintf("svg2pdf %s (commit: %s, built: %s, go: %s)",
		version, commit, date, runtime.Version())
}
