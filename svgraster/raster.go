// Implements a raster backend to render SVG images,
// by wrapping rasterx. It is used to preview the PDF output.
package svgraster

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/benoitkugler/svg2pdf/svgicon"
	"github.com/srwiley/rasterx"
	"go.uber.org/multierr"
)

// Raster uses a ScannerGV instance to render the icon into a
// width x height image, placed according to fit.
func Raster(icon *svgicon.Icon, width, height int, fit svgicon.Fit) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svgraster: invalid image size %dx%d", width, height)
	}
	icon.SetTarget(icon.Target(float64(width), float64(height), fit))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	if err := icon.Draw(dasher, 1); err != nil {
		return nil, err
	}
	return img, nil
}

// WritePNG encodes img into the named file.
// The file is removed if the encoding fails.
func WritePNG(path string, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
		if err != nil {
			os.Remove(path)
		}
	}()
	return png.Encode(out, img)
}
