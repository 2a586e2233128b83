package imageproc

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MatteOptions frames an image on a solid-color canvas.
type MatteOptions struct {
	CanvasWidth  int
	CanvasHeight int
	// PaddingPercent reserves a border on every side, as a percent of the
	// canvas dimension. Valid range is [0, 50).
	PaddingPercent float64
	// Color is the canvas background as a hex string, default black.
	Color string
}

// Matte scales the image to fit inside the padded content area and centers
// it on a canvas of the requested color.
func Matte(src image.Image, opts MatteOptions) (*image.NRGBA, error) {
	if opts.CanvasWidth <= 0 || opts.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas dimensions must be positive")
	}
	if opts.PaddingPercent < 0 || opts.PaddingPercent >= 50 {
		return nil, fmt.Errorf("padding percent must be between 0 and 50")
	}

	hex := opts.Color
	if hex == "" {
		hex = "#000000"
	}
	bg, err := parseHexColor(hex)
	if err != nil {
		return nil, err
	}

	img := imaging.Clone(src)
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("empty input image")
	}

	padX := int(float64(opts.CanvasWidth) * opts.PaddingPercent / 100.0)
	padY := int(float64(opts.CanvasHeight) * opts.PaddingPercent / 100.0)
	contentW := opts.CanvasWidth - 2*padX
	contentH := opts.CanvasHeight - 2*padY
	if contentW <= 0 || contentH <= 0 {
		return nil, fmt.Errorf("padding too large for canvas size")
	}

	inputRatio := float64(srcW) / float64(srcH)
	contentRatio := float64(contentW) / float64(contentH)

	var targetW, targetH int
	if inputRatio > contentRatio {
		targetW = contentW
		targetH = int(float64(contentW) / inputRatio)
	} else {
		targetH = contentH
		targetW = int(float64(contentH) * inputRatio)
	}

	if targetW < 1 {
		targetW = 1
	}
	if targetW > opts.CanvasWidth {
		targetW = opts.CanvasWidth
	}
	if targetH < 1 {
		targetH = 1
	}
	if targetH > opts.CanvasHeight {
		targetH = opts.CanvasHeight
	}

	resized := imaging.Resize(img, targetW, targetH, imaging.Box)
	canvas := imaging.New(opts.CanvasWidth, opts.CanvasHeight, bg)
	return imaging.PasteCenter(canvas, resized), nil
}
