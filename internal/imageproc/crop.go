package imageproc

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CropOptions cuts a region out of an image and centers it on a fixed-size
// canvas, the default being the 9:16 vertical format used for reels.
type CropOptions struct {
	CropX      int
	CropY      int
	CropWidth  int // 0 means full width
	CropHeight int // 0 means full height
	// OutputWidth/OutputHeight size the final canvas.
	OutputWidth  int
	OutputHeight int
	// Scale multiplies the cropped region before centering, default 1.0.
	Scale float64
}

// Crop extracts the region, scales it, and centers it on a black canvas.
// The region must lie entirely within the source image.
func Crop(src image.Image, opts CropOptions) (*image.NRGBA, error) {
	if opts.OutputWidth <= 0 || opts.OutputHeight <= 0 {
		return nil, fmt.Errorf("output dimensions must be positive")
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1.0
	}
	if scale <= 0 {
		return nil, fmt.Errorf("scale factor must be positive")
	}

	img := imaging.Clone(src)
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("empty input image")
	}

	cropW := opts.CropWidth
	if cropW <= 0 {
		cropW = srcW
	}
	cropH := opts.CropHeight
	if cropH <= 0 {
		cropH = srcH
	}

	if opts.CropX < 0 || opts.CropY < 0 || opts.CropX+cropW > srcW || opts.CropY+cropH > srcH {
		return nil, fmt.Errorf("crop area exceeds image boundaries: image %dx%d, crop %d,%d %dx%d",
			srcW, srcH, opts.CropX, opts.CropY, cropW, cropH)
	}

	cropped := imaging.Crop(img, image.Rect(opts.CropX, opts.CropY, opts.CropX+cropW, opts.CropY+cropH))

	scaled := cropped
	if scale != 1.0 {
		scaledW := int(float64(cropW) * scale)
		scaledH := int(float64(cropH) * scale)
		if scaledW < 1 {
			scaledW = 1
		}
		if scaledH < 1 {
			scaledH = 1
		}
		scaled = imaging.Resize(cropped, scaledW, scaledH, imaging.Lanczos)
	}

	// Shrink to fit only when the scaled region overflows the canvas
	if scaled.Bounds().Dx() > opts.OutputWidth || scaled.Bounds().Dy() > opts.OutputHeight {
		return fitOnCanvas(scaled, opts.OutputWidth, opts.OutputHeight, color.Black), nil
	}

	canvas := imaging.New(opts.OutputWidth, opts.OutputHeight, color.Black)
	return imaging.PasteCenter(canvas, scaled), nil
}
