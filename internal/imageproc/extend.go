package imageproc

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ExtendOptions controls vertical canvas extension for studio car shots.
type ExtendOptions struct {
	// DesiredHeight is the target canvas height before any final resize.
	DesiredHeight int
	// PaddingPct is extra headroom around the car as a fraction of its height.
	PaddingPct float64
	// WhiteThreshold is the background cutoff (0-255). Negative means auto,
	// sampled from the center top and bottom stripes.
	WhiteThreshold int
	// RequestedWidth/RequestedHeight, when both positive, fit the result onto
	// a white canvas of exactly those dimensions.
	RequestedWidth  int
	RequestedHeight int
}

// ExtendResult carries the output image plus the threshold that was used,
// which matters when the caller asked for auto detection.
type ExtendResult struct {
	Image     *image.NRGBA
	Threshold int
}

const (
	extendStripeH = 20
	extendStripeW = 40
)

// centerSampleThreshold derives the white cutoff from the brightness of the
// image's central top and bottom stripes, adapting to soft-box lighting.
func centerSampleThreshold(img *image.NRGBA) int {
	cols := img.Bounds().Dx()
	rows := img.Bounds().Dy()

	cx := cols / 2
	w := extendStripeW
	if cx-1 < w {
		w = cx - 1
	}
	if cols-cx-1 < w {
		w = cols - cx - 1
	}
	if w < 0 {
		w = 0
	}
	h := extendStripeH
	if rows/10 < h {
		h = rows / 10
	}
	if h < 1 {
		h = 1
	}

	topR := image.Rect(cx-w, 0, cx+w+1, h)
	botR := image.Rect(cx-w, rows-h, cx+w+1, rows)

	mTop := meanGray(img, topR)
	mBot := meanGray(img, botR)

	m := mTop
	if mBot < m {
		m = mBot
	}

	thr := int(m - 5.0) // cushion below white
	if thr < 180 {
		thr = 180
	}
	if thr > 250 {
		thr = 250
	}
	return thr
}

// findForegroundBounds locates the first and last row containing a pixel
// darker than the white threshold in any channel
func findForegroundBounds(img *image.NRGBA, whiteThr int) (int, int, bool) {
	b := img.Bounds()
	top, bot := -1, -1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		rowHasFg := false
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.NRGBAAt(x, y)
			if int(px.R) < whiteThr || int(px.G) < whiteThr || int(px.B) < whiteThr {
				rowHasFg = true
				break
			}
		}
		if rowHasFg {
			if top == -1 {
				top = y
			}
			bot = y
		}
	}
	return top, bot, top != -1
}

// makeStrip stretches source rows to the strip height, or fills with white
// when there is no source material on that side
func makeStrip(src *image.NRGBA, newH, w int) *image.NRGBA {
	if newH <= 0 {
		return nil
	}
	if src != nil && src.Bounds().Dy() > 0 {
		return imaging.Resize(src, w, newH, imaging.Box)
	}
	return imaging.New(w, newH, color.White)
}

// ExtendCanvas grows or shrinks a studio shot to the desired height, keeping
// the car centered and synthesizing background from the existing top and
// bottom margins.
func ExtendCanvas(src image.Image, opts ExtendOptions) (*ExtendResult, error) {
	if opts.DesiredHeight <= 0 {
		return nil, fmt.Errorf("desired height must be positive")
	}

	img := imaging.Clone(src)
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty input image")
	}

	whiteThr := opts.WhiteThreshold
	if whiteThr < 0 || whiteThr > 255 {
		whiteThr = centerSampleThreshold(img)
	}

	fgTop, fgBot, ok := findForegroundBounds(img, whiteThr)
	if !ok {
		return nil, fmt.Errorf("foreground not found (try lowering threshold)")
	}

	carH := fgBot - fgTop + 1
	pad := int(float64(carH)*opts.PaddingPct + 0.5)
	cropTop := fgTop - pad
	if cropTop < 0 {
		cropTop = 0
	}
	cropBot := fgBot + pad
	if cropBot > h-1 {
		cropBot = h - 1
	}

	carReg := imaging.Crop(img, image.Rect(0, cropTop, w, cropBot+1))
	carRegH := carReg.Bounds().Dy()

	// Already tall enough: center crop
	if opts.DesiredHeight <= carRegH {
		yOff := (carRegH - opts.DesiredHeight) / 2
		result := imaging.Crop(carReg, image.Rect(0, yOff, w, yOff+opts.DesiredHeight))
		result = applyRequestedSize(result, opts)
		return &ExtendResult{Image: result, Threshold: whiteThr}, nil
	}

	extra := opts.DesiredHeight - carRegH
	topH := extra / 2
	botH := extra - topH

	var topSrc, botSrc *image.NRGBA
	if cropTop > 0 {
		topSrc = imaging.Crop(img, image.Rect(0, 0, w, cropTop))
	}
	if cropBot+1 < h {
		botSrc = imaging.Crop(img, image.Rect(0, cropBot+1, w, h))
	}

	topStrip := makeStrip(topSrc, topH, w)
	botStrip := makeStrip(botSrc, botH, w)

	canvas := imaging.New(w, opts.DesiredHeight, color.White)
	y := 0
	if topStrip != nil {
		canvas = imaging.Paste(canvas, topStrip, image.Pt(0, y))
		y += topStrip.Bounds().Dy()
	}
	canvas = imaging.Paste(canvas, carReg, image.Pt(0, y))
	y += carRegH
	if botStrip != nil {
		canvas = imaging.Paste(canvas, botStrip, image.Pt(0, y))
	}

	canvas = applyRequestedSize(canvas, opts)
	return &ExtendResult{Image: canvas, Threshold: whiteThr}, nil
}

func applyRequestedSize(img *image.NRGBA, opts ExtendOptions) *image.NRGBA {
	if opts.RequestedWidth <= 0 || opts.RequestedHeight <= 0 {
		return img
	}
	return fitOnCanvas(img, opts.RequestedWidth, opts.RequestedHeight, color.White)
}
