// Package imageproc implements the studio's canvas tools: vertical canvas
// extension for white-background car shots, matte framing, and fixed-ratio
// cropping. All operations work on in-memory images and return new images.
package imageproc

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// parseHexColor accepts "#RRGGBB" or "RRGGBB"
func parseHexColor(hex string) (color.NRGBA, error) {
	s := hex
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %s", hex)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color: %s", hex)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// meanGray averages luma over a region using the BT.601 weights
func meanGray(img *image.NRGBA, rect image.Rectangle) float64 {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return 255
	}

	var sum float64
	var n int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			px := img.NRGBAAt(x, y)
			sum += 0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)
			n++
		}
	}
	return sum / float64(n)
}

// fitOnCanvas scales the image to fit w x h preserving aspect ratio and
// centers it on a canvas of the given background color
func fitOnCanvas(img *image.NRGBA, w, h int, bg color.Color) *image.NRGBA {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	scaleX := float64(w) / float64(srcW)
	scaleY := float64(h) / float64(srcH)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)
	canvas := imaging.New(w, h, bg)
	return imaging.PasteCenter(canvas, resized)
}
