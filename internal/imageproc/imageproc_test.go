package imageproc

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// studioShot builds a white image with a dark horizontal band standing in
// for the car
func studioShot(w, h, bandTop, bandBot int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if y >= bandTop && y <= bandBot {
				c = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestExtendCanvasGrows(t *testing.T) {
	src := studioShot(100, 100, 40, 59)

	result, err := ExtendCanvas(src, ExtendOptions{
		DesiredHeight:  200,
		PaddingPct:     0.05,
		WhiteThreshold: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Image.Bounds().Dx())
	assert.Equal(t, 200, result.Image.Bounds().Dy())
	assert.Equal(t, 200, result.Threshold)

	// The band stays centered on the taller canvas
	center := result.Image.NRGBAAt(50, 100)
	assert.Less(t, int(center.R), 100, "car band should sit at the vertical center")

	top := result.Image.NRGBAAt(50, 5)
	assert.Greater(t, int(top.R), 200, "top margin should stay background white")
}

func TestExtendCanvasCenterCropsWhenAlreadyTall(t *testing.T) {
	src := studioShot(80, 100, 20, 79)

	result, err := ExtendCanvas(src, ExtendOptions{
		DesiredHeight:  10,
		PaddingPct:     0,
		WhiteThreshold: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, 80, result.Image.Bounds().Dx())
	assert.Equal(t, 10, result.Image.Bounds().Dy())

	// Every row of the crop comes from inside the band
	px := result.Image.NRGBAAt(40, 5)
	assert.Less(t, int(px.R), 100)
}

func TestExtendCanvasAutoThreshold(t *testing.T) {
	src := studioShot(100, 100, 45, 55)

	result, err := ExtendCanvas(src, ExtendOptions{
		DesiredHeight:  120,
		PaddingPct:     0.05,
		WhiteThreshold: -1,
	})
	require.NoError(t, err)

	// Pure white stripes: min(255,255)-5 clamps to 250
	assert.Equal(t, 250, result.Threshold)
	assert.Equal(t, 120, result.Image.Bounds().Dy())
}

func TestExtendCanvasNoForeground(t *testing.T) {
	src := solidImage(50, 50, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	_, err := ExtendCanvas(src, ExtendOptions{
		DesiredHeight:  100,
		WhiteThreshold: 200,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "foreground not found")
}

func TestExtendCanvasRequestedDimensions(t *testing.T) {
	src := studioShot(100, 100, 40, 59)

	result, err := ExtendCanvas(src, ExtendOptions{
		DesiredHeight:   200,
		PaddingPct:      0.05,
		WhiteThreshold:  200,
		RequestedWidth:  50,
		RequestedHeight: 80,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, result.Image.Bounds().Dx())
	assert.Equal(t, 80, result.Image.Bounds().Dy())
}

func TestMatteCentersOnColoredCanvas(t *testing.T) {
	src := solidImage(400, 200, color.NRGBA{R: 10, G: 200, B: 10, A: 255})

	out, err := Matte(src, MatteOptions{
		CanvasWidth:    1920,
		CanvasHeight:   1080,
		PaddingPercent: 0,
		Color:          "#112233",
	})
	require.NoError(t, err)

	assert.Equal(t, 1920, out.Bounds().Dx())
	assert.Equal(t, 1080, out.Bounds().Dy())

	// Input ratio 2.0 beats content ratio 1.78 so width binds: 1920x960,
	// leaving 60px mattes top and bottom
	corner := out.NRGBAAt(960, 10)
	assert.Equal(t, uint8(0x11), corner.R)
	assert.Equal(t, uint8(0x22), corner.G)
	assert.Equal(t, uint8(0x33), corner.B)

	center := out.NRGBAAt(960, 540)
	assert.Greater(t, int(center.G), 150)
}

func TestMatteValidation(t *testing.T) {
	src := solidImage(10, 10, color.NRGBA{A: 255})

	tests := []struct {
		name string
		opts MatteOptions
	}{
		{"zero width", MatteOptions{CanvasWidth: 0, CanvasHeight: 100}},
		{"negative padding", MatteOptions{CanvasWidth: 100, CanvasHeight: 100, PaddingPercent: -1}},
		{"padding at limit", MatteOptions{CanvasWidth: 100, CanvasHeight: 100, PaddingPercent: 50}},
		{"bad hex color", MatteOptions{CanvasWidth: 100, CanvasHeight: 100, Color: "#12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Matte(src, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestCropCentersRegion(t *testing.T) {
	src := solidImage(100, 100, color.NRGBA{R: 200, G: 50, B: 50, A: 255})

	out, err := Crop(src, CropOptions{
		CropX: 10, CropY: 10, CropWidth: 20, CropHeight: 20,
		OutputWidth: 40, OutputHeight: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, 40, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())

	// 20x20 crop centered on 40x40: corners stay black, center carries the source
	corner := out.NRGBAAt(2, 2)
	assert.Equal(t, uint8(0), corner.R)

	center := out.NRGBAAt(20, 20)
	assert.Equal(t, uint8(200), center.R)
}

func TestCropRejectsOutOfBounds(t *testing.T) {
	src := solidImage(100, 100, color.NRGBA{A: 255})

	_, err := Crop(src, CropOptions{
		CropX: 90, CropY: 90, CropWidth: 20, CropHeight: 20,
		OutputWidth: 100, OutputHeight: 100,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds image boundaries")
}

func TestCropScalesDownToFit(t *testing.T) {
	src := solidImage(100, 100, color.NRGBA{R: 80, G: 80, B: 200, A: 255})

	out, err := Crop(src, CropOptions{
		OutputWidth: 150, OutputHeight: 100,
		Scale: 3.0,
	})
	require.NoError(t, err)

	// 300x300 overflows 150x100 and gets refit
	assert.Equal(t, 150, out.Bounds().Dx())
	assert.Equal(t, 100, out.Bounds().Dy())

	center := out.NRGBAAt(75, 50)
	assert.Greater(t, int(center.B), 150)
}

func TestCropDefaultsToFullFrame(t *testing.T) {
	src := solidImage(60, 40, color.NRGBA{R: 5, G: 5, B: 5, A: 255})

	out, err := Crop(src, CropOptions{
		OutputWidth: 60, OutputHeight: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, 60, out.Bounds().Dx())
	assert.Equal(t, 40, out.Bounds().Dy())
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#ff8800")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x88, B: 0x00, A: 255}, c)

	c, err = parseHexColor("0a0B0c")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 255}, c)

	_, err = parseHexColor("red")
	assert.Error(t, err)
}
