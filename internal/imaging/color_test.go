package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/photoedit-mcp/internal/colormatrix"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.RGBA{255, 255, 255, 255} // White bottom-right
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createGradientImage fills every channel with a distinct ramp so that all
// 8-bit values show up somewhere in the buffer.
func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x + y), 255})
		}
	}
	return img
}

func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestApplyMatrix_IdentityRoundTrip(t *testing.T) {
	src := createGradientImage(256, 256)

	out := ApplyMatrix(src, colormatrix.Identity())

	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, out.RGBAAt(x, y), src.RGBAAt(x, y))
			}
		}
	}
}

func TestApplyMatrix_NeutralFilterChain(t *testing.T) {
	src := createGradientImage(64, 64)

	out := ApplyMatrix(src, colormatrix.FilterChain(1, 1, 1))

	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if out.RGBAAt(x, y) != src.RGBAAt(x, y) {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, out.RGBAAt(x, y), src.RGBAAt(x, y))
			}
		}
	}
}

func TestApplyMatrix_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		m       colormatrix.Matrix
		in      color.RGBA
		r, g, b uint8
	}{
		{"invert red", colormatrix.Invert(), color.RGBA{255, 0, 0, 255}, 0, 255, 255},
		{"grayscale white", colormatrix.Grayscale(), color.RGBA{255, 255, 255, 255}, 255, 255, 255},
		{"brightness half", colormatrix.Brightness(0.5), color.RGBA{200, 100, 50, 255}, 100, 50, 25},
		{"brightness clamps", colormatrix.Brightness(2.0), color.RGBA{200, 100, 0, 255}, 255, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyMatrix(createInMemoryImage(4, 4, tt.in), tt.m)
			r, g, b := rgbAt(out, 1, 1)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestApplyMatrix_PreservesAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 128})
		}
	}

	out := ApplyMatrix(src, colormatrix.Invert())
	if a := out.RGBAAt(0, 0).A; a != 128 {
		t.Errorf("alpha: got %d, want 128", a)
	}
}

func TestBlur(t *testing.T) {
	img := createPatternImage(40, 40)

	if got := Blur(img, 0); got != image.Image(img) {
		t.Error("zero radius should return the input")
	}

	out := Blur(img, 3)
	if out.Bounds() != img.Bounds() {
		t.Errorf("bounds changed: %v -> %v", img.Bounds(), out.Bounds())
	}
	// Near the red/green seam the blur mixes both colors.
	r, g, _ := rgbAt(out, 20, 5)
	if r == 0 || g == 0 {
		t.Errorf("expected mixed red/green at seam, got r=%d g=%d", r, g)
	}
}
