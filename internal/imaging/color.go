package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/photoedit-mcp/internal/colormatrix"
)

// ApplyMatrix runs every pixel of img through m.
//
// The pass works on straight alpha: premultiplied input is un-premultiplied
// before the matrix and premultiplied again afterwards, so an identity
// matrix reproduces an opaque buffer exactly.
func ApplyMatrix(img image.Image, m colormatrix.Matrix) *image.RGBA {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		r, g, b, a := unpremultiply(c)
		r, g, b, a = m.Transform(r, g, b, a)
		return premultiply(r, g, b, a)
	})
}

// Blur applies a Gaussian blur with the given radius in pixels. A
// non-positive radius returns img unchanged.
func Blur(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}

func unpremultiply(c color.RGBA) (r, g, b, a float64) {
	if c.A == 0 {
		return 0, 0, 0, 0
	}
	a = float64(c.A) / 255
	r = float64(c.R) / 255 / a
	g = float64(c.G) / 255 / a
	b = float64(c.B) / 255 / a
	return math.Min(r, 1), math.Min(g, 1), math.Min(b, 1), a
}

func premultiply(r, g, b, a float64) color.RGBA {
	return color.RGBA{
		R: to8(r * a),
		G: to8(g * a),
		B: to8(b * a),
		A: to8(a),
	}
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
