package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextOverlay is a single line of text drawn on top of the image.
type TextOverlay struct {
	// Text is the line to draw. Empty text draws nothing.
	Text string `json:"text"`

	// Size is the glyph height in pixels.
	Size int `json:"size"`

	// Color is a "#RRGGBB" hex string.
	Color string `json:"color"`

	// Position is the top-left corner of the text box in image pixels.
	Position image.Point `json:"position"`
}

// ParseHexColor parses "#RRGGBB" (or "RRGGBB") into an opaque color.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// DrawText renders o onto a copy of img.
//
// Glyphs come from the 7×13 basic bitmap face and are scaled with
// nearest-neighbour sampling to the requested size, keeping the pixel look
// of the face at any size.
func DrawText(img image.Image, o TextOverlay) (image.Image, error) {
	if o.Text == "" || o.Size <= 0 {
		return img, nil
	}
	fg, err := ParseHexColor(o.Color)
	if err != nil {
		return nil, err
	}

	face := basicfont.Face7x13
	metrics := face.Metrics()
	w := font.MeasureString(face, o.Text).Ceil()
	h := metrics.Height.Ceil()
	if w == 0 || h == 0 {
		return img, nil
	}

	glyphs := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(o.Text)

	scaledW := w * o.Size / h
	if scaledW < 1 {
		scaledW = 1
	}
	scaled := imaging.Resize(glyphs, scaledW, o.Size, imaging.NearestNeighbor)

	b := img.Bounds()
	pos := o.Position.Add(b.Min)
	return imaging.Overlay(img, scaled, pos, 1.0), nil
}
