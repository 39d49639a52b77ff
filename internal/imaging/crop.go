package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Geometry describes the geometric part of a render transform.
type Geometry struct {
	// Crop selects a rectangle of the base image. The zero rectangle keeps
	// the whole image.
	Crop image.Rectangle `json:"crop"`

	// FlipH mirrors the image left to right.
	FlipH bool `json:"flip_h"`

	// FlipV mirrors the image top to bottom.
	FlipV bool `json:"flip_v"`
}

// IsZero reports whether g leaves the image unchanged.
func (g Geometry) IsZero() bool {
	return g.Crop.Empty() && !g.FlipH && !g.FlipV
}

// ValidateCrop checks that rect is a non-empty region inside bounds.
func ValidateCrop(bounds, rect image.Rectangle) error {
	if rect.Min.X < bounds.Min.X || rect.Min.Y < bounds.Min.Y || rect.Max.X > bounds.Max.X || rect.Max.Y > bounds.Max.Y {
		return fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
		return fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	return nil
}

// Crop extracts a rectangular region from an image.
func Crop(img image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	if err := ValidateCrop(img.Bounds(), rect); err != nil {
		return nil, err
	}
	return imaging.Crop(img, rect), nil
}

// ApplyGeometry crops and flips img as described by g.
func ApplyGeometry(img image.Image, g Geometry) (image.Image, error) {
	out := img
	if !g.Crop.Empty() {
		cropped, err := Crop(out, g.Crop)
		if err != nil {
			return nil, err
		}
		out = cropped
	}
	if g.FlipH {
		out = imaging.FlipH(out)
	}
	if g.FlipV {
		out = imaging.FlipV(out)
	}
	return out, nil
}

// FitWithin scales img down so that it fits in maxW×maxH, keeping its
// aspect ratio. Images that already fit are returned unchanged. A
// non-positive limit disables fitting.
func FitWithin(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if maxW <= 0 || maxH <= 0 || (b.Dx() <= maxW && b.Dy() <= maxH) {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}
