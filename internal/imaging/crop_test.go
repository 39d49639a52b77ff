package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := Crop(img, image.Rect(0, 0, 50, 50))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if result.Bounds().Dx() != 50 || result.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", result.Bounds().Dx(), result.Bounds().Dy())
	}
}

func TestCrop_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"x1 negative", -1, 0, 50, 50},
		{"y1 negative", 0, -1, 50, 50},
		{"x2 too large", 0, 0, 101, 50},
		{"y2 too large", 0, 0, 50, 101},
		{"all out of bounds", -1, -1, 200, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, image.Rect(tt.x1, tt.y1, tt.x2, tt.y2))
			if err == nil {
				t.Error("Crop should fail for out-of-bounds coordinates")
			}
		})
	}
}

func TestValidateCrop_InvalidRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	// image.Rect canonicalises swapped corners, so build the rectangles by
	// hand to keep them degenerate.
	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"x1 >= x2", image.Rectangle{Min: image.Pt(50, 0), Max: image.Pt(50, 50)}},
		{"x1 > x2", image.Rectangle{Min: image.Pt(60, 0), Max: image.Pt(50, 50)}},
		{"y1 >= y2", image.Rectangle{Min: image.Pt(0, 50), Max: image.Pt(50, 50)}},
		{"zero area", image.Rectangle{Min: image.Pt(50, 50), Max: image.Pt(50, 50)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateCrop(bounds, tt.rect); err == nil {
				t.Error("ValidateCrop should fail for invalid region")
			}
		})
	}
}

func TestCrop_VerifyContent(t *testing.T) {
	img := createPatternImage(100, 100)

	// Bottom-right quadrant is white.
	cropped, err := Crop(img, image.Rect(50, 50, 100, 100))
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	r, g, b, _ := cropped.At(25, 25).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("cropped color: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestApplyGeometry_Flip(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		g       Geometry
		wantTL  color.RGBA
		wantDim image.Point
	}{
		{"none", Geometry{}, color.RGBA{255, 0, 0, 255}, image.Pt(100, 100)},
		{"horizontal", Geometry{FlipH: true}, color.RGBA{0, 255, 0, 255}, image.Pt(100, 100)},
		{"vertical", Geometry{FlipV: true}, color.RGBA{0, 0, 255, 255}, image.Pt(100, 100)},
		{"both", Geometry{FlipH: true, FlipV: true}, color.RGBA{255, 255, 255, 255}, image.Pt(100, 100)},
		{"crop then flip", Geometry{Crop: image.Rect(0, 50, 100, 100), FlipH: true}, color.RGBA{255, 255, 255, 255}, image.Pt(100, 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ApplyGeometry(img, tt.g)
			if err != nil {
				t.Fatalf("ApplyGeometry failed: %v", err)
			}
			b := out.Bounds()
			if b.Dx() != tt.wantDim.X || b.Dy() != tt.wantDim.Y {
				t.Errorf("dimensions: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantDim.X, tt.wantDim.Y)
			}
			r, g, bl, _ := out.At(b.Min.X+5, b.Min.Y+5).RGBA()
			got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 255}
			if got != tt.wantTL {
				t.Errorf("top-left color: got %v, want %v", got, tt.wantTL)
			}
		})
	}
}

func TestApplyGeometry_InvalidCrop(t *testing.T) {
	img := createPatternImage(40, 40)
	if _, err := ApplyGeometry(img, Geometry{Crop: image.Rect(0, 0, 80, 80)}); err == nil {
		t.Error("ApplyGeometry should reject a crop outside the image")
	}
}

func TestGeometry_IsZero(t *testing.T) {
	if !(Geometry{}).IsZero() {
		t.Error("zero Geometry should report IsZero")
	}
	if (Geometry{FlipV: true}).IsZero() {
		t.Error("flip should not report IsZero")
	}
}

func TestFitWithin(t *testing.T) {
	img := createInMemoryImage(200, 100, color.RGBA{10, 20, 30, 255})

	if got := FitWithin(img, 400, 400); got != img {
		t.Error("image that already fits should be returned unchanged")
	}
	if got := FitWithin(img, 0, 0); got != img {
		t.Error("non-positive limits should disable fitting")
	}

	out := FitWithin(img, 100, 100)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Errorf("fit dimensions: got %dx%d, want 100x50", out.Bounds().Dx(), out.Bounds().Dy())
	}
}
