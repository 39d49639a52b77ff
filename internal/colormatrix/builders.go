package colormatrix

import "math"

// Parameter bounds for the filter tool.
const (
	MinFactor = 0.1
	MaxFactor = 2.0
	MinBlur   = 0.0
	MaxBlur   = 10.0
)

// Luminance weights used by Saturation.
const (
	satRW = 0.3086
	satGW = 0.6094
	satBW = 0.0820
)

// ClampFactor bounds a brightness, contrast or saturation factor.
func ClampFactor(v float64) float64 { return math.Max(MinFactor, math.Min(MaxFactor, v)) }

// ClampBlur bounds a blur radius.
func ClampBlur(v float64) float64 { return math.Max(MinBlur, math.Min(MaxBlur, v)) }

// Grayscale maps every color channel to Rec. 709 luma.
func Grayscale() Matrix {
	return Matrix{
		0.2126, 0.7152, 0.0722, 0, 0,
		0.2126, 0.7152, 0.0722, 0, 0,
		0.2126, 0.7152, 0.0722, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Sepia applies the common sepia tone weighting.
func Sepia() Matrix {
	return Matrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Invert computes 1 - c for each color channel. Alpha is untouched.
func Invert() Matrix {
	return Matrix{
		-1, 0, 0, 0, 1,
		0, -1, 0, 0, 1,
		0, 0, -1, 0, 1,
		0, 0, 0, 1, 0,
	}
}

// HueRotation rotates hue by angle radians using the NTSC luminance
// weights (0.213, 0.715, 0.072).
//
// Rows are output channels, matching the SVG feColorMatrix hueRotate
// definition. Each row sums to 1 so grays are unchanged.
func HueRotation(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	return Matrix{
		0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928, 0, 0,
		0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283, 0, 0,
		0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Vibrance scales R, G and B uniformly by 1 + value*0.5.
//
// This is a plain gain, not a saturation-selective vibrance.
func Vibrance(value float64) Matrix {
	g := 1 + value*0.5
	return Matrix{
		g, 0, 0, 0, 0,
		0, g, 0, 0, 0,
		0, 0, g, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Emboss is a fixed cross-channel matrix giving a relief look.
func Emboss() Matrix {
	return Matrix{
		1, 1, 1, 0, 0,
		1, 0.7, -1, 0, 0,
		1, -1, -1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Noise boosts each channel with a share of its neighbours.
func Noise() Matrix {
	return Matrix{
		1.2, 0.4, 0.2, 0, 0,
		0.4, 1.2, 0.4, 0, 0,
		0.2, 0.4, 1.2, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Brightness scales R, G and B by value.
func Brightness(value float64) Matrix {
	return Matrix{
		value, 0, 0, 0, 0,
		0, value, 0, 0, 0,
		0, 0, value, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Contrast scales R, G and B by value around mid-gray.
func Contrast(value float64) Matrix {
	off := 0.5 * (1 - value)
	return Matrix{
		value, 0, 0, 0, off,
		0, value, 0, 0, off,
		0, 0, value, 0, off,
		0, 0, 0, 1, 0,
	}
}

// Saturation mixes each pixel with its luminance. 0 is gray, 1 is
// unchanged, values above 1 oversaturate.
func Saturation(value float64) Matrix {
	inv := 1 - value
	return Matrix{
		inv*satRW + value, inv * satGW, inv * satBW, 0, 0,
		inv * satRW, inv*satGW + value, inv * satBW, 0, 0,
		inv * satRW, inv * satGW, inv*satBW + value, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// FilterChain returns the single matrix for the filter tool's adjustments,
// applied in the fixed order brightness, contrast, saturation.
func FilterChain(brightness, contrast, saturation float64) Matrix {
	return Compose(Brightness(brightness), Contrast(contrast), Saturation(saturation))
}
