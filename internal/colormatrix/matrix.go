package colormatrix

import (
	"fmt"
	"math"
)

// Matrix is a row-major 4×5 color transform.
type Matrix [20]float64

// Identity leaves every channel unchanged.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// At returns the coefficient at row r, column c.
func (m Matrix) At(r, c int) float64 { return m[r*5+c] }

// IsIdentity reports whether m equals Identity within tolerance eps.
func (m Matrix) IsIdentity(eps float64) bool {
	return m.ApproxEqual(Identity(), eps)
}

// ApproxEqual compares two matrices coefficient by coefficient.
func (m Matrix) ApproxEqual(o Matrix, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// Transform applies m to a normalized RGBA tuple. Results are clamped to
// [0,1].
func (m Matrix) Transform(r, g, b, a float64) (float64, float64, float64, float64) {
	in := [4]float64{r, g, b, a}
	var out [4]float64
	for row := 0; row < 4; row++ {
		v := m[row*5+4]
		for col := 0; col < 4; col++ {
			v += m[row*5+col] * in[col]
		}
		out[row] = clamp01(v)
	}
	return out[0], out[1], out[2], out[3]
}

// Then returns the matrix equivalent to applying m first and next second.
func (m Matrix) Then(next Matrix) Matrix {
	var out Matrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += next[r*5+k] * m[k*5+c]
			}
			out[r*5+c] = sum
		}
		off := next[r*5+4]
		for k := 0; k < 4; k++ {
			off += next[r*5+k] * m[k*5+4]
		}
		out[r*5+4] = off
	}
	return out
}

// Compose folds matrices in application order: the first argument is
// applied first.
func Compose(first Matrix, rest ...Matrix) Matrix {
	out := first
	for _, m := range rest {
		out = out.Then(m)
	}
	return out
}

func (m Matrix) String() string {
	return fmt.Sprintf("[%g %g %g %g %g | %g %g %g %g %g | %g %g %g %g %g | %g %g %g %g %g]",
		m[0], m[1], m[2], m[3], m[4],
		m[5], m[6], m[7], m[8], m[9],
		m[10], m[11], m[12], m[13], m[14],
		m[15], m[16], m[17], m[18], m[19])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
