// Package colormatrix builds the 4×5 color matrices used by the filter and
// effect tools.
//
// A Matrix holds 20 coefficients in row-major order. Each of the four rows
// (R, G, B, A) maps an input pixel to one output channel:
//
//	R' = m[0]*R + m[1]*G + m[2]*B + m[3]*A + m[4]
//	G' = m[5]*R + m[6]*G + m[7]*B + m[8]*A + m[9]
//	B' = m[10]*R + ...
//	A' = m[15]*R + ...
//
// Channels are normalized to [0,1], so offsets are in the same unit.
//
// # Composition
//
// Matrices compose as affine maps. Compose(a, b) is the single matrix that
// gives the same result as applying a and then b; composition is not
// commutative. The filter tool always applies brightness, then contrast,
// then saturation; FilterChain encodes that order.
//
// # Effects
//
// Effects are mutually exclusive named entries of a fixed catalog (see
// EffectNames). Unknown names resolve to Identity.
package colormatrix
