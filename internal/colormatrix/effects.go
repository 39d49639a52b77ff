package colormatrix

// Effect names.
const (
	EffectIdentity    = "identity"
	EffectGrayscale   = "grayscale"
	EffectSepia       = "sepia"
	EffectInvert      = "invert"
	EffectHueRotation = "hueRotation"
	EffectVibrance    = "vibrance"
	EffectEmboss      = "emboss"
	EffectNoise       = "noise"
)

// Catalog parameters for the parameterised effects.
const (
	HueRotationAngle = 0.3
	VibranceAmount   = 1.5
)

var effects = []struct {
	name  string
	build func() Matrix
}{
	{EffectIdentity, Identity},
	{EffectGrayscale, Grayscale},
	{EffectSepia, Sepia},
	{EffectInvert, Invert},
	{EffectHueRotation, func() Matrix { return HueRotation(HueRotationAngle) }},
	{EffectVibrance, func() Matrix { return Vibrance(VibranceAmount) }},
	{EffectEmboss, Emboss},
	{EffectNoise, Noise},
}

// EffectNames lists the catalog in display order.
func EffectNames() []string {
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = e.name
	}
	return names
}

// IsEffect reports whether name is in the catalog.
func IsEffect(name string) bool {
	for _, e := range effects {
		if e.name == name {
			return true
		}
	}
	return false
}

// Effect returns the matrix for a catalog entry. Unknown names give
// Identity.
func Effect(name string) Matrix {
	for _, e := range effects {
		if e.name == name {
			return e.build()
		}
	}
	return Identity()
}
