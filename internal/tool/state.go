package tool

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ironsheep/photoedit-mcp/internal/colormatrix"
	"github.com/ironsheep/photoedit-mcp/internal/editerr"
	"github.com/ironsheep/photoedit-mcp/internal/imaging"
)

// Kind names an editing stage.
type Kind string

// Editing stages.
const (
	KindCrop   Kind = "crop"
	KindFlip   Kind = "flip"
	KindFilter Kind = "filter"
	KindEffect Kind = "effect"
	KindText   Kind = "text"
)

// Kinds lists every stage in menu order.
func Kinds() []Kind {
	return []Kind{KindCrop, KindFlip, KindFilter, KindEffect, KindText}
}

// ParseKind converts a stage name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", editerr.Validationf("tool.parse_kind", "unknown stage %q", s)
}

// ToolState holds the transient parameters of the active stage.
//
// The set of implementations is closed; switches over ToolState list every
// variant.
type ToolState interface {
	Kind() Kind
	toolState()
}

// CropState selects a rectangle of the current version.
type CropState struct {
	Rect   image.Rectangle `json:"rect"`
	Bounds image.Rectangle `json:"bounds"`
}

func (CropState) Kind() Kind { return KindCrop }
func (CropState) toolState() {}

// SetRect replaces the crop rectangle. It must be non-empty and inside
// Bounds.
func (s CropState) SetRect(r image.Rectangle) (CropState, error) {
	if err := imaging.ValidateCrop(s.Bounds, r); err != nil {
		return s, editerr.Validation("crop.set_rect", err)
	}
	s.Rect = r
	return s, nil
}

// FlipState mirrors the image.
type FlipState struct {
	Horizontal bool `json:"horizontal"`
	Vertical   bool `json:"vertical"`
}

func (FlipState) Kind() Kind { return KindFlip }
func (FlipState) toolState() {}

// ToggleHorizontal flips left to right.
func (s FlipState) ToggleHorizontal() FlipState {
	s.Horizontal = !s.Horizontal
	return s
}

// ToggleVertical flips top to bottom.
func (s FlipState) ToggleVertical() FlipState {
	s.Vertical = !s.Vertical
	return s
}

// FilterParam names one adjustable filter value.
type FilterParam string

// Filter parameters.
const (
	ParamBrightness FilterParam = "brightness"
	ParamContrast   FilterParam = "contrast"
	ParamSaturation FilterParam = "saturation"
	ParamBlur       FilterParam = "blur"
)

// FilterStep is the nudge applied by one tap of the +/- controls.
const FilterStep = 0.1

// FilterState holds the brightness, contrast, saturation and blur sliders.
type FilterState struct {
	Brightness float64     `json:"brightness"`
	Contrast   float64     `json:"contrast"`
	Saturation float64     `json:"saturation"`
	Blur       float64     `json:"blur"`
	Selected   FilterParam `json:"selected"`
}

func (FilterState) Kind() Kind { return KindFilter }
func (FilterState) toolState() {}

// DefaultFilterState leaves the image unchanged.
func DefaultFilterState() FilterState {
	return FilterState{Brightness: 1, Contrast: 1, Saturation: 1, Selected: ParamBrightness}
}

func checkParam(op string, p FilterParam) error {
	switch p {
	case ParamBrightness, ParamContrast, ParamSaturation, ParamBlur:
		return nil
	}
	return editerr.Validationf(op, "unknown filter parameter %q", p)
}

// Select makes p the parameter affected by Nudge.
func (s FilterState) Select(p FilterParam) (FilterState, error) {
	if err := checkParam("filter.select", p); err != nil {
		return s, err
	}
	s.Selected = p
	return s, nil
}

// Value returns the current value of p.
func (s FilterState) Value(p FilterParam) float64 {
	switch p {
	case ParamBrightness:
		return s.Brightness
	case ParamContrast:
		return s.Contrast
	case ParamSaturation:
		return s.Saturation
	case ParamBlur:
		return s.Blur
	}
	return 0
}

// Set assigns v to p, clamped to the parameter's range.
func (s FilterState) Set(p FilterParam, v float64) (FilterState, error) {
	if err := checkParam("filter.set", p); err != nil {
		return s, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return s, editerr.Validationf("filter.set", "%s must be a finite number", p)
	}
	switch p {
	case ParamBrightness:
		s.Brightness = colormatrix.ClampFactor(v)
	case ParamContrast:
		s.Contrast = colormatrix.ClampFactor(v)
	case ParamSaturation:
		s.Saturation = colormatrix.ClampFactor(v)
	case ParamBlur:
		s.Blur = colormatrix.ClampBlur(v)
	}
	return s, nil
}

// Nudge adds delta to the selected parameter, clamped.
func (s FilterState) Nudge(delta float64) (FilterState, error) {
	return s.Set(s.Selected, s.Value(s.Selected)+delta)
}

// Matrix returns brightness, contrast and saturation as one matrix.
func (s FilterState) Matrix() colormatrix.Matrix {
	return colormatrix.FilterChain(s.Brightness, s.Contrast, s.Saturation)
}

// EffectState selects one entry of the effect catalog.
type EffectState struct {
	Effect string `json:"effect"`
}

func (EffectState) Kind() Kind { return KindEffect }
func (EffectState) toolState() {}

// Select switches to a named effect. Unknown names are rejected.
func (s EffectState) Select(name string) (EffectState, error) {
	if !colormatrix.IsEffect(name) {
		return s, editerr.Validationf("effect.select", "unknown effect %q", name)
	}
	s.Effect = name
	return s, nil
}

// Text overlay defaults and limits.
const (
	DefaultText      = "Your Text Here"
	DefaultTextSize  = 30
	MinTextSize      = 10
	MaxTextSize      = 100
	TextSizeStep     = 2
	DefaultTextColor = "#FFFFFF"
)

// DefaultTextPosition is where new text is placed.
var DefaultTextPosition = image.Pt(50, 100)

// TextPalette is the set of colors offered by the text stage.
var TextPalette = []string{
	"#FFFFFF", "#FF0000", "#00FF00", "#0000FF",
	"#FFFF00", "#FF00FF", "#00FFFF", "#000000",
}

// TextOverlayState positions a line of text on the image.
type TextOverlayState struct {
	Text     string          `json:"text"`
	Size     int             `json:"size"`
	Color    string          `json:"color"`
	Position image.Point     `json:"position"`
	Bounds   image.Rectangle `json:"bounds"`
}

func (TextOverlayState) Kind() Kind { return KindText }
func (TextOverlayState) toolState() {}

// SetText replaces the text. Empty text renders nothing.
func (s TextOverlayState) SetText(text string) TextOverlayState {
	s.Text = text
	return s
}

// Resize changes the font size by delta, clamped to [MinTextSize, MaxTextSize].
func (s TextOverlayState) Resize(delta int) TextOverlayState {
	s.Size = min(MaxTextSize, max(MinTextSize, s.Size+delta))
	return s
}

// SetColor sets the text color from a "#RRGGBB" string.
func (s TextOverlayState) SetColor(hex string) (TextOverlayState, error) {
	c, err := imaging.ParseHexColor(hex)
	if err != nil {
		return s, editerr.Validation("text.set_color", err)
	}
	s.Color = fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	return s, nil
}

// MoveTo places the text at (x, y), clamped to the image bounds.
func (s TextOverlayState) MoveTo(x, y int) TextOverlayState {
	s.Position = clampPoint(image.Pt(x, y), s.Bounds)
	return s
}

// Overlay converts the state to a render overlay.
func (s TextOverlayState) Overlay() imaging.TextOverlay {
	return imaging.TextOverlay{Text: s.Text, Size: s.Size, Color: s.Color, Position: s.Position}
}

func clampPoint(p image.Point, b image.Rectangle) image.Point {
	if b.Empty() {
		return p
	}
	p.X = min(b.Max.X-1, max(b.Min.X, p.X))
	p.Y = min(b.Max.Y-1, max(b.Min.Y, p.Y))
	return p
}

// DefaultState returns the initial ToolState for kind on an image with the
// given bounds.
func DefaultState(kind Kind, bounds image.Rectangle) (ToolState, error) {
	switch kind {
	case KindCrop:
		return CropState{Rect: bounds, Bounds: bounds}, nil
	case KindFlip:
		return FlipState{}, nil
	case KindFilter:
		return DefaultFilterState(), nil
	case KindEffect:
		return EffectState{Effect: colormatrix.EffectIdentity}, nil
	case KindText:
		return TextOverlayState{
			Text:     DefaultText,
			Size:     DefaultTextSize,
			Color:    DefaultTextColor,
			Position: clampPoint(DefaultTextPosition, bounds),
			Bounds:   bounds,
		}, nil
	}
	return nil, editerr.Validationf("tool.default_state", "unknown stage %q", kind)
}

// TransformFor derives the render transform for a ToolState.
func TransformFor(s ToolState) (imaging.Transform, error) {
	t := imaging.IdentityTransform()
	switch s := s.(type) {
	case CropState:
		t.Geometry.Crop = s.Rect
	case FlipState:
		t.Geometry.FlipH = s.Horizontal
		t.Geometry.FlipV = s.Vertical
	case FilterState:
		t.Color = s.Matrix()
		t.Blur = s.Blur
	case EffectState:
		t.Color = colormatrix.Effect(s.Effect)
	case TextOverlayState:
		o := s.Overlay()
		t.Overlay = &o
	default:
		return t, editerr.Validationf("tool.transform", "unsupported tool state %T", s)
	}
	return t, nil
}
