package tool

import (
	"image"
	"math"

	"github.com/ironsheep/photoedit-mcp/internal/editerr"
)

// Action is a serialisable adjustment, as received from a client.
//
// Op selects the adjustment; the other fields are its arguments:
//
//	crop:   set_rect(x, y, width, height)
//	flip:   toggle_horizontal, toggle_vertical
//	filter: select(param), nudge(delta), set(param, value)
//	effect: select(effect)
//	text:   set_text(text), resize(delta), set_color(color), move_to(x, y)
type Action struct {
	Op     string  `json:"op"`
	Param  string  `json:"param,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Effect string  `json:"effect,omitempty"`
	Text   string  `json:"text,omitempty"`
	Color  string  `json:"color,omitempty"`
	X      int     `json:"x,omitempty"`
	Y      int     `json:"y,omitempty"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

// Apply performs the action on s. It has the signature expected by
// Pipeline.Adjust.
func (a Action) Apply(s ToolState) (ToolState, error) {
	switch s := s.(type) {
	case CropState:
		if a.Op == "set_rect" {
			return s.SetRect(image.Rect(a.X, a.Y, a.X+a.Width, a.Y+a.Height))
		}
	case FlipState:
		switch a.Op {
		case "toggle_horizontal":
			return s.ToggleHorizontal(), nil
		case "toggle_vertical":
			return s.ToggleVertical(), nil
		}
	case FilterState:
		switch a.Op {
		case "select":
			return s.Select(FilterParam(a.Param))
		case "nudge":
			return s.Nudge(a.Delta)
		case "set":
			return s.Set(FilterParam(a.Param), a.Value)
		}
	case EffectState:
		if a.Op == "select" {
			return s.Select(a.Effect)
		}
	case TextOverlayState:
		switch a.Op {
		case "set_text":
			return s.SetText(a.Text), nil
		case "resize":
			return s.Resize(int(math.Round(a.Delta))), nil
		case "set_color":
			return s.SetColor(a.Color)
		case "move_to":
			return s.MoveTo(a.X, a.Y), nil
		}
	default:
		return s, editerr.Validationf("tool.action", "unsupported tool state %T", s)
	}
	return s, editerr.Validationf("tool.action", "%s tool has no action %q", s.Kind(), a.Op)
}
