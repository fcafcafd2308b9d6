package render

import "github.com/daishaoxing/kegg-animate-pathway/pkg/model"

// MapColor converts an aggregated normalized value into an RGB color
// through a two-segment linear gradient.
//
// Without a mid-value the gradient runs start -> end. With one, values
// below the mid interpolate start -> mid and values above interpolate
// mid -> end, each with its own local fraction, so the gradient may be
// asymmetric around the anchor.
//
// The input is not clamped: mid-value recentering can push normalized
// values slightly outside [0,1] and those extrapolate linearly. The
// degenerate anchors mid==0 and mid==1 saturate the local fraction to
// [0,1] instead of dividing by zero.
func MapColor(a float64, params model.RenderParams, mid *float64) model.RGB {
	if mid == nil {
		return lerpRGB(params.StartColor, params.EndColor, a)
	}

	m := *mid
	delta := a - m
	switch {
	case delta == 0:
		return params.MidColor
	case delta < 0:
		if m <= 0 {
			return params.StartColor
		}
		return lerpRGB(params.StartColor, params.MidColor, a/m)
	default:
		if m >= 1 {
			return params.EndColor
		}
		return lerpRGB(params.MidColor, params.EndColor, delta/(1-m))
	}
}

// lerpRGB interpolates each channel independently and truncates to an
// integer. The fraction may lie outside [0,1]; channels are clamped to
// the representable byte range only after extrapolation.
func lerpRGB(from, to model.RGB, f float64) model.RGB {
	return model.RGB{
		R: lerpChannel(from.R, to.R, f),
		G: lerpChannel(from.G, to.G, f),
		B: lerpChannel(from.B, to.B, f),
	}
}

func lerpChannel(from, to uint8, f float64) uint8 {
	v := int(float64(from) + (float64(to)-float64(from))*f)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
