package render

import (
	"math"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
)

// timeEpsilon is the distance under which an output time counts as an
// exact hit on a timepoint, in the same units as the positions.
const timeEpsilon = 1e-3

// TimedColor is one timepoint's color at its position on the output
// time axis.
type TimedColor struct {
	Position float64
	Color    model.RGB
}

// ColorAt maps a continuous output time to a color, given one graphic
// element's ordered (position, color) series. Pure: no state across
// calls.
//
// The nearest timepoint is found first (exact equidistant ties prefer
// the earlier one). An exact hit returns that color unchanged.
// Otherwise the two timepoints bracketing t are blended with a
// sigmoidal ease; past either end of the series the bracket collapses
// and the boundary color repeats with no extrapolation.
func ColorAt(series []TimedColor, t float64) model.RGB {
	closest := 0
	closestDist := math.Abs(t - series[0].Position)
	for i := 1; i < len(series); i++ {
		if d := math.Abs(t - series[i].Position); d < closestDist {
			closest = i
			closestDist = d
		}
	}
	if closestDist < timeEpsilon {
		return series[closest].Color
	}

	lo, hi := closest, closest+1
	if t < series[closest].Position {
		lo, hi = closest-1, closest
	}
	lo = clampIndex(lo, len(series))
	hi = clampIndex(hi, len(series))
	if lo == hi {
		return series[lo].Color
	}

	// Fractional position normalized by the actual spacing, so
	// non-uniform timepoints blend at their own pace.
	pos := (t - series[lo].Position) / (series[hi].Position - series[lo].Position)

	// Sigmoidal ease: slow-in/slow-out reads as smoother motion than a
	// linear cross-fade.
	s := 1 / (1 + math.Exp((0.5-pos)*10))
	return model.RGB{
		R: easeChannel(series[lo].Color.R, series[hi].Color.R, s),
		G: easeChannel(series[lo].Color.G, series[hi].Color.G, s),
		B: easeChannel(series[lo].Color.B, series[hi].Color.B, s),
	}
}

func easeChannel(from, to uint8, s float64) uint8 {
	v := int(float64(from) + (float64(to)-float64(from))*s)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
