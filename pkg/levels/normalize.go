package levels

import (
	"math"
	"sort"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
)

// NormalizedLevel is one entity's series for one dataset, rescaled to
// the unit interval, paired with that dataset's rendering parameters.
// Mid is the rescaled mid-value, nil when the dataset has none.
//
// Values may fall slightly outside [0,1]: mid-value recentering widens
// the range on one side only, and downstream color mapping must
// extrapolate rather than clamp.
type NormalizedLevel struct {
	Entity model.Entity
	Params model.RenderParams
	Values []float64
	Mid    *float64
}

// Normalize rescales every series of a dataset into the unit interval.
//
// The observed range is [minLevel, maxLevel] across every value of
// every entity. When the dataset carries a mid-value, the range is
// first widened on the shorter side so the mid-value ends up
// equidistant from both ends; its normalized position is then
// reachable from both sides without a color discontinuity.
//
// A dataset with no variation is a DegenerateRangeError.
func Normalize(d *Dataset) ([]NormalizedLevel, error) {
	minLevel := math.Inf(1)
	maxLevel := math.Inf(-1)
	for _, series := range d.Series {
		for _, v := range series {
			if v < minLevel {
				minLevel = v
			}
			if v > maxLevel {
				maxLevel = v
			}
		}
	}
	if minLevel == maxLevel {
		return nil, &model.DegenerateRangeError{Dataset: d.Name, Level: minLevel}
	}

	if d.MidValue != nil {
		mid := *d.MidValue
		over := math.Max(maxLevel-mid, 0)
		under := math.Max(mid-minLevel, 0)
		if over > under {
			minLevel = mid - over
		} else if under > over {
			maxLevel = mid + under
		}
	}

	span := maxLevel - minLevel
	norm := func(x float64) float64 { return (x - minLevel) / span }

	var normMid *float64
	if d.MidValue != nil {
		m := norm(*d.MidValue)
		normMid = &m
	}

	out := make([]NormalizedLevel, 0, len(d.Series))
	for ent, series := range d.Series {
		params, ok := d.Params[ent.Kind]
		if !ok {
			// No rendering parameters for this kind means the dataset
			// does not draw it.
			continue
		}
		values := make([]float64, len(series))
		for i, v := range series {
			values[i] = norm(v)
		}
		out = append(out, NormalizedLevel{
			Entity: ent,
			Params: params,
			Values: values,
			Mid:    normMid,
		})
	}

	// Map iteration order is random; keep output deterministic.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity.Kind != out[j].Entity.Kind {
			return out[i].Entity.Kind < out[j].Entity.Kind
		}
		return out[i].Entity.ID < out[j].Entity.ID
	})
	return out, nil
}
