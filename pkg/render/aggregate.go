// Package render turns normalized activity levels into per-element
// colors and composites them onto diagram frames.
package render

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/levels"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/pathway"
)

// Method selects how multiple entity values sharing one graphic
// element are reduced to a single value per timepoint.
type Method string

const (
	MethodMean    Method = "mean"
	MethodMedian  Method = "median"
	MethodLowest  Method = "lowest"
	MethodHighest Method = "highest"
	MethodRandom  Method = "random"
)

// ParseMethod validates an aggregation method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodMean, MethodMedian, MethodLowest, MethodHighest, MethodRandom:
		return Method(s), nil
	default:
		return "", &model.ConfigurationError{Field: "aggregation", Value: s,
			Reason: "must be one of mean, median, lowest, highest, random"}
	}
}

// ElementSeries is the aggregated activity of one graphic element:
// one value per timepoint that at least one linked entity has data
// for. Timepoints with no contributors are absent from Values, never
// zero-filled.
type ElementSeries struct {
	Element  model.GraphicElement
	Entities []model.Entity // contributors, index registration order
	Params   model.RenderParams
	Mid      *float64 // normalized mid-value shared by all contributors

	Values map[int]float64 // timepoint index -> aggregated value
}

// Aggregator reduces per-entity values to per-element values. The
// random method draws from a single shared source seeded at process
// start so runs are reproducible under a fixed seed.
type Aggregator struct {
	method Method
	rng    *rand.Rand
}

// NewAggregator builds an aggregator. rng may be nil for any method
// except random.
func NewAggregator(method Method, rng *rand.Rand) *Aggregator {
	return &Aggregator{method: method, rng: rng}
}

// Aggregate walks every shape in the index and reduces the normalized
// values of its linked entities, timepoint by timepoint. Elements with
// zero usable timepoints are dropped from the render set. Entities
// sharing an element must carry identical rendering parameters and
// mid-value; divergence is a ConfigurationConflictError.
func (a *Aggregator) Aggregate(ix *pathway.Index, lvls []levels.NormalizedLevel, timepoints int) ([]ElementSeries, error) {
	if a.method == MethodRandom && a.rng == nil {
		return nil, fmt.Errorf("random aggregation requires a random source")
	}

	byEntity := make(map[model.Entity][]levels.NormalizedLevel, len(lvls))
	for _, lvl := range lvls {
		byEntity[lvl.Entity] = append(byEntity[lvl.Entity], lvl)
	}

	var out []ElementSeries
	for _, shape := range ix.AllShapes() {
		var contributors []model.Entity
		var contribLevels []levels.NormalizedLevel
		for _, ent := range ix.EntitiesOf(shape) {
			if entLvls, ok := byEntity[ent]; ok {
				contributors = append(contributors, ent)
				contribLevels = append(contribLevels, entLvls...)
			}
		}
		if len(contribLevels) == 0 {
			continue
		}

		params := contribLevels[0].Params
		mid := contribLevels[0].Mid
		for _, lvl := range contribLevels[1:] {
			if !lvl.Params.Equal(params) || !midEqual(lvl.Mid, mid) {
				return nil, &model.ConfigurationConflictError{Element: shape, Entities: contributors}
			}
		}

		values := make(map[int]float64, timepoints)
		for t := 0; t < timepoints; t++ {
			var sample []float64
			for _, lvl := range contribLevels {
				if t >= len(lvl.Values) {
					continue
				}
				if v := lvl.Values[t]; !math.IsNaN(v) {
					sample = append(sample, v)
				}
			}
			if len(sample) == 0 {
				continue
			}
			values[t] = a.reduce(sample)
		}
		if len(values) == 0 {
			// No usable timepoint anywhere in the series: the element
			// must not appear in any frame.
			continue
		}

		out = append(out, ElementSeries{
			Element:  shape,
			Entities: contributors,
			Params:   params,
			Mid:      mid,
			Values:   values,
		})
	}
	return out, nil
}

func (a *Aggregator) reduce(sample []float64) float64 {
	switch a.method {
	case MethodMean:
		return stat.Mean(sample, nil)
	case MethodMedian:
		sorted := append([]float64(nil), sample...)
		sort.Float64s(sorted)
		n := len(sorted)
		if n%2 == 1 {
			return sorted[n/2]
		}
		return (sorted[n/2-1] + sorted[n/2]) / 2
	case MethodLowest:
		return floats.Min(sample)
	case MethodHighest:
		return floats.Max(sample)
	case MethodRandom:
		return sample[a.rng.Intn(len(sample))]
	default:
		// ParseMethod guards construction; unreachable in practice.
		return stat.Mean(sample, nil)
	}
}

func midEqual(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
