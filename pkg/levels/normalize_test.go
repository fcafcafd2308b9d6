package levels_test

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/levels"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/testutil"
)

func dataset(series map[model.Entity][]float64, mid *float64) *levels.Dataset {
	return &levels.Dataset{
		Name:     "expr",
		Params:   geneParams(),
		MidValue: mid,
		Series:   series,
	}
}

func gene(id string) model.Entity {
	return model.Entity{ID: id, Kind: model.KindGene}
}

func TestNormalize_MinMaxMapToUnitInterval(t *testing.T) {
	d := dataset(map[model.Entity][]float64{
		gene("a"): {2, 6},
		gene("b"): {4, 10},
	}, nil)

	out, err := levels.Normalize(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 normalized series, got %d", len(out))
	}
	// The range is global across entities: [2,10].
	testutil.AssertFloatNear(t, out[0].Values[0], 0.0, 1e-12)
	testutil.AssertFloatNear(t, out[0].Values[1], 0.5, 1e-12)
	testutil.AssertFloatNear(t, out[1].Values[1], 1.0, 1e-12)
}

func TestNormalize_OutputIsSorted(t *testing.T) {
	d := dataset(map[model.Entity][]float64{
		gene("b"): {0, 1},
		gene("a"): {0, 1},
	}, nil)

	out, err := levels.Normalize(d)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Entity.ID != "a" || out[1].Entity.ID != "b" {
		t.Errorf("output not sorted by id: %v, %v", out[0].Entity, out[1].Entity)
	}
}

func TestNormalize_DegenerateRange(t *testing.T) {
	d := dataset(map[model.Entity][]float64{
		gene("a"): {5, 5, 5},
	}, nil)

	_, err := levels.Normalize(d)
	var degenerate *model.DegenerateRangeError
	if !errors.As(err, &degenerate) {
		t.Fatalf("expected DegenerateRangeError, got %v", err)
	}
	if degenerate.Level != 5 {
		t.Errorf("unexpected level: %v", degenerate.Level)
	}
}

func TestNormalize_MidValueRecentersRange(t *testing.T) {
	// Observed range [0,10], mid 2: the under side (2) is shorter than
	// the over side (8), so the minimum widens to 2-8 = -6 and the mid
	// lands at 0.5.
	mid := 2.0
	d := dataset(map[model.Entity][]float64{
		gene("a"): {0, 10},
	}, &mid)

	out, err := levels.Normalize(d)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Mid == nil {
		t.Fatal("expected a normalized mid")
	}
	testutil.AssertFloatNear(t, *out[0].Mid, 0.5, 1e-12)
	// Raw 0 maps into the widened range [-6,10].
	testutil.AssertFloatNear(t, out[0].Values[0], 6.0/16.0, 1e-12)
	testutil.AssertFloatNear(t, out[0].Values[1], 1.0, 1e-12)
}

func TestNormalize_MidValueOutsideRangeExtrapolates(t *testing.T) {
	// Mid below the whole range: every value is on the over side, the
	// minimum widens past the data and all values land above 0.5.
	mid := -10.0
	d := dataset(map[model.Entity][]float64{
		gene("a"): {0, 10},
	}, &mid)

	out, err := levels.Normalize(d)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertFloatNear(t, *out[0].Mid, 0.5, 1e-12)
	for _, v := range out[0].Values {
		if v < 0.5 {
			t.Errorf("value %v should sit above the mid", v)
		}
	}
}

func TestNormalize_SkipsKindsWithoutParams(t *testing.T) {
	d := dataset(map[model.Entity][]float64{
		gene("a"): {0, 1},
		{ID: "c00031", Kind: model.KindCompound}: {0, 1},
	}, nil)

	out, err := levels.Normalize(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Entity.Kind != model.KindGene {
		t.Errorf("expected only the gene series, got %v", out)
	}
}

// =============================================================================
// Property Tests
// =============================================================================

func TestNormalize_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		raw := make([]float64, n)
		for i := range raw {
			raw[i] = rapid.Float64Range(-1e6, 1e6).Draw(rt, "v")
		}
		minRaw, maxRaw := raw[0], raw[0]
		for _, v := range raw {
			minRaw = math.Min(minRaw, v)
			maxRaw = math.Max(maxRaw, v)
		}
		if minRaw == maxRaw {
			rt.Skip("degenerate range")
		}

		d := dataset(map[model.Entity][]float64{gene("a"): raw}, nil)
		out, err := levels.Normalize(d)
		if err != nil {
			rt.Fatal(err)
		}
		values := out[0].Values

		// Without a mid-value the extremes map exactly to 0 and 1 and
		// everything stays inside the unit interval.
		gotMin, gotMax := values[0], values[0]
		for _, v := range values {
			gotMin = math.Min(gotMin, v)
			gotMax = math.Max(gotMax, v)
			if v < -1e-9 || v > 1+1e-9 {
				rt.Fatalf("value %v outside unit interval", v)
			}
		}
		if math.Abs(gotMin) > 1e-9 || math.Abs(gotMax-1) > 1e-9 {
			rt.Fatalf("extremes %v..%v, want 0..1", gotMin, gotMax)
		}

		// Order is preserved.
		for i := range raw {
			for j := range raw {
				if raw[i] < raw[j] && values[i] > values[j] {
					rt.Fatalf("order not preserved: raw %v<%v but norm %v>%v",
						raw[i], raw[j], values[i], values[j])
				}
			}
		}
	})
}

func TestNormalize_MidEquidistanceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.Float64Range(-1000, 1000).Draw(rt, "lo")
		hi := lo + rapid.Float64Range(1, 1000).Draw(rt, "span")
		mid := rapid.Float64Range(lo-100, hi+100).Draw(rt, "mid")

		d := dataset(map[model.Entity][]float64{gene("a"): {lo, hi}}, &mid)
		out, err := levels.Normalize(d)
		if err != nil {
			rt.Fatal(err)
		}
		if out[0].Mid == nil {
			rt.Fatal("expected normalized mid")
		}
		// The mid-value always normalizes to the exact center.
		if math.Abs(*out[0].Mid-0.5) > 1e-9 {
			rt.Fatalf("normalized mid %v, want 0.5", *out[0].Mid)
		}
	})
}
