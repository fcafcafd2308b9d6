package render_test

import (
	"testing"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/render"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/testutil"
)

func graySeries(positions ...float64) []render.TimedColor {
	series := make([]render.TimedColor, len(positions))
	step := 255 / (len(positions) - 1)
	for i, p := range positions {
		v := uint8(i * step)
		series[i] = render.TimedColor{Position: p, Color: model.RGB{R: v, G: v, B: v}}
	}
	return series
}

func TestColorAt_ExactHit(t *testing.T) {
	series := graySeries(0, 1, 2)

	testutil.AssertRGBEqual(t, render.ColorAt(series, 0), series[0].Color)
	testutil.AssertRGBEqual(t, render.ColorAt(series, 1), series[1].Color)
	testutil.AssertRGBEqual(t, render.ColorAt(series, 2), series[2].Color)
	// Within epsilon of a timepoint counts as a hit.
	testutil.AssertRGBEqual(t, render.ColorAt(series, 1.0005), series[1].Color)
}

func TestColorAt_BoundaryClamp(t *testing.T) {
	series := graySeries(0, 1, 2)

	// Past either end the boundary color repeats, no extrapolation.
	testutil.AssertRGBEqual(t, render.ColorAt(series, -5), series[0].Color)
	testutil.AssertRGBEqual(t, render.ColorAt(series, 7), series[2].Color)
}

func TestColorAt_SigmoidMidpoint(t *testing.T) {
	series := []render.TimedColor{
		{Position: 0, Color: model.RGB{R: 0, G: 0, B: 0}},
		{Position: 1, Color: model.RGB{R: 200, G: 200, B: 200}},
	}

	// At the exact center of a bracket the sigmoid is 0.5.
	testutil.AssertRGBEqual(t, render.ColorAt(series, 0.5), model.RGB{R: 100, G: 100, B: 100})
}

func TestColorAt_EaseIsMonotonic(t *testing.T) {
	series := []render.TimedColor{
		{Position: 0, Color: model.RGB{R: 0, G: 0, B: 0}},
		{Position: 1, Color: model.RGB{R: 255, G: 255, B: 255}},
	}

	prev := -1
	for i := 0; i <= 20; i++ {
		tt := float64(i) / 20
		got := int(render.ColorAt(series, tt).R)
		if got < prev {
			t.Fatalf("ease not monotonic at t=%v: %d < %d", tt, got, prev)
		}
		prev = got
	}
	// Ends meet the anchor colors.
	if first := render.ColorAt(series, 0); first.R != 0 {
		t.Errorf("start color drifted: %v", first)
	}
	if last := render.ColorAt(series, 1); last.R != 255 {
		t.Errorf("end color drifted: %v", last)
	}
}

func TestColorAt_EaseIsSlowNearTimepoints(t *testing.T) {
	series := []render.TimedColor{
		{Position: 0, Color: model.RGB{R: 0, G: 0, B: 0}},
		{Position: 1, Color: model.RGB{R: 255, G: 255, B: 255}},
	}

	// A sigmoid hugs the endpoints: at 10% into the bracket the blend
	// lags far behind a linear cross-fade.
	early := render.ColorAt(series, 0.1)
	if early.R > 25 {
		t.Errorf("blend at 10%% should lag linear (<=25), got %d", early.R)
	}
	late := render.ColorAt(series, 0.9)
	if late.R < 230 {
		t.Errorf("blend at 90%% should lead linear (>=230), got %d", late.R)
	}
}

func TestColorAt_NonUniformSpacing(t *testing.T) {
	series := []render.TimedColor{
		{Position: 0, Color: model.RGB{R: 0, G: 0, B: 0}},
		{Position: 1, Color: model.RGB{R: 100, G: 100, B: 100}},
		{Position: 5, Color: model.RGB{R: 200, G: 200, B: 200}},
	}

	// t=3 is halfway through the wide [1,5] bracket, so the blend sits
	// halfway between its endpoint colors.
	testutil.AssertRGBEqual(t, render.ColorAt(series, 3), model.RGB{R: 150, G: 150, B: 150})
}

func TestColorAt_SingleTimepoint(t *testing.T) {
	series := []render.TimedColor{{Position: 0, Color: model.RGB{R: 42, G: 42, B: 42}}}

	for _, tt := range []float64{-1, 0, 0.5, 10} {
		testutil.AssertRGBEqual(t, render.ColorAt(series, tt), series[0].Color)
	}
}
