// Package anim orchestrates the batch pipeline: normalize, aggregate,
// color, interpolate, and render the output frame sequence.
package anim

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/levels"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/metrics"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/pathway"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/render"
)

// Options controls one animation run.
type Options struct {
	Duration    float64 // output length in seconds
	FPS         int
	Aggregation render.Method
	Seed        int64 // 0 means time-seeded; random aggregation only
	Labels      bool
	Workers     int         // parallel frame renderers; 0 means GOMAXPROCS
	Logger      *log.Logger // nil means silent
}

// Summary is the machine-readable account of one run.
type Summary struct {
	Pathway          string         `json:"pathway,omitempty"`
	Frames           int            `json:"frames"`
	Timepoints       int            `json:"timepoints"`
	ElementsRendered int            `json:"elements_rendered"`
	ElementsDropped  int            `json:"elements_dropped"`
	DatasetsUsed     int            `json:"datasets_used"`
	DatasetsDropped  []string       `json:"datasets_dropped,omitempty"`
	UnresolvedIDs    int            `json:"unresolved_ids"`
	UnresolvedSample []string       `json:"unresolved_sample,omitempty"`
	KindCounts       map[string]int `json:"kind_counts,omitempty"`
	ElapsedMs        float64        `json:"elapsed_ms"`
}

// Result is the rendered frame sequence plus its summary. Frames are
// in strict emission order.
type Result struct {
	Frames  []*image.RGBA
	Summary Summary
}

// elementTrack is one graphic element's derived color series, ready
// for per-frame interpolation.
type elementTrack struct {
	element  model.GraphicElement
	entities []model.Entity
	params   model.RenderParams
	colors   []render.TimedColor
}

// Run executes the whole batch: verify timepoints, normalize each
// dataset, aggregate per element, derive color series, and render
// duration*fps+1 frames (inclusive of the final tick) in parallel.
//
// A dataset with a degenerate range is dropped and the run continues
// as long as at least one dataset still contributes; otherwise the
// error is fatal.
func Run(ctx context.Context, ix *pathway.Index, base image.Image, datasets []*levels.Dataset, opts Options) (*Result, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := validate(opts); err != nil {
		return nil, err
	}

	// One shared timepoint set across every dataset.
	tpCount := 0
	for _, d := range datasets {
		if tpCount == 0 {
			tpCount = d.Timepoints
		} else if d.Timepoints != tpCount {
			return nil, &model.InconsistentTimepointsError{Dataset: d.Name, Want: tpCount, Got: d.Timepoints}
		}
	}
	if tpCount == 0 {
		return nil, fmt.Errorf("no datasets with timepoints to animate")
	}
	timepoints := model.UniformTimepoints(tpCount)

	summary := Summary{Timepoints: tpCount}

	var normalized []levels.NormalizedLevel
	for _, d := range datasets {
		stop := metrics.Timer(metrics.Normalize)
		lvls, err := levels.Normalize(d)
		stop()
		var degenerate *model.DegenerateRangeError
		if errors.As(err, &degenerate) {
			logger.Printf("dropping dataset %q: %v", d.Name, err)
			summary.DatasetsDropped = append(summary.DatasetsDropped, d.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, lvls...)
		summary.DatasetsUsed++
		summary.UnresolvedIDs += d.UnresolvedCount
		summary.UnresolvedSample = appendCapped(summary.UnresolvedSample, d.UnresolvedSample, 10)
	}
	if len(normalized) == 0 {
		if len(summary.DatasetsDropped) > 0 {
			return nil, fmt.Errorf("every dataset was dropped as degenerate; nothing to animate")
		}
		return nil, fmt.Errorf("no usable activity levels")
	}

	agg := render.NewAggregator(opts.Aggregation, NewSeededRand(opts.Seed))

	stopAgg := metrics.Timer(metrics.Aggregate)
	series, err := agg.Aggregate(ix, normalized, tpCount)
	stopAgg()
	if err != nil {
		return nil, err
	}
	summary.ElementsRendered = len(series)
	summary.ElementsDropped = len(ix.AllShapes()) - len(series)
	summary.KindCounts = kindCounts(ix)

	tracks := buildTracks(series, timepoints)

	frames, err := renderFrames(ctx, base, tracks, timepoints, opts)
	if err != nil {
		return nil, err
	}
	summary.Frames = len(frames)
	summary.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000

	return &Result{Frames: frames, Summary: summary}, nil
}

// buildTracks maps each element's aggregated values to colors, one per
// timepoint the element has data for, ordered by timepoint.
func buildTracks(series []render.ElementSeries, timepoints model.Timepoints) []elementTrack {
	defer metrics.Timer(metrics.ColorMapping)()

	tracks := make([]elementTrack, 0, len(series))
	for _, es := range series {
		indices := make([]int, 0, len(es.Values))
		for t := range es.Values {
			indices = append(indices, t)
		}
		sort.Ints(indices)

		colors := make([]render.TimedColor, 0, len(indices))
		for _, t := range indices {
			colors = append(colors, render.TimedColor{
				Position: timepoints.Positions[t],
				Color:    render.MapColor(es.Values[t], es.Params, es.Mid),
			})
		}
		tracks = append(tracks, elementTrack{
			element:  es.Element,
			entities: es.Entities,
			params:   es.Params,
			colors:   colors,
		})
	}
	return tracks
}

// renderFrames renders every frame of the sequence. Frames are
// independent, so they fan out across workers; each worker draws on
// its own canvas and results land in frame order by index, keeping the
// encoder's strictly sequential contract.
func renderFrames(ctx context.Context, base image.Image, tracks []elementTrack, timepoints model.Timepoints, opts Options) ([]*image.RGBA, error) {
	defer metrics.Timer(metrics.FrameRender)()

	frameCount := int(opts.Duration*float64(opts.FPS)) + 1
	frames := make([]*image.RGBA, frameCount)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	comp := render.Compositor{DrawLabels: opts.Labels}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k := 0; k < frameCount; k++ {
		k := k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := float64(k) / float64(opts.FPS)
			frame := render.NewFrame(base)
			for _, tr := range tracks {
				col := render.ColorAt(tr.colors, t)
				comp.DrawOverlay(frame, tr.element, tr.params, tr.entities, col)
			}
			render.DrawCounter(frame, timepoints.Nearest(t)+1, timepoints.Len())
			frames[k] = frame
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frames, nil
}

func validate(opts Options) error {
	if opts.FPS <= 0 {
		return &model.ConfigurationError{Field: "fps", Value: opts.FPS, Reason: "must be positive"}
	}
	if opts.Duration <= 0 {
		return &model.ConfigurationError{Field: "duration", Value: opts.Duration, Reason: "must be positive"}
	}
	if _, err := render.ParseMethod(string(opts.Aggregation)); err != nil {
		return err
	}
	return nil
}

// NewSeededRand returns the process-wide random source for a run. A
// zero seed falls back to the current time, accepting non-determinism.
func NewSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func kindCounts(ix *pathway.Index) map[string]int {
	out := make(map[string]int)
	for k, v := range ix.KindCounts() {
		out[string(k)] = v
	}
	return out
}

func appendCapped(dst, src []string, limit int) []string {
	for _, s := range src {
		if len(dst) >= limit {
			break
		}
		dst = append(dst, s)
	}
	return dst
}
