// Command kegganim renders a time series of activity levels onto a
// KEGG pathway diagram as an animated GIF (or PNG frame sequence).
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/daishaoxing/kegg-animate-pathway/internal/datasource"
	"github.com/daishaoxing/kegg-animate-pathway/internal/watch"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/anim"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/config"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/debug"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/export"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/levels"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/metrics"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/pathway"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/render"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "Path to the run configuration YAML (required)")
	outPath := flag.String("out", "", "Override the configured output path")
	fps := flag.Int("fps", 0, "Override the configured frame rate")
	duration := flag.Float64("duration", 0, "Override the configured duration in seconds")
	aggregation := flag.String("aggregation", "", "Override the aggregation method (mean, median, lowest, highest, random)")
	seed := flag.Int64("seed", 0, "Seed for the random aggregation source (0 = time-based)")
	labels := flag.Bool("labels", false, "Draw entity-id labels on overlays")
	summaryPath := flag.String("summary", "", "Write a JSON run summary to this path")
	watch := flag.Bool("watch", false, "Re-render whenever a level file or the config changes")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	showTimings := flag.Bool("timings", false, "Print stage timings after the run")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: kegganim -config run.yaml [options]")
		fmt.Println("\nAnimates activity levels over a KEGG pathway diagram.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("kegganim %s\n", version.Version)
		os.Exit(0)
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required (see -help)")
		os.Exit(2)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	logger := log.New(os.Stderr, "", 0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overrides := runOverrides{
		out:         *outPath,
		fps:         *fps,
		duration:    *duration,
		aggregation: *aggregation,
		seed:        *seed,
		labels:      *labels,
		summaryPath: *summaryPath,
	}

	runOnce := func() error {
		cfg, err := loadConfig(*configPath, overrides)
		if err != nil {
			return err
		}
		return run(ctx, cfg, overrides.summaryPath, logger)
	}

	if err := runOnce(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !*watch {
			os.Exit(1)
		}
	}
	if *showTimings {
		printTimings(logger)
	}

	if *watch {
		if err := watchAndRerun(ctx, *configPath, overrides, runOnce, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

type runOverrides struct {
	out         string
	fps         int
	duration    float64
	aggregation string
	seed        int64
	labels      bool
	summaryPath string
}

func loadConfig(path string, o runOverrides) (config.Config, error) {
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	if o.out != "" {
		cfg.Output = o.out
	}
	if o.fps != 0 {
		cfg.FPS = o.fps
	}
	if o.duration != 0 {
		cfg.Duration = o.duration
	}
	if o.aggregation != "" {
		cfg.Aggregation = o.aggregation
	}
	if o.seed != 0 {
		cfg.Seed = o.seed
	}
	if o.labels {
		cfg.Labels = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, summaryPath string, logger *log.Logger) error {
	start := time.Now()

	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = datasource.DefaultCacheDir()
	}
	cache, err := datasource.OpenCache(cacheDir)
	if err != nil {
		// The cache is a convenience; fetch uncached rather than fail.
		logger.Printf("warning: cache unavailable (%v), fetching without cache", err)
		cache = nil
	}
	defer cache.Close()

	client := datasource.NewClient(cache)
	client.Logger = logger

	p, err := client.Pathway(ctx, cfg.Pathway)
	if err != nil {
		return err
	}
	logger.Printf("pathway %s: %s (%d drawable entries)", cfg.Pathway, p.Title, len(p.Entries))

	ix, err := pathway.BuildIndex(p)
	if err != nil {
		return err
	}

	imageRef := p.Image
	if imageRef == "" {
		imageRef = cfg.Pathway
	}
	base, err := client.BaseImage(ctx, imageRef)
	if err != nil {
		return err
	}

	datasets, err := loadDatasets(cfg, ix, logger)
	if err != nil {
		return err
	}

	dur := cfg.Duration
	if dur == 0 {
		// Default to one second per timepoint step.
		dur = float64(datasets[0].Timepoints - 1)
		if dur <= 0 {
			dur = 1
		}
	}

	method, err := render.ParseMethod(cfg.Aggregation)
	if err != nil {
		return err
	}

	result, err := anim.Run(ctx, ix, base, datasets, anim.Options{
		Duration:    dur,
		FPS:         cfg.FPS,
		Aggregation: method,
		Seed:        cfg.Seed,
		Labels:      cfg.Labels,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	result.Summary.Pathway = cfg.Pathway
	if debug.Enabled() {
		debug.Dump("run summary", result.Summary)
	}

	if cfg.Output != "" {
		if err := anim.WriteGIF(result.Frames, cfg.FPS, cfg.Output); err != nil {
			return err
		}
		logger.Printf("wrote %d frames to %s", len(result.Frames), cfg.Output)
	}
	if cfg.FrameDir != "" {
		if err := anim.WritePNGSequence(result.Frames, cfg.FrameDir); err != nil {
			return err
		}
		logger.Printf("wrote %d frames to %s/", len(result.Frames), cfg.FrameDir)
	}
	if cfg.Poster != "" {
		if err := savePoster(ctx, cfg, ix, base, datasets); err != nil {
			return err
		}
		logger.Printf("wrote poster to %s", cfg.Poster)
	}

	if summaryPath != "" {
		if err := writeSummary(summaryPath, result.Summary); err != nil {
			return err
		}
	}

	debug.LogTiming("run", time.Since(start))
	return nil
}

func loadDatasets(cfg config.Config, ix *pathway.Index, logger *log.Logger) ([]*levels.Dataset, error) {
	stop := metrics.Timer(metrics.LoadLevels)
	defer stop()

	datasets := make([]*levels.Dataset, 0, len(cfg.Datasets))
	for _, dc := range cfg.Datasets {
		d, err := levels.LoadFile(dc.Path, ix, levels.LoadOptions{
			Name:     dc.Name,
			Comma:    dc.DelimiterRune(),
			Params:   dc.RenderParams(),
			MidValue: dc.MidValue,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, d)
	}
	return datasets, nil
}

// savePoster re-derives the aggregated render set for the poster's
// timepoint. Posters are deterministic even under random aggregation
// only when a seed is configured, same as the animation itself.
func savePoster(ctx context.Context, cfg config.Config, ix *pathway.Index, base image.Image, datasets []*levels.Dataset) error {
	_ = ctx

	if tp := datasets[0].Timepoints; cfg.PosterTimepoint >= tp {
		return &model.ConfigurationError{
			Field:  "poster_timepoint",
			Value:  cfg.PosterTimepoint,
			Reason: fmt.Sprintf("must be below the timepoint count %d", tp),
		}
	}

	var normalized []levels.NormalizedLevel
	for _, d := range datasets {
		lvls, err := levels.Normalize(d)
		if err != nil {
			continue // degenerate datasets were already reported
		}
		normalized = append(normalized, lvls...)
	}
	method, err := render.ParseMethod(cfg.Aggregation)
	if err != nil {
		return err
	}
	agg := render.NewAggregator(method, anim.NewSeededRand(cfg.Seed))
	series, err := agg.Aggregate(ix, normalized, datasets[0].Timepoints)
	if err != nil {
		return err
	}
	return export.SavePoster(export.PosterOptions{
		Path:      cfg.Poster,
		Title:     cfg.Pathway,
		Timepoint: cfg.PosterTimepoint,
		Base:      base,
		Series:    series,
		Labels:    cfg.Labels,
	})
}

func writeSummary(path string, s anim.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// watchAndRerun blocks, re-running the pipeline whenever the config or
// any configured level file changes.
func watchAndRerun(ctx context.Context, configPath string, o runOverrides, runOnce func() error, logger *log.Logger) error {
	paths := []string{configPath}
	if cfg, err := loadConfig(configPath, o); err == nil {
		for _, d := range cfg.Datasets {
			paths = append(paths, d.Path)
		}
	}

	watcher, err := watch.New(paths, watch.WithOnError(func(err error) {
		logger.Printf("watch error: %v", err)
	}))
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	logger.Printf("watching for changes (Ctrl-C to stop)")
	watcher.Run(ctx, func() {
		debug.Log("debounced change burst on watched paths")
		logger.Printf("change detected, re-rendering")
		if err := runOnce(); err != nil {
			logger.Printf("render failed: %v", err)
		}
	})
	return nil
}

func printTimings(logger *log.Logger) {
	for _, s := range metrics.AllTimingStats() {
		logger.Printf("%-16s count=%d total=%.1fms avg=%.1fms max=%.1fms",
			s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
	}
}
