// Package config handles loading and validating kegganim run
// configuration.
//
// A run is described by a single YAML file naming the pathway, the
// output, and one or more activity-level datasets with their rendering
// parameters:
//
//	pathway: hsa00010
//	output: glycolysis.gif
//	fps: 10
//	duration: 12
//	aggregation: mean
//	datasets:
//	  - path: expression.tsv
//	    mid_value: 1.0
//	    gene:
//	      start_color: [0, 0, 255]
//	      mid_color: [255, 255, 255]
//	      end_color: [255, 0, 0]
//	      blur: 2
//	      transparency: 40
//	      scale: 1.0
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
)

// Color is an RGB triple in YAML list form. Channels must lie in
// [0,255].
type Color [3]int

// RGB converts a validated color to the model type.
func (c Color) RGB() model.RGB {
	return model.RGB{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2])}
}

func (c Color) validate(field string) error {
	for _, ch := range c {
		if ch < 0 || ch > 255 {
			return &model.ConfigurationError{Field: field, Value: ch, Reason: "channel must be in [0,255]"}
		}
	}
	return nil
}

// Params holds rendering parameters for one entity kind of one
// dataset. MidColor defaults to the channel-wise midpoint of start and
// end when omitted.
type Params struct {
	StartColor   Color   `yaml:"start_color"`
	MidColor     *Color  `yaml:"mid_color,omitempty"`
	EndColor     Color   `yaml:"end_color"`
	Blur         int     `yaml:"blur,omitempty"`
	Transparency int     `yaml:"transparency,omitempty"`
	Scale        float64 `yaml:"scale,omitempty"` // 0 means the default of 1
}

// Dataset describes one activity-level file and how to draw it.
type Dataset struct {
	Path      string   `yaml:"path"`
	Name      string   `yaml:"name,omitempty"`
	Delimiter string   `yaml:"delimiter,omitempty"` // single rune; default tab
	MidValue  *float64 `yaml:"mid_value,omitempty"` // raw units
	Gene      *Params  `yaml:"gene,omitempty"`
	Compound  *Params  `yaml:"compound,omitempty"`
}

// Config is the top-level run configuration.
type Config struct {
	Pathway         string    `yaml:"pathway"`
	Output          string    `yaml:"output,omitempty"`    // animated GIF path
	FrameDir        string    `yaml:"frame_dir,omitempty"` // PNG sequence instead of/next to the GIF
	Poster          string    `yaml:"poster,omitempty"`    // static SVG of one timepoint
	PosterTimepoint int       `yaml:"poster_timepoint,omitempty"`
	Duration        float64   `yaml:"duration,omitempty"`
	FPS             int       `yaml:"fps,omitempty"`
	Aggregation     string    `yaml:"aggregation,omitempty"`
	Seed            int64     `yaml:"seed,omitempty"`
	Labels          bool      `yaml:"labels,omitempty"`
	CacheDir        string    `yaml:"cache_dir,omitempty"`
	Datasets        []Dataset `yaml:"datasets"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		FPS:         10,
		Aggregation: "mean",
	}
}

// LoadFrom reads a run configuration from a specific path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate front-loads every configuration check so all errors are
// reported before any processing begins.
func (c *Config) Validate() error {
	if c.Pathway == "" {
		return &model.ConfigurationError{Field: "pathway", Value: "", Reason: "is required"}
	}
	if c.FPS <= 0 {
		return &model.ConfigurationError{Field: "fps", Value: c.FPS, Reason: "must be positive"}
	}
	if c.Duration < 0 {
		return &model.ConfigurationError{Field: "duration", Value: c.Duration, Reason: "must not be negative"}
	}
	if c.Output == "" && c.FrameDir == "" && c.Poster == "" {
		return &model.ConfigurationError{Field: "output", Value: "", Reason: "at least one of output, frame_dir, poster is required"}
	}
	// The upper bound depends on the loaded datasets and is checked
	// again once the timepoint count is known.
	if c.PosterTimepoint < 0 {
		return &model.ConfigurationError{Field: "poster_timepoint", Value: c.PosterTimepoint, Reason: "must be non-negative"}
	}
	if len(c.Datasets) == 0 {
		return &model.ConfigurationError{Field: "datasets", Value: nil, Reason: "at least one dataset is required"}
	}
	for i := range c.Datasets {
		if err := c.Datasets[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dataset) validate(i int) error {
	field := func(name string) string { return fmt.Sprintf("datasets[%d].%s", i, name) }
	if d.Path == "" {
		return &model.ConfigurationError{Field: field("path"), Value: "", Reason: "is required"}
	}
	if d.Delimiter != "" && utf8.RuneCountInString(d.Delimiter) != 1 {
		return &model.ConfigurationError{Field: field("delimiter"), Value: d.Delimiter, Reason: "must be a single character"}
	}
	if d.Gene == nil && d.Compound == nil {
		return &model.ConfigurationError{Field: field("gene"), Value: nil, Reason: "at least one of gene, compound parameter blocks is required"}
	}
	for name, p := range map[string]*Params{"gene": d.Gene, "compound": d.Compound} {
		if p == nil {
			continue
		}
		if err := p.StartColor.validate(field(name + ".start_color")); err != nil {
			return err
		}
		if err := p.EndColor.validate(field(name + ".end_color")); err != nil {
			return err
		}
		if p.MidColor != nil {
			if err := p.MidColor.validate(field(name + ".mid_color")); err != nil {
				return err
			}
		}
		if p.Blur < 0 {
			return &model.ConfigurationError{Field: field(name + ".blur"), Value: p.Blur, Reason: "must be non-negative"}
		}
		if p.Transparency < 0 || p.Transparency > 255 {
			return &model.ConfigurationError{Field: field(name + ".transparency"), Value: p.Transparency, Reason: "must be in [0,255]"}
		}
		if p.Scale != 0 && p.Scale < 1 {
			return &model.ConfigurationError{Field: field(name + ".scale"), Value: p.Scale, Reason: "must be >= 1"}
		}
	}
	return nil
}

// DelimiterRune returns the dataset's field delimiter, defaulting to
// tab. Call after Validate.
func (d *Dataset) DelimiterRune() rune {
	if d.Delimiter == "" {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	return r
}

// RenderParams converts the dataset's parameter blocks to model types,
// filling in defaults (mid-color midpoint, scale 1) and sharing the
// dataset-wide mid-value. Call after Validate.
func (d *Dataset) RenderParams() map[model.EntityKind]model.RenderParams {
	out := make(map[model.EntityKind]model.RenderParams, 2)
	if d.Gene != nil {
		out[model.KindGene] = d.Gene.toModel(d.MidValue)
	}
	if d.Compound != nil {
		out[model.KindCompound] = d.Compound.toModel(d.MidValue)
	}
	return out
}

func (p *Params) toModel(midValue *float64) model.RenderParams {
	start := p.StartColor.RGB()
	end := p.EndColor.RGB()
	mid := model.Midpoint(start, end)
	if p.MidColor != nil {
		mid = p.MidColor.RGB()
	}
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	return model.RenderParams{
		StartColor:   start,
		MidColor:     mid,
		EndColor:     end,
		MidValue:     midValue,
		Blur:         p.Blur,
		Transparency: p.Transparency,
		Scale:        scale,
	}
}
