// Package export renders static exports of a single timepoint, for
// figures and quick inspection without playing the animation.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/render"
)

// PosterOptions controls SVG poster export.
type PosterOptions struct {
	Path      string // output path
	Title     string // optional title attribute
	Timepoint int    // which timepoint to render
	Base      image.Image
	Series    []render.ElementSeries
	Labels    bool
}

// SavePoster writes one timepoint of the render set as an SVG: the
// base diagram embedded as a raster, with each element's mapped color
// drawn as a shape over it. Elements without data at the chosen
// timepoint are omitted, matching the animation's skip behavior.
func SavePoster(opts PosterOptions) error {
	if opts.Base == nil {
		return fmt.Errorf("a base image is required for poster export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	return renderPosterToWriter(file, opts)
}

func renderPosterToWriter(w io.Writer, opts PosterOptions) error {
	b := opts.Base.Bounds()
	width, height := b.Dx(), b.Dy()

	var buf bytes.Buffer
	if err := png.Encode(&buf, opts.Base); err != nil {
		return fmt.Errorf("encoding base image: %w", err)
	}
	href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	canvas := svg.New(w)
	canvas.Start(width, height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Image(0, 0, width, height, href)

	for _, es := range opts.Series {
		value, ok := es.Values[opts.Timepoint]
		if !ok {
			continue
		}
		col := render.MapColor(value, es.Params, es.Mid)
		opacity := 1 - float64(es.Params.Transparency)/255
		style := fmt.Sprintf("fill:%s;fill-opacity:%.3f", col, opacity)

		box := es.Element.Box
		switch es.Element.Kind {
		case model.ShapeCircle:
			cx, cy := box.Center()
			canvas.Ellipse(int(cx), int(cy), box.Width()/2, box.Height()/2, style)
		default:
			canvas.Rect(box.X0, box.Y0, box.Width(), box.Height(), style)
		}

		if opts.Labels && len(es.Entities) > 0 {
			ids := make([]string, len(es.Entities))
			for i, ent := range es.Entities {
				ids[i] = ent.ID
			}
			cx, cy := box.Center()
			canvas.Text(int(cx), int(cy)+4, strings.Join(ids, " "),
				"fill:#111111;font-size:11px;font-family:monospace;text-anchor:middle")
		}
	}

	canvas.Text(width-8, height-8, fmt.Sprintf("Timepoint %d", opts.Timepoint+1),
		"fill:#111111;font-size:12px;font-family:monospace;text-anchor:end")
	canvas.End()
	return nil
}
