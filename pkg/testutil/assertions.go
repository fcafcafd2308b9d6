// Package testutil provides shared helpers for kegganim tests:
// domain assertions, fixture builders, and golden-file comparison.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/pathway"
)

// AssertRGBEqual verifies an exact color match.
func AssertRGBEqual(t *testing.T, got, want model.RGB) {
	t.Helper()
	if got != want {
		t.Errorf("color mismatch: got %s, want %s", got, want)
	}
}

// AssertRGBWithin verifies a color match within a per-channel
// tolerance, for paths subject to integer truncation.
func AssertRGBWithin(t *testing.T, got, want model.RGB, tol int) {
	t.Helper()
	if channelDiff(got.R, want.R) > tol || channelDiff(got.G, want.G) > tol || channelDiff(got.B, want.B) > tol {
		t.Errorf("color mismatch: got %s, want %s (tolerance %d)", got, want, tol)
	}
}

func channelDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// AssertFloatNear verifies a float within an absolute tolerance.
func AssertFloatNear(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("got %g, want %g (tolerance %g)", got, want, tol)
	}
}

// Rect returns a rectangle graphic element for tests.
func Rect(x0, y0, x1, y1 int) model.GraphicElement {
	return model.GraphicElement{
		Kind: model.ShapeRectangle,
		Box:  model.Box{X0: x0, Y0: y0, X1: x1, Y1: y1},
	}
}

// Circle returns a circle graphic element for tests.
func Circle(x0, y0, x1, y1 int) model.GraphicElement {
	return model.GraphicElement{
		Kind: model.ShapeCircle,
		Box:  model.Box{X0: x0, Y0: y0, X1: x1, Y1: y1},
	}
}

// BuildIndex registers the given (id, kind, shape) triples and seals
// the result.
func BuildIndex(t *testing.T, regs ...IndexEntry) *pathway.Index {
	t.Helper()
	ix := pathway.NewIndex()
	for _, r := range regs {
		if err := ix.Register(r.ID, r.Kind, r.Shape); err != nil {
			t.Fatalf("register %s: %v", r.ID, err)
		}
	}
	ix.Seal()
	return ix
}

// IndexEntry is one registration for BuildIndex.
type IndexEntry struct {
	ID    string
	Kind  model.EntityKind
	Shape model.GraphicElement
}

// WriteLevelsFile writes a tab-delimited activity file into a temp dir
// and returns its path.
func WriteLevelsFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "levels.tsv")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write levels file: %v", err)
	}
	return path
}

// GrayParams returns a black-to-white parameter set with no blur and
// full opacity, the simplest configuration for pixel assertions.
func GrayParams() model.RenderParams {
	return model.RenderParams{
		StartColor: model.RGB{R: 0, G: 0, B: 0},
		MidColor:   model.RGB{R: 127, G: 127, B: 127},
		EndColor:   model.RGB{R: 255, G: 255, B: 255},
		Scale:      1,
	}
}
