// Package model defines the core value types shared across the animation
// pipeline: entities, graphic elements, colors, timepoints and per-dataset
// rendering parameters.
package model

import "fmt"

// EntityKind classifies what a pathway entity is.
type EntityKind string

const (
	KindGene     EntityKind = "gene"
	KindCompound EntityKind = "compound"
)

// Kinds lists every entity kind, in resolution order.
var Kinds = []EntityKind{KindGene, KindCompound}

// Entity is a gene or compound referenced by the pathway diagram.
// IDs are case-normalized at construction; two entities are the same
// iff both ID and Kind match.
type Entity struct {
	ID   string
	Kind EntityKind
}

func (e Entity) String() string {
	return fmt.Sprintf("%s/%s", e.Kind, e.ID)
}

// ShapeKind is the drawn form of a graphic element.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
)

// Box is a bounding box in diagram pixel space.
type Box struct {
	X0, Y0, X1, Y1 int
}

func (b Box) Width() int  { return b.X1 - b.X0 }
func (b Box) Height() int { return b.Y1 - b.Y0 }

// Center returns the box center in floating-point pixel coordinates.
func (b Box) Center() (float64, float64) {
	return float64(b.X0+b.X1) / 2, float64(b.Y0+b.Y1) / 2
}

// GraphicElement is a drawn shape on the diagram. It is a value type:
// two elements with the same kind and box are the same element, so
// entities sharing a drawn shape collapse onto one key.
type GraphicElement struct {
	Kind ShapeKind
	Box  Box
}

func (g GraphicElement) String() string {
	return fmt.Sprintf("%s(%d,%d,%d,%d)", g.Kind, g.Box.X0, g.Box.Y0, g.Box.X1, g.Box.Y1)
}

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Midpoint returns the channel-wise midpoint of two colors, the default
// mid-color when a dataset supplies only start and end.
func Midpoint(a, b RGB) RGB {
	return RGB{
		R: uint8((int(a.R) + int(b.R)) / 2),
		G: uint8((int(a.G) + int(b.G)) / 2),
		B: uint8((int(a.B) + int(b.B)) / 2),
	}
}

// RenderParams are the per-dataset, per-entity-kind rendering knobs.
// MidValue is in raw dataset units before normalization.
type RenderParams struct {
	StartColor   RGB
	MidColor     RGB
	EndColor     RGB
	MidValue     *float64
	Blur         int     // Gaussian mask blur radius, >= 0
	Transparency int     // 0 (opaque) .. 255 (invisible)
	Scale        float64 // overlay scale factor, >= 1
}

// Equal reports whether two parameter sets are identical, including the
// mid-value. Entities sharing a graphic element must agree on these.
func (p RenderParams) Equal(q RenderParams) bool {
	if p.StartColor != q.StartColor || p.MidColor != q.MidColor || p.EndColor != q.EndColor {
		return false
	}
	if p.Blur != q.Blur || p.Transparency != q.Transparency || p.Scale != q.Scale {
		return false
	}
	if (p.MidValue == nil) != (q.MidValue == nil) {
		return false
	}
	if p.MidValue != nil && *p.MidValue != *q.MidValue {
		return false
	}
	return true
}

// Validate front-loads every parameter range check so bad configuration
// is reported before any processing begins.
func (p RenderParams) Validate() error {
	if p.Blur < 0 {
		return &ConfigurationError{Field: "blur", Value: p.Blur, Reason: "must be non-negative"}
	}
	if p.Transparency < 0 || p.Transparency > 255 {
		return &ConfigurationError{Field: "transparency", Value: p.Transparency, Reason: "must be in [0,255]"}
	}
	if p.Scale < 1 {
		return &ConfigurationError{Field: "scale", Value: p.Scale, Reason: "must be >= 1"}
	}
	return nil
}

// Timepoints is the shared ordered sequence of time positions (seconds)
// that every dataset's series is aligned to. It is computed once during
// loading and threaded through the pipeline as a plain value.
type Timepoints struct {
	Positions []float64
}

// UniformTimepoints returns n timepoints spaced one second apart
// starting at zero, the default when no explicit positions are given.
func UniformTimepoints(n int) Timepoints {
	pos := make([]float64, n)
	for i := range pos {
		pos[i] = float64(i)
	}
	return Timepoints{Positions: pos}
}

// Len returns the number of timepoints.
func (tp Timepoints) Len() int { return len(tp.Positions) }

// Nearest returns the index of the timepoint closest to t. Exact
// equidistant ties prefer the earlier timepoint.
func (tp Timepoints) Nearest(t float64) int {
	best := 0
	bestDist := abs(t - tp.Positions[0])
	for i := 1; i < len(tp.Positions); i++ {
		d := abs(t - tp.Positions[i])
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
