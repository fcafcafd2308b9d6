package model

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an out-of-range or malformed parameter.
// Always raised before any processing begins.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s=%v %s", e.Field, e.Value, e.Reason)
}

// AmbiguousEntityError means a bare identifier matched more than one
// entity kind in the index. Fatal: the mapping cannot be resolved.
type AmbiguousEntityError struct {
	ID    string
	Kinds []EntityKind
}

func (e *AmbiguousEntityError) Error() string {
	kinds := make([]string, len(e.Kinds))
	for i, k := range e.Kinds {
		kinds[i] = string(k)
	}
	return fmt.Sprintf("identifier %q is ambiguous: matches kinds %s", e.ID, strings.Join(kinds, ", "))
}

// DegenerateRangeError means a dataset has no variation to visualize.
type DegenerateRangeError struct {
	Dataset string
	Level   float64
}

func (e *DegenerateRangeError) Error() string {
	return fmt.Sprintf("dataset %q has a degenerate range: every level equals %g", e.Dataset, e.Level)
}

// ConfigurationConflictError means entities sharing one graphic element
// disagree on rendering parameters or mid-value. Fatal: the overlay is
// unrenderable and no entity's parameters may be silently picked.
type ConfigurationConflictError struct {
	Element  GraphicElement
	Entities []Entity
}

func (e *ConfigurationConflictError) Error() string {
	ids := make([]string, len(e.Entities))
	for i, ent := range e.Entities {
		ids[i] = ent.String()
	}
	return fmt.Sprintf("entities sharing element %s disagree on rendering parameters: %s",
		e.Element, strings.Join(ids, ", "))
}

// InconsistentTimepointsError means series lengths disagree within or
// across datasets.
type InconsistentTimepointsError struct {
	Dataset  string
	EntityID string
	Want     int
	Got      int
}

func (e *InconsistentTimepointsError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("dataset %q: series for %q has %d timepoints, want %d",
			e.Dataset, e.EntityID, e.Got, e.Want)
	}
	return fmt.Sprintf("dataset %q has %d timepoints, want %d", e.Dataset, e.Got, e.Want)
}
