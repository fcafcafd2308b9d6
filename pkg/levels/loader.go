// Package levels loads delimited activity-level files and rescales
// their raw numeric series into the unit interval.
package levels

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/pathway"
)

// unresolvedSampleCap bounds how many unresolved identifiers are kept
// for the run summary; the rest are only counted.
const unresolvedSampleCap = 10

// Dataset is one loaded activity-level file: per-kind rendering
// parameters, an optional dataset-wide mid-value in raw units, and the
// resolved per-entity series. All series share one length, which
// defines the dataset's timepoint count.
type Dataset struct {
	Name     string
	Params   map[model.EntityKind]model.RenderParams
	MidValue *float64

	Series     map[model.Entity][]float64
	Timepoints int

	// Unresolved identifiers are dropped, counted, and sampled for the
	// end-of-run summary rather than logged per occurrence.
	UnresolvedCount  int
	UnresolvedSample []string
}

// LoadOptions configures parsing of one activity file.
type LoadOptions struct {
	Name     string // dataset name; defaults to the file path
	Comma    rune   // field delimiter; 0 means tab
	Params   map[model.EntityKind]model.RenderParams
	MidValue *float64
	Logger   *log.Logger // nil means silent
}

// LoadFile reads a delimited activity file and resolves each row's
// identifier against the index. Rows whose identifier matches nothing
// are dropped and counted; an ambiguous bare identifier aborts the
// load. Ragged rows are an InconsistentTimepointsError.
func LoadFile(path string, ix *pathway.Index, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening levels file: %w", err)
	}
	defer f.Close()

	if opts.Name == "" {
		opts.Name = path
	}
	return Load(f, ix, opts)
}

// Load is LoadFile over an arbitrary reader.
func Load(r io.Reader, ix *pathway.Index, opts LoadOptions) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // length checked below for a typed error

	d := &Dataset{
		Name:     opts.Name,
		Params:   opts.Params,
		MidValue: opts.MidValue,
		Series:   make(map[model.Entity][]float64),
	}

	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset %q: reading record: %w", d.Name, err)
		}
		line++
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("dataset %q line %d: identifier %q has no values", d.Name, line, rec[0])
		}

		values := make([]float64, 0, len(rec)-1)
		for _, field := range rec[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset %q line %d: bad level %q: %w", d.Name, line, field, err)
			}
			values = append(values, v)
		}

		if d.Timepoints == 0 {
			d.Timepoints = len(values)
		} else if len(values) != d.Timepoints {
			return nil, &model.InconsistentTimepointsError{
				Dataset:  d.Name,
				EntityID: rec[0],
				Want:     d.Timepoints,
				Got:      len(values),
			}
		}

		ent, ok, err := ix.Resolve(rec[0])
		if err != nil {
			return nil, fmt.Errorf("dataset %q line %d: %w", d.Name, line, err)
		}
		if !ok {
			d.UnresolvedCount++
			if len(d.UnresolvedSample) < unresolvedSampleCap {
				d.UnresolvedSample = append(d.UnresolvedSample, rec[0])
			}
			continue
		}

		d.Series[ent] = values
	}

	if opts.Logger != nil && d.UnresolvedCount > 0 {
		opts.Logger.Printf("dataset %q: %d identifiers matched no pathway entity (e.g. %v)",
			d.Name, d.UnresolvedCount, d.UnresolvedSample)
	}
	if len(d.Series) == 0 {
		return nil, fmt.Errorf("dataset %q: no rows resolved to pathway entities", d.Name)
	}
	return d, nil
}
