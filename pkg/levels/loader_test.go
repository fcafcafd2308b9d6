package levels_test

import (
	"errors"
	"testing"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/levels"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/testutil"
)

func geneParams() map[model.EntityKind]model.RenderParams {
	return map[model.EntityKind]model.RenderParams{
		model.KindGene: testutil.GrayParams(),
	}
}

func TestLoadFile_ResolvesAndParses(t *testing.T) {
	ix := testutil.BuildIndex(t,
		testutil.IndexEntry{ID: "hsa:226", Kind: model.KindGene, Shape: testutil.Rect(0, 0, 40, 20)},
		testutil.IndexEntry{ID: "hsa:229", Kind: model.KindGene, Shape: testutil.Rect(50, 0, 90, 20)},
	)
	path := testutil.WriteLevelsFile(t,
		"# comment line",
		"hsa:226\t0.5\t1.0\t2.0",
		"229\t1.5\t0.5\t1.0",
	)

	d, err := levels.LoadFile(path, ix, levels.LoadOptions{Name: "expr", Params: geneParams()})
	if err != nil {
		t.Fatal(err)
	}
	if d.Timepoints != 3 {
		t.Errorf("expected 3 timepoints, got %d", d.Timepoints)
	}
	if len(d.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(d.Series))
	}
	series, ok := d.Series[model.Entity{ID: "226", Kind: model.KindGene}]
	if !ok {
		t.Fatal("missing series for 226")
	}
	if series[2] != 2.0 {
		t.Errorf("unexpected value: %v", series)
	}
}

func TestLoadFile_UnresolvedIdentifiersAreCountedNotFatal(t *testing.T) {
	ix := testutil.BuildIndex(t,
		testutil.IndexEntry{ID: "hsa:226", Kind: model.KindGene, Shape: testutil.Rect(0, 0, 40, 20)},
	)
	path := testutil.WriteLevelsFile(t,
		"hsa:226\t1\t2",
		"hsa:404\t3\t4",
		"hsa:405\t5\t6",
	)

	d, err := levels.LoadFile(path, ix, levels.LoadOptions{Params: geneParams()})
	if err != nil {
		t.Fatal(err)
	}
	if d.UnresolvedCount != 2 {
		t.Errorf("expected 2 unresolved, got %d", d.UnresolvedCount)
	}
	if len(d.UnresolvedSample) != 2 {
		t.Errorf("expected sample of 2, got %v", d.UnresolvedSample)
	}
	if len(d.Series) != 1 {
		t.Errorf("expected 1 resolved series, got %d", len(d.Series))
	}
}

func TestLoadFile_RaggedRows(t *testing.T) {
	ix := testutil.BuildIndex(t,
		testutil.IndexEntry{ID: "hsa:226", Kind: model.KindGene, Shape: testutil.Rect(0, 0, 40, 20)},
		testutil.IndexEntry{ID: "hsa:229", Kind: model.KindGene, Shape: testutil.Rect(50, 0, 90, 20)},
	)
	path := testutil.WriteLevelsFile(t,
		"hsa:226\t1\t2\t3",
		"hsa:229\t1\t2",
	)

	_, err := levels.LoadFile(path, ix, levels.LoadOptions{Name: "expr", Params: geneParams()})
	var inconsistent *model.InconsistentTimepointsError
	if !errors.As(err, &inconsistent) {
		t.Fatalf("expected InconsistentTimepointsError, got %v", err)
	}
	if inconsistent.Want != 3 || inconsistent.Got != 2 {
		t.Errorf("unexpected lengths: %+v", inconsistent)
	}
}

func TestLoadFile_AmbiguousIdentifierAborts(t *testing.T) {
	ix := testutil.BuildIndex(t,
		testutil.IndexEntry{ID: "hsa:100", Kind: model.KindGene, Shape: testutil.Rect(0, 0, 40, 20)},
		testutil.IndexEntry{ID: "cpd:100", Kind: model.KindCompound, Shape: testutil.Circle(50, 0, 60, 10)},
	)
	path := testutil.WriteLevelsFile(t, "100\t1\t2")

	_, err := levels.LoadFile(path, ix, levels.LoadOptions{Params: geneParams()})
	var ambiguous *model.AmbiguousEntityError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected AmbiguousEntityError, got %v", err)
	}
}

func TestLoadFile_BadNumber(t *testing.T) {
	ix := testutil.BuildIndex(t,
		testutil.IndexEntry{ID: "hsa:226", Kind: model.KindGene, Shape: testutil.Rect(0, 0, 40, 20)},
	)
	path := testutil.WriteLevelsFile(t, "hsa:226\t1\tnot-a-number")

	if _, err := levels.LoadFile(path, ix, levels.LoadOptions{Params: geneParams()}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFile_NothingResolves(t *testing.T) {
	ix := testutil.BuildIndex(t,
		testutil.IndexEntry{ID: "hsa:226", Kind: model.KindGene, Shape: testutil.Rect(0, 0, 40, 20)},
	)
	path := testutil.WriteLevelsFile(t, "hsa:404\t1\t2")

	if _, err := levels.LoadFile(path, ix, levels.LoadOptions{Params: geneParams()}); err == nil {
		t.Fatal("expected error when no rows resolve")
	}
}
