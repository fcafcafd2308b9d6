package pathway

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
)

// Pathway is the normalized result of parsing a KGML document: the
// pathway metadata, a reference to the base raster image, and one
// geometry tuple per (entity ids, kind, shape).
type Pathway struct {
	Name    string
	Org     string
	Number  string
	Title   string
	Image   string // URL of the base diagram raster
	Entries []Entry
}

// Entry is one KGML entry carrying drawable graphics. A single entry
// may name several entities (a protein complex drawn as one box).
type Entry struct {
	IDs   []string // raw KEGG identifiers, e.g. "hsa:226" or "cpd:C00031"
	Kind  model.EntityKind
	Shape model.GraphicElement
}

// kgmlDoc mirrors the subset of the KGML schema this tool consumes.
type kgmlDoc struct {
	XMLName xml.Name    `xml:"pathway"`
	Name    string      `xml:"name,attr"`
	Org     string      `xml:"org,attr"`
	Number  string      `xml:"number,attr"`
	Title   string      `xml:"title,attr"`
	Image   string      `xml:"image,attr"`
	Entries []kgmlEntry `xml:"entry"`
}

type kgmlEntry struct {
	ID       string         `xml:"id,attr"`
	Name     string         `xml:"name,attr"`
	Type     string         `xml:"type,attr"`
	Graphics []kgmlGraphics `xml:"graphics"`
}

type kgmlGraphics struct {
	Type   string `xml:"type,attr"`
	X      int    `xml:"x,attr"`
	Y      int    `xml:"y,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

// ParseKGML decodes a KGML document into the normalized tuple stream.
// Entries that are not genes or compounds (maps, orthologs, groups)
// and graphics without a drawable shape are skipped.
func ParseKGML(r io.Reader) (*Pathway, error) {
	var doc kgmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding KGML: %w", err)
	}

	p := &Pathway{
		Name:   doc.Name,
		Org:    doc.Org,
		Number: doc.Number,
		Title:  doc.Title,
		Image:  doc.Image,
	}

	for _, e := range doc.Entries {
		var kind model.EntityKind
		switch e.Type {
		case "gene":
			kind = model.KindGene
		case "compound":
			kind = model.KindCompound
		default:
			continue
		}

		ids := strings.Fields(e.Name)
		if len(ids) == 0 {
			continue
		}

		for _, g := range e.Graphics {
			shapeKind, ok := shapeKindOf(g.Type)
			if !ok {
				continue
			}
			if g.Width <= 0 || g.Height <= 0 {
				continue
			}
			// KGML x/y is the shape center.
			box := model.Box{
				X0: g.X - g.Width/2,
				Y0: g.Y - g.Height/2,
				X1: g.X - g.Width/2 + g.Width,
				Y1: g.Y - g.Height/2 + g.Height,
			}
			p.Entries = append(p.Entries, Entry{
				IDs:   ids,
				Kind:  kind,
				Shape: model.GraphicElement{Kind: shapeKind, Box: box},
			})
		}
	}

	return p, nil
}

func shapeKindOf(kgmlType string) (model.ShapeKind, bool) {
	switch kgmlType {
	case "rectangle", "roundrectangle":
		return model.ShapeRectangle, true
	case "circle":
		return model.ShapeCircle, true
	default:
		// "line" graphics carry no fillable area.
		return "", false
	}
}

// BuildIndex registers every entry of a parsed pathway and seals the
// result.
func BuildIndex(p *Pathway) (*Index, error) {
	ix := NewIndex()
	for _, e := range p.Entries {
		for _, id := range e.IDs {
			if err := ix.Register(id, e.Kind, e.Shape); err != nil {
				return nil, fmt.Errorf("indexing pathway %s: %w", p.Name, err)
			}
		}
	}
	ix.Seal()
	return ix, nil
}
