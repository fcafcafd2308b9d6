// Package pathway builds the entity/graphic-element index from a KEGG
// pathway description and resolves raw activity-file identifiers
// against it.
package pathway

import (
	"fmt"
	"strings"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/model"
)

// Index is a bidirectional many-to-many mapping between pathway
// entities and the diagram's graphic elements. Entities and elements
// live in arenas and reference each other by integer handles, so
// lookups never depend on hashing composite geometry beyond the
// initial handle assignment.
//
// The index is mutable during the load phase and read-only after
// Seal; there is no removal operation.
type Index struct {
	entities     []model.Entity
	entityHandle map[model.Entity]int

	shapes      []model.GraphicElement
	shapeHandle map[model.GraphicElement]int

	shapesByEntity  [][]int // entity handle -> ordered shape handles
	entitiesByShape [][]int // shape handle -> entity handles, registration order

	// kindCounts accumulates registration multiplicities per kind.
	// Observability only; idempotence of Register is per (entity, shape).
	kindCounts map[model.EntityKind]int

	sealed bool
}

// NewIndex returns an empty, unsealed index.
func NewIndex() *Index {
	return &Index{
		entityHandle: make(map[model.Entity]int),
		shapeHandle:  make(map[model.GraphicElement]int),
		kindCounts:   make(map[model.EntityKind]int),
	}
}

// Register links an entity to a graphic element. Registration is
// idempotent per (entity, shape) pair; repeated calls still count
// toward the per-kind totals.
func (ix *Index) Register(rawID string, kind model.EntityKind, shape model.GraphicElement) error {
	if ix.sealed {
		return fmt.Errorf("register %q: index is sealed", rawID)
	}
	id := CanonicalID(rawID)
	if id == "" {
		return fmt.Errorf("register: empty entity identifier")
	}
	ent := model.Entity{ID: id, Kind: kind}

	eh, ok := ix.entityHandle[ent]
	if !ok {
		eh = len(ix.entities)
		ix.entities = append(ix.entities, ent)
		ix.entityHandle[ent] = eh
		ix.shapesByEntity = append(ix.shapesByEntity, nil)
	}
	sh, ok := ix.shapeHandle[shape]
	if !ok {
		sh = len(ix.shapes)
		ix.shapes = append(ix.shapes, shape)
		ix.shapeHandle[shape] = sh
		ix.entitiesByShape = append(ix.entitiesByShape, nil)
	}

	ix.kindCounts[kind]++

	if !containsInt(ix.shapesByEntity[eh], sh) {
		ix.shapesByEntity[eh] = append(ix.shapesByEntity[eh], sh)
	}
	if !containsInt(ix.entitiesByShape[sh], eh) {
		ix.entitiesByShape[sh] = append(ix.entitiesByShape[sh], eh)
	}
	return nil
}

// Seal marks the index read-only. Called once the diagram geometry is
// fully loaded.
func (ix *Index) Seal() { ix.sealed = true }

// ShapesOf returns the graphic elements that draw the given entity.
func (ix *Index) ShapesOf(rawID string, kind model.EntityKind) []model.GraphicElement {
	eh, ok := ix.entityHandle[model.Entity{ID: CanonicalID(rawID), Kind: kind}]
	if !ok {
		return nil
	}
	out := make([]model.GraphicElement, len(ix.shapesByEntity[eh]))
	for i, sh := range ix.shapesByEntity[eh] {
		out[i] = ix.shapes[sh]
	}
	return out
}

// EntitiesOf returns the entities represented by a graphic element, in
// registration order.
func (ix *Index) EntitiesOf(shape model.GraphicElement) []model.Entity {
	sh, ok := ix.shapeHandle[shape]
	if !ok {
		return nil
	}
	out := make([]model.Entity, len(ix.entitiesByShape[sh]))
	for i, eh := range ix.entitiesByShape[sh] {
		out[i] = ix.entities[eh]
	}
	return out
}

// AllShapes returns every registered graphic element in registration
// order.
func (ix *Index) AllShapes() []model.GraphicElement {
	out := make([]model.GraphicElement, len(ix.shapes))
	copy(out, ix.shapes)
	return out
}

// KindCounts returns registration multiplicities per entity kind.
func (ix *Index) KindCounts() map[model.EntityKind]int {
	out := make(map[model.EntityKind]int, len(ix.kindCounts))
	for k, v := range ix.kindCounts {
		out[k] = v
	}
	return out
}

// Resolve maps a raw, possibly prefixed activity-file identifier to an
// indexed entity. The second return is false when the identifier
// matches nothing (the caller drops and counts the observation). A
// bare identifier matching more than one kind is an
// AmbiguousEntityError.
func (ix *Index) Resolve(raw string) (model.Entity, bool, error) {
	id := CanonicalID(raw)
	if id == "" {
		return model.Entity{}, false, nil
	}

	if kind, ok := kindFromPrefix(raw); ok {
		ent := model.Entity{ID: id, Kind: kind}
		if _, found := ix.entityHandle[ent]; found {
			return ent, true, nil
		}
		return model.Entity{}, false, nil
	}

	var matches []model.EntityKind
	for _, kind := range model.Kinds {
		if _, found := ix.entityHandle[model.Entity{ID: id, Kind: kind}]; found {
			matches = append(matches, kind)
		}
	}
	switch len(matches) {
	case 0:
		return model.Entity{}, false, nil
	case 1:
		return model.Entity{ID: id, Kind: matches[0]}, true, nil
	default:
		return model.Entity{}, false, &model.AmbiguousEntityError{ID: raw, Kinds: matches}
	}
}

// compoundPrefixes are KEGG namespaces whose members are compounds
// (or glycans/drugs, drawn the same way).
var compoundPrefixes = map[string]bool{
	"cpd": true,
	"gl":  true,
	"dr":  true,
}

// CanonicalID strips a namespace or organism-code prefix and
// lowercases the remainder. Applied identically at registration and
// lookup so both sides agree.
func CanonicalID(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	return strings.ToLower(s)
}

// kindFromPrefix infers the entity kind from an identifier's namespace
// prefix. A compound namespace means compound; any other prefix is an
// organism code, which means gene.
func kindFromPrefix(raw string) (model.EntityKind, bool) {
	s := strings.TrimSpace(raw)
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return "", false
	}
	if compoundPrefixes[strings.ToLower(s[:i])] {
		return model.KindCompound, true
	}
	return model.KindGene, true
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
