package compiler

import (
	"github.com/wbrown/typedb-core/concept"
	"github.com/wbrown/typedb-core/ir"
	"github.com/wbrown/typedb-core/pattern"
	"github.com/wbrown/typedb-core/typeinfo"
)

// RelationIndexChecker answers whether a relation type has a maintained
// relation index, the one schema-level fact the R2 rewrite needs. Kept as
// a narrow interface here (rather than importing the storage package's
// concrete TypeManager) so compiler has no dependency on storage; any type
// satisfying this single method, such as storage.TypeManager, can drive it.
type RelationIndexChecker interface {
	RelationIndexAvailable(relationType concept.RelationType) (bool, error)
}

// ApplyTransformations runs the static optimiser's rewrite passes over a
// Match stage's conjunction: redundant LinksDeduplication pruning (R1)
// first, then relation-index substitution (R2). Both passes only ever
// remove or replace constraints; they never change which rows a query
// produces.
func ApplyTransformations(conj pattern.Conjunction, ann *typeinfo.Annotations, checker RelationIndexChecker) (pattern.Conjunction, error) {
	conj = pruneRedundantLinksDeduplication(conj, ann)
	return relationIndexTransformation(conj, ann, checker)
}

// pruneRedundantLinksDeduplication implements R1. A LinksDeduplication
// constraint exists to stop one role-player edge from satisfying both
// halves of a pair of Links constraints at once; it is only needed when the
// two Links could plausibly bind the same player to intersecting role
// types. When their annotated player-to-role maps share no player with an
// overlapping role-type set, the edge can never collide with itself and
// the guard is dead weight.
func pruneRedundantLinksDeduplication(conj pattern.Conjunction, ann *typeinfo.Annotations) pattern.Conjunction {
	kept := make([]pattern.Constraint, 0, len(conj.Constraints))
	for _, c := range conj.Constraints {
		dedup, ok := c.(pattern.LinksDeduplication)
		if !ok {
			kept = append(kept, c)
			continue
		}
		firstIdx, ok1 := findLinksIndex(conj, dedup.First)
		secondIdx, ok2 := findLinksIndex(conj, dedup.Second)
		if !ok1 || !ok2 {
			kept = append(kept, c) // can't locate the annotated pair, keep conservatively
			continue
		}
		firstAnn, hasFirst := ann.LinksAt(firstIdx)
		secondAnn, hasSecond := ann.LinksAt(secondIdx)
		if !hasFirst || !hasSecond || linksCanCollide(firstAnn, secondAnn) {
			kept = append(kept, c)
		}
		// else: the two Links can never bind the same player/role pair;
		// drop the now-redundant deduplication guard.
	}
	return pattern.Conjunction{Constraints: kept}
}

func linksCanCollide(first, second typeinfo.LinksAnnotation) bool {
	for player, roles := range first.PlayerToRole {
		if otherRoles, ok := second.PlayerToRole[player]; ok && roles.Intersects(otherRoles) {
			return true
		}
	}
	return false
}

func findLinksIndex(conj pattern.Conjunction, target pattern.Links) (int, bool) {
	for i, c := range conj.Constraints {
		if links, ok := c.(pattern.Links); ok && links == target {
			return i, true
		}
	}
	return 0, false
}

// relationIndexTransformation implements R2: whenever a relation variable
// has exactly two Links constraints over it and a relation index has been
// marked available for every type the relation variable may take, replace
// the pair with a single RelationIndexLookup. The executor still reaches
// the second player through the relation's role-player edges; the rewrite
// does not introduce a separate player-to-player index read.
func relationIndexTransformation(conj pattern.Conjunction, ann *typeinfo.Annotations, checker RelationIndexChecker) (pattern.Conjunction, error) {
	constraints := conj.Constraints
	used := make(map[int]bool, len(constraints))
	out := make([]pattern.Constraint, 0, len(constraints))

	for i := 0; i < len(constraints); i++ {
		if used[i] {
			continue
		}
		linksI, ok := constraints[i].(pattern.Links)
		if !ok {
			out = append(out, constraints[i])
			continue
		}

		matched := false
		for j := i + 1; j < len(constraints); j++ {
			if used[j] {
				continue
			}
			linksJ, ok := constraints[j].(pattern.Links)
			if !ok || linksJ.Relation != linksI.Relation || linksJ.Player == linksI.Player {
				continue
			}
			if hasOtherLinksOnRelation(constraints, linksI.Relation, i, j) {
				continue // not exactly 2 players, R2 does not apply
			}
			available, err := relationTypesAllIndexed(ann.TypesOf(linksI.Relation), checker)
			if err != nil {
				return pattern.Conjunction{}, err
			}
			if !available {
				continue
			}
			out = append(out, pattern.RelationIndexLookup{
				Relation: linksI.Relation,
				Player1:  linksI.Player,
				Role1:    linksI.Role,
				Player2:  linksJ.Player,
				Role2:    linksJ.Role,
			})
			used[i], used[j] = true, true
			matched = true
			break
		}
		if !matched {
			out = append(out, constraints[i])
		}
	}
	return pattern.Conjunction{Constraints: out}, nil
}

func hasOtherLinksOnRelation(constraints []pattern.Constraint, relation ir.Variable, i, j int) bool {
	for k, c := range constraints {
		if k == i || k == j {
			continue
		}
		if links, ok := c.(pattern.Links); ok && links.Relation == relation {
			return true
		}
	}
	return false
}

func relationTypesAllIndexed(types ir.TypeSet, checker RelationIndexChecker) (bool, error) {
	if len(types) == 0 {
		return false, nil
	}
	for t := range types {
		rt, ok := t.(concept.RelationType)
		if !ok {
			return false, nil
		}
		available, err := checker.RelationIndexAvailable(rt)
		if err != nil {
			return false, err
		}
		if !available {
			return false, nil
		}
	}
	return true, nil
}
