// Package consolidate groups duplicate-pair candidates into connected
// components and elects a canonical document per group.
package consolidate

import (
	"sort"

	"github.com/corpusdigest/digest/internal/canonicality"
	"github.com/corpusdigest/digest/internal/lsh"
)

// Group is one consolidation group: a canonical document plus the other
// paths that should be merged into it.
type Group struct {
	Canonical      string
	MergeInto      []string
	CanonicalScore float64
	AvgSimilarity  float64
}

// unionFind is a path-compressing, union-by-nothing-fancy disjoint-set over
// document paths.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// Consolidate builds an undirected graph over duplicate pairs, computes
// connected components, discards singletons, and for each surviving
// component elects a canonical path, computes the component's average
// similarity (mean of edges incident to the canonical), and emits the
// group. Groups are sorted by canonical path ascending.
func Consolidate(pairs []lsh.Pair) []Group {
	uf := newUnionFind()
	for _, p := range pairs {
		uf.union(p.Path1, p.Path2)
	}

	components := make(map[string][]string)
	seen := make(map[string]bool)
	for _, p := range pairs {
		for _, path := range []string{p.Path1, p.Path2} {
			if seen[path] {
				continue
			}
			seen[path] = true
			root := uf.find(path)
			components[root] = append(components[root], path)
		}
	}

	var groups []Group
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)

		canonical := electCanonical(members)

		var sum float64
		var count int
		for _, p := range pairs {
			var other string
			switch {
			case p.Path1 == canonical:
				other = p.Path2
			case p.Path2 == canonical:
				other = p.Path1
			default:
				continue
			}
			if !contains(members, other) {
				continue
			}
			sum += p.Combined
			count++
		}
		avgSim := 0.0
		if count > 0 {
			avgSim = sum / float64(count)
		}

		var mergeInto []string
		for _, m := range members {
			if m != canonical {
				mergeInto = append(mergeInto, m)
			}
		}
		sort.Strings(mergeInto)

		groups = append(groups, Group{
			Canonical:      canonical,
			MergeInto:      mergeInto,
			CanonicalScore: canonicality.Score(canonical),
			AvgSimilarity:  avgSim,
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Canonical < groups[j].Canonical })
	return groups
}

// electCanonical picks the member with the highest canonicality score,
// tie-broken lexicographically ascending. members must be non-empty and
// already sorted ascending so the tie-break falls out of iteration order.
func electCanonical(members []string) string {
	best := members[0]
	bestScore := canonicality.Score(best)
	for _, m := range members[1:] {
		s := canonicality.Score(m)
		if s > bestScore {
			best = m
			bestScore = s
		}
	}
	return best
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
