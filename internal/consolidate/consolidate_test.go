package consolidate

import (
	"testing"

	"github.com/corpusdigest/digest/internal/lsh"
)

func TestConsolidateDiscardsSingletons(t *testing.T) {
	groups := Consolidate(nil)
	if len(groups) != 0 {
		t.Errorf("Consolidate(nil) = %v, want empty", groups)
	}
}

func TestConsolidateGroupsConnectedComponent(t *testing.T) {
	pairs := []lsh.Pair{
		{Path1: "docs/a.md", Path2: "docs/b.md", Combined: 0.8},
		{Path1: "docs/b.md", Path2: "docs/c.md", Combined: 0.6},
		{Path1: "docs/unrelated1.md", Path2: "docs/unrelated2.md", Combined: 0.9},
	}
	groups := Consolidate(pairs)
	if len(groups) != 2 {
		t.Fatalf("groups = %+v, want 2 components", groups)
	}

	var abc *Group
	for i := range groups {
		if groups[i].Canonical == "docs/a.md" || contains(groups[i].MergeInto, "docs/a.md") {
			abc = &groups[i]
		}
	}
	if abc == nil {
		t.Fatalf("expected a group containing docs/a.md, got %+v", groups)
	}
	if len(abc.MergeInto)+1 != 3 {
		t.Errorf("component size = %d, want 3 (a, b, c)", len(abc.MergeInto)+1)
	}
}

func TestConsolidateElectsHighestCanonicality(t *testing.T) {
	// docs/adr/ scores 0.7, a plain path scores 0.5: the ADR file must win
	// canonical election regardless of pair order.
	pairs := []lsh.Pair{
		{Path1: "docs/random-notes.md", Path2: "docs/adr/0001-decision.md", Combined: 0.5},
	}
	groups := Consolidate(pairs)
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want 1", groups)
	}
	if groups[0].Canonical != "docs/adr/0001-decision.md" {
		t.Errorf("canonical = %q, want docs/adr/0001-decision.md", groups[0].Canonical)
	}
}

func TestConsolidateTieBreakLexicographic(t *testing.T) {
	// Both paths score identically (0.5 base, no special rules): tie-break
	// must pick the lexicographically smaller path.
	pairs := []lsh.Pair{
		{Path1: "docs/zzz.md", Path2: "docs/aaa.md", Combined: 0.5},
	}
	groups := Consolidate(pairs)
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want 1", groups)
	}
	if groups[0].Canonical != "docs/aaa.md" {
		t.Errorf("canonical = %q, want docs/aaa.md (lexicographically smaller)", groups[0].Canonical)
	}
}

func TestConsolidateSortedByCanonicalPath(t *testing.T) {
	pairs := []lsh.Pair{
		{Path1: "z1.md", Path2: "z2.md", Combined: 0.5},
		{Path1: "a1.md", Path2: "a2.md", Combined: 0.5},
	}
	groups := Consolidate(pairs)
	if len(groups) != 2 {
		t.Fatalf("groups = %v, want 2", groups)
	}
	if groups[0].Canonical >= groups[1].Canonical {
		t.Errorf("groups not sorted by canonical path ascending: %v", groups)
	}
}

func TestConsolidateAverageSimilarityIsMeanOfCanonicalEdges(t *testing.T) {
	pairs := []lsh.Pair{
		{Path1: "docs/aaa.md", Path2: "docs/bbb.md", Combined: 0.4},
		{Path1: "docs/aaa.md", Path2: "docs/ccc.md", Combined: 0.6},
	}
	groups := Consolidate(pairs)
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want 1", groups)
	}
	if groups[0].Canonical != "docs/aaa.md" {
		t.Fatalf("canonical = %q, want docs/aaa.md", groups[0].Canonical)
	}
	want := 0.5
	if groups[0].AvgSimilarity != want {
		t.Errorf("avg_similarity = %v, want %v", groups[0].AvgSimilarity, want)
	}
}
