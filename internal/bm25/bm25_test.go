package bm25

import (
	"testing"

	"github.com/corpusdigest/digest/internal/docindex"
)

func buildTestIndex() *docindex.ForwardIndex {
	files := map[string]*docindex.DocumentEntry{
		"docs/a.md": {
			DocLength:       4,
			TermFrequencies: map[string]int{"hello": 1, "world": 1, "content": 1, "here": 1},
		},
		"docs/b.md": {
			DocLength:       3,
			TermFrequencies: map[string]int{"deploy": 1, "rollback": 1, "monitor": 1},
		},
		"docs/empty.md": {
			DocLength:       0,
			TermFrequencies: map[string]int{},
		},
	}
	avg, idf := docindex.ComputeCorpusStats(files)
	return &docindex.ForwardIndex{Files: files, AvgDocLength: avg, IDFMap: idf}
}

// Query ["content"] returns docs/a.md with score > 0; query ["absent"]
// returns empty.
func TestScoreTrivialCorpusScenario(t *testing.T) {
	idx := New(buildTestIndex())

	results := idx.Score([]string{"content"})
	if len(results) == 0 {
		t.Fatal("expected at least one result for query [content]")
	}
	if results[0].Path != "docs/a.md" {
		t.Errorf("top result = %q, want docs/a.md", results[0].Path)
	}
	if results[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", results[0].Score)
	}

	absent := idx.Score([]string{"absent"})
	if len(absent) != 0 {
		t.Errorf("query [absent] = %v, want empty", absent)
	}
}

func TestScoreZeroLengthDocumentExcluded(t *testing.T) {
	idx := New(buildTestIndex())
	results := idx.Score([]string{"deploy", "content"})
	for _, r := range results {
		if r.Path == "docs/empty.md" {
			t.Errorf("expected docs/empty.md (doc_length=0) to be excluded from results, got %+v", r)
		}
	}
}

func TestScoreOrderingAndTieBreak(t *testing.T) {
	files := map[string]*docindex.DocumentEntry{
		"z.md": {DocLength: 2, TermFrequencies: map[string]int{"shared": 1, "unique": 1}},
		"a.md": {DocLength: 2, TermFrequencies: map[string]int{"shared": 1, "unique": 1}},
	}
	avg, idf := docindex.ComputeCorpusStats(files)
	idx := New(&docindex.ForwardIndex{Files: files, AvgDocLength: avg, IDFMap: idf})

	results := idx.Score([]string{"shared", "unique"})
	if len(results) != 2 {
		t.Fatalf("results = %v, want 2", results)
	}
	if results[0].Score != results[1].Score {
		t.Fatalf("expected tied scores for identical documents, got %+v", results)
	}
	if results[0].Path != "a.md" || results[1].Path != "z.md" {
		t.Errorf("tie-break order = %q, %q; want a.md, z.md (path ascending)", results[0].Path, results[1].Path)
	}
}

func TestScoreMonotonicInTermFrequency(t *testing.T) {
	low := map[string]*docindex.DocumentEntry{
		"d.md": {DocLength: 2, TermFrequencies: map[string]int{"term": 1}},
	}
	high := map[string]*docindex.DocumentEntry{
		"d.md": {DocLength: 4, TermFrequencies: map[string]int{"term": 3}},
	}
	avgLow, idfLow := docindex.ComputeCorpusStats(low)
	avgHigh, idfHigh := docindex.ComputeCorpusStats(high)

	idxLow := New(&docindex.ForwardIndex{Files: low, AvgDocLength: avgLow, IDFMap: idfLow})
	idxHigh := New(&docindex.ForwardIndex{Files: high, AvgDocLength: avgHigh, IDFMap: idfHigh})

	scoreLow := idxLow.Score([]string{"term"})[0].Score
	scoreHigh := idxHigh.Score([]string{"term"})[0].Score
	if scoreHigh < scoreLow {
		t.Errorf("scaling tf up decreased score: low=%v high=%v", scoreLow, scoreHigh)
	}
}

func TestScoreDuplicateQueryTermsNotDoubleCounted(t *testing.T) {
	idx := New(buildTestIndex())
	once := idx.Score([]string{"content"})[0].Score
	twice := idx.Score([]string{"content", "content"})[0].Score
	if once != twice {
		t.Errorf("repeating a query term changed the score: once=%v twice=%v", once, twice)
	}
}
