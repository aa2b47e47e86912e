// Package bm25 scores documents against a stemmed query using Okapi BM25,
// over the term statistics the indexer already computed.
package bm25

import (
	"sort"

	"github.com/corpusdigest/digest/internal/docindex"
)

const (
	k1 = 1.5
	b  = 0.75
)

// Result is one document's BM25 score.
type Result struct {
	Path  string
	Score float64
}

// Index scores documents against a forward index's term frequencies, IDF
// map, and average document length.
type Index struct {
	files        map[string]*docindex.DocumentEntry
	idf          map[string]float64
	avgDocLength float64
}

// New builds a BM25 Index view over an already-computed forward index. No
// additional corpus pass is required: avg_doc_length and idf are computed
// once at build time by docindex.ComputeCorpusStats.
func New(forward *docindex.ForwardIndex) *Index {
	return &Index{
		files:        forward.Files,
		idf:          forward.IDFMap,
		avgDocLength: forward.AvgDocLength,
	}
}

// Score ranks every document in the index against stemmed query terms.
// Documents with doc_length 0 score 0 and are omitted. Results are sorted
// by score descending, ties broken by path ascending.
func (idx *Index) Score(queryTerms []string) []Result {
	var out []Result
	for path, doc := range idx.files {
		s := idx.scoreDoc(queryTerms, doc)
		if s > 0 {
			out = append(out, Result{Path: path, Score: s})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// scoreDoc computes the raw BM25 score for one document:
//
//	norm = 1 - B + B*(doc_length/avg_doc_length)
//	score = sum_t idf(t) * tf(t)*(K1+1) / (tf(t) + K1*norm)
//
// over query terms with nonzero term frequency in the document. Missing-term
// IDF defaults to 0.
func (idx *Index) scoreDoc(queryTerms []string, doc *docindex.DocumentEntry) float64 {
	if doc.DocLength == 0 {
		return 0
	}
	norm := 1 - b + b*(float64(doc.DocLength)/idx.avgDocLength)

	seen := make(map[string]bool, len(queryTerms))
	var score float64
	for _, t := range queryTerms {
		if seen[t] {
			continue
		}
		seen[t] = true
		tf := doc.TermFrequencies[t]
		if tf == 0 {
			continue
		}
		idfT := idx.idf[t]
		tfFloat := float64(tf)
		score += idfT * (tfFloat * (k1 + 1)) / (tfFloat + k1*norm)
	}
	return score
}
