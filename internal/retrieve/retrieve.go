// Package retrieve implements the Section Retriever: BM25
// document ranking, candidate section materialization, and combined
// (BM25, canonicality) re-ranking.
package retrieve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corpusdigest/digest/internal/bm25"
	"github.com/corpusdigest/digest/internal/canonicality"
	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/tokenize"
)

const (
	minBM25Score  = 0.01
	maxDocuments  = 20
	bm25Weight    = 0.7
	canonicality0 = 0.3
)

// Candidate is one retrieval candidate: a section of content within a
// document, carrying enough to compose a digest entry.
type Candidate struct {
	Path          string
	Heading       string
	LineStart     int
	LineEnd       int
	BM25Score     float64
	Canonicality  float64
	CombinedScore float64
	Content       string
}

// Retrieve ranks documents by BM25 against query, materializes section
// candidates for the surviving documents, re-ranks by the combined score,
// and truncates to maxSections. corpusRoot is used to load
// candidate content by path; read failures skip that candidate rather than
// aborting retrieval.
func Retrieve(query string, forward *docindex.ForwardIndex, tok *tokenize.Tokenizer, corpusRoot string, maxSections int) []Candidate {
	queryTerms := tok.ExtractStemmedTokens(query)

	idx := bm25.New(forward)
	docScores := idx.Score(queryTerms)

	var kept []bm25.Result
	for _, r := range docScores {
		if r.Score > minBM25Score {
			kept = append(kept, r)
		}
	}
	if len(kept) > maxDocuments {
		kept = kept[:maxDocuments]
	}

	var candidates []Candidate
	for _, r := range kept {
		doc := forward.Files[r.Path]
		absPath := filepath.Join(corpusRoot, filepath.FromSlash(r.Path))
		content, err := os.ReadFile(absPath)
		if err != nil {
			continue
		}
		lines := strings.Split(strings.TrimSuffix(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n"), "\n")

		canon := canonicality.Score(r.Path)

		if len(doc.SectionFingerprints) == 0 {
			candidates = append(candidates, makeCandidate(r.Path, "", 1, len(lines), r.Score, canon, lines))
			continue
		}
		for _, sec := range doc.SectionFingerprints {
			candidates = append(candidates, makeCandidate(r.Path, sec.Heading, sec.LineStart, sec.LineEnd, r.Score, canon, lines))
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CombinedScore != candidates[j].CombinedScore {
			return candidates[i].CombinedScore > candidates[j].CombinedScore
		}
		return candidates[i].Path < candidates[j].Path
	})

	if maxSections <= 0 {
		maxSections = 20
	}
	if len(candidates) > maxSections {
		candidates = candidates[:maxSections]
	}
	return candidates
}

func makeCandidate(path, heading string, start, end int, bm25Score, canon float64, lines []string) Candidate {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	var body string
	if start <= end && start >= 1 {
		body = strings.Join(lines[start-1:end], "\n")
	}
	return Candidate{
		Path:          path,
		Heading:       heading,
		LineStart:     start,
		LineEnd:       end,
		BM25Score:     bm25Score,
		Canonicality:  canon,
		CombinedScore: bm25Weight*bm25Score + canonicality0*canon,
		Content:       body,
	}
}
