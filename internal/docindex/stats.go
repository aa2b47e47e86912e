package docindex

import "math"

// idfFloor is the minimum IDF value: uncapped BM25 IDF goes
// negative for very common terms, which would cancel BM25 contributions
// from shorter queries; flooring preserves weak positive signal.
const idfFloor = 0.1

// ComputeCorpusStats derives avg_doc_length and idf_map from a completed
// file collection.
func ComputeCorpusStats(files map[string]*DocumentEntry) (avgDocLength float64, idfMap map[string]float64) {
	n := len(files)
	if n == 0 {
		return 0, map[string]float64{}
	}

	totalLength := 0
	docFreq := make(map[string]int)
	for _, doc := range files {
		totalLength += doc.DocLength
		seen := make(map[string]bool, len(doc.TermFrequencies))
		for term := range doc.TermFrequencies {
			if !seen[term] {
				docFreq[term]++
				seen[term] = true
			}
		}
	}
	avgDocLength = float64(totalLength) / float64(n)

	idfMap = make(map[string]float64, len(docFreq))
	nf := float64(n)
	for term, df := range docFreq {
		idf := math.Log((nf - float64(df) + 0.5) / (float64(df) + 0.5))
		if idf < idfFloor {
			idf = idfFloor
		}
		idfMap[term] = idf
	}
	return avgDocLength, idfMap
}
