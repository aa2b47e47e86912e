// Package docindex implements the data model, the file indexer, corpus
// statistics, and the forward/reverse index file contract.
package docindex

import "github.com/corpusdigest/digest/internal/fingerprint"

// Heading is a single markdown heading occurrence.
type Heading struct {
	Line  int    `json:"line"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Link is a single inline markdown link occurrence.
type Link struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Target string `json:"target"`
}

// SectionFingerprint is a per-section SimHash plus its location.
type SectionFingerprint struct {
	Heading   string `json:"heading"`
	Level     int    `json:"level"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	SimHash   uint64 `json:"simhash"`
}

// DocumentEntry is one indexed file.
type DocumentEntry struct {
	Path                string                `json:"path"`
	SizeBytes           int64                 `json:"size_bytes"`
	LineCount           int                   `json:"line_count"`
	Headings            []Heading             `json:"headings"`
	Links               []Link                `json:"links"`
	Keywords            []string              `json:"keywords"`
	BodyKeywords        []string              `json:"body_keywords"`
	TermFrequencies     map[string]int        `json:"term_frequencies"`
	DocLength           int                   `json:"doc_length"`
	SimHash             uint64                `json:"simhash"`
	MinHash             fingerprint.MinHash   `json:"minhash"`
	SectionFingerprints []SectionFingerprint  `json:"section_fingerprints"`
}

// KeywordSet returns the union of Keywords and BodyKeywords as a membership
// set, used by similarity scoring).
func (d *DocumentEntry) KeywordSet() map[string]bool {
	set := make(map[string]bool, len(d.Keywords)+len(d.BodyKeywords))
	for _, k := range d.Keywords {
		set[k] = true
	}
	for _, k := range d.BodyKeywords {
		set[k] = true
	}
	return set
}

// Posting is one reverse-index entry for a stemmed term. Heading-derived
// postings carry Line/Heading/Level; body/heading-set postings carry only
// File (the pointer fields are nil).
type Posting struct {
	File    string  `json:"file"`
	Line    *int    `json:"line,omitempty"`
	Heading *string `json:"heading,omitempty"`
	Level   *int    `json:"level,omitempty"`
}

// ForwardIndex is the full per-build document collection plus corpus
// statistics.
type ForwardIndex struct {
	Files        map[string]*DocumentEntry `json:"files"`
	IndexedAt    string                    `json:"indexed_at"`
	Version      int                       `json:"version"`
	AvgDocLength float64                   `json:"avg_doc_length"`
	IDFMap       map[string]float64        `json:"idf_map"`
	BuildID      string                    `json:"build_id,omitempty"`
}

// ReverseIndex maps a stemmed term to its postings.
type ReverseIndex struct {
	Keywords map[string][]Posting `json:"keywords"`
}

// Stats is the summary written to stats.json.
type Stats struct {
	TotalFiles    int    `json:"total_files"`
	TotalKeywords int    `json:"total_keywords"`
	TotalHeadings int    `json:"total_headings"`
	TotalLinks    int    `json:"total_links"`
	IndexedAt     string `json:"indexed_at"`
}

// CurrentVersion is the index format version written by this build.
const CurrentVersion = 3
