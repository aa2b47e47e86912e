// Package config loads the embedded default tuning data (stop words,
// high-value keywords, cross-reference heading classifiers, and numeric
// defaults). The Load functions parse and cache the embedded YAML; the
// Parse functions parse caller-supplied YAML of the same shape. The core
// packages read the embedded defaults through the Load functions: the
// refiner and cross-reference expander take no keyword override, and the
// BM25 and LSH packages use their own constants rather than the tuning
// values here. Only the tokenizer's stop words can be replaced, through
// tokenize.WithStopwords.
package config

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords.yaml
var defaultStopwordsYAML []byte

//go:embed keywords.yaml
var defaultKeywordsYAML []byte

//go:embed tuning.yaml
var defaultTuningYAML []byte

// Stopwords holds the tokenizer's stop-word list.
type Stopwords struct {
	Words []string `yaml:"words"`
}

// Keywords holds the extractive refiner and cross-reference expander's
// closed keyword lists.
type Keywords struct {
	HighValue    []string            `yaml:"high_value"`
	XrefHeadings map[string][]string `yaml:"xref_headings"`
	CodeMarkers  []string            `yaml:"code_markers"`
	XrefPhrases  []string            `yaml:"xref_phrases"`
}

// Tuning holds the engine's numeric defaults.
type Tuning struct {
	Extensions        []string `yaml:"extensions"`
	ExcludeSubstrings []string `yaml:"exclude_substrings"`
	Retrieval         struct {
		MaxTokens   int `yaml:"max_tokens"`
		MaxSections int `yaml:"max_sections"`
		XrefDepth   int `yaml:"xref_depth"`
	} `yaml:"retrieval"`
	Thresholds struct {
		DocumentDuplicate float64 `yaml:"document_duplicate"`
		SectionDuplicate  float64 `yaml:"section_duplicate"`
		SimilarFile       float64 `yaml:"similar_file"`
	} `yaml:"thresholds"`
	LSH struct {
		Bands int `yaml:"bands"`
		Rows  int `yaml:"rows"`
	} `yaml:"lsh"`
	BM25 struct {
		K1 float64 `yaml:"k1"`
		B  float64 `yaml:"b"`
	} `yaml:"bm25"`
}

var (
	stopwordsOnce   sync.Once
	stopwordsCached *Stopwords
	stopwordsErr    error

	keywordsOnce   sync.Once
	keywordsCached *Keywords
	keywordsErr    error

	tuningOnce   sync.Once
	tuningCached *Tuning
	tuningErr    error
)

// LoadStopwords parses and caches the embedded default stop-word list.
func LoadStopwords() (*Stopwords, error) {
	stopwordsOnce.Do(func() {
		stopwordsCached, stopwordsErr = ParseStopwords(defaultStopwordsYAML)
	})
	return stopwordsCached, stopwordsErr
}

// ParseStopwords parses caller-supplied YAML in the same shape as the
// embedded default, bypassing the cache. Used to override defaults.
func ParseStopwords(data []byte) (*Stopwords, error) {
	var sw Stopwords
	if err := yaml.Unmarshal(data, &sw); err != nil {
		return nil, fmt.Errorf("config: parse stopwords: %w", err)
	}
	return &sw, nil
}

// LoadKeywords parses and caches the embedded default keyword configuration.
func LoadKeywords() (*Keywords, error) {
	keywordsOnce.Do(func() {
		keywordsCached, keywordsErr = ParseKeywords(defaultKeywordsYAML)
	})
	return keywordsCached, keywordsErr
}

// ParseKeywords parses caller-supplied YAML in the same shape as the
// embedded default, bypassing the cache.
func ParseKeywords(data []byte) (*Keywords, error) {
	var kw Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return nil, fmt.Errorf("config: parse keywords: %w", err)
	}
	return &kw, nil
}

// LoadTuning parses and caches the embedded default tuning constants.
func LoadTuning() (*Tuning, error) {
	tuningOnce.Do(func() {
		tuningCached, tuningErr = ParseTuning(defaultTuningYAML)
	})
	return tuningCached, tuningErr
}

// ParseTuning parses caller-supplied YAML in the same shape as the embedded
// default, bypassing the cache.
func ParseTuning(data []byte) (*Tuning, error) {
	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("config: parse tuning: %w", err)
	}
	return &t, nil
}
