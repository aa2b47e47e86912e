// Package tokenize extracts keyword tokens from text and reduces them with
// a deliberately crude, deterministic suffix-stripping stemmer.
package tokenize

import (
	"regexp"
	"strings"

	"github.com/corpusdigest/digest/internal/config"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_-]*`)

// suffixes is ordered longest-first; the first matching suffix is stripped.
var suffixes = []string{
	"ization", "ational", "iveness", "fulness", "ousness",
	"ation", "ement", "ment", "able", "ible", "ness", "ical",
	"ings", "ing", "ies", "ive", "ful", "ous", "ity",
	"ed", "ly", "er", "es", "s",
}

// Tokenizer extracts and stems tokens against a configurable stop-word set.
type Tokenizer struct {
	stop map[string]bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStopwords overrides the embedded default stop-word list.
func WithStopwords(words []string) Option {
	return func(t *Tokenizer) {
		stop := make(map[string]bool, len(words))
		for _, w := range words {
			stop[strings.ToLower(w)] = true
		}
		t.stop = stop
	}
}

// New builds a Tokenizer, loading the embedded default stop-word list
// unless overridden via WithStopwords.
func New(opts ...Option) (*Tokenizer, error) {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	if t.stop == nil {
		sw, err := config.LoadStopwords()
		if err != nil {
			return nil, err
		}
		stop := make(map[string]bool, len(sw.Words))
		for _, w := range sw.Words {
			stop[w] = true
		}
		t.stop = stop
	}
	return t, nil
}

// ExtractTokens yields lower-cased tokens matching [A-Za-z][A-Za-z0-9_-]*,
// length >= 3, excluding the stop-word set.
func (t *Tokenizer) ExtractTokens(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		w := strings.ToLower(m)
		if len(w) < 3 {
			continue
		}
		if t.stop[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Stem performs a single-pass suffix strip: the first matching suffix (from
// the longest-first ordered list) is removed only if the remainder is
// strictly longer than two characters. Only one suffix is stripped per call,
// so re-stemming is not a no-op when the result ends in another listed
// suffix: Stem("deployments") is "deployment", and Stem("deployment") is
// "deploy".
func Stem(token string) string {
	w := strings.ToLower(token)
	for _, suf := range suffixes {
		if len(w) > len(suf)+2 && strings.HasSuffix(w, suf) {
			return w[:len(w)-len(suf)]
		}
	}
	return w
}

// ExtractStemmedTokens is a convenience combining ExtractTokens and Stem.
func (t *Tokenizer) ExtractStemmedTokens(text string) []string {
	tokens := t.ExtractTokens(text)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = Stem(tok)
	}
	return out
}

// IsCodeLine reports whether a body line should be excluded from keyword
// extraction under the coarse, stateless code filter: a line starting with
// a fenced-code marker or four leading spaces is skipped in isolation,
// without tracking whether a fence is actually open. Keep this line-by-line
// check as is; replacing it with true fence-state tracking changes every
// indexed term set and invalidates existing indexes.
func IsCodeLine(line string) bool {
	return strings.HasPrefix(line, "```") || strings.HasPrefix(line, "    ")
}
