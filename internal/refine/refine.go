// Package refine implements the Extractive Refiner: sentence
// splitting and weighted scoring, retaining the top-scoring sentences per
// section within a per-section token budget.
package refine

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/corpusdigest/digest/internal/config"
)

const (
	charsPerToken = 4

	queryTermWeight    = 2.0
	highValueWeight    = 1.5
	codeMarkerWeight   = 3.0
	firstSentenceBonus = 0.3
	crossRefSentenceWt = 1.0
	minRetained        = 6
	retainFraction     = 0.4
)

var (
	headingLinePattern = regexp.MustCompile(`^#{1,6}\s+`)
	subheadingPattern  = regexp.MustCompile(`^#{2,}\s+`)
	bulletPattern      = regexp.MustCompile(`^\s*[-*+]\s+`)
	sentenceSplitter   = regexp.MustCompile(`[.!?]+\s+`)

	highValueOnce sync.Once
	highValueAC   ahocorasick.AhoCorasick
)

// buildHighValueAutomaton lazily builds the closed high-value-keyword
// Aho-Corasick automaton from the embedded keyword list, once per process.
func buildHighValueAutomaton(patterns []string) ahocorasick.AhoCorasick {
	highValueOnce.Do(func() {
		builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
			AsciiCaseInsensitive: true,
			MatchOnlyWholeWords:  false,
			MatchKind:            ahocorasick.LeftMostLongestMatch,
		})
		highValueAC = builder.Build(patterns)
	})
	return highValueAC
}

type sentence struct {
	text  string
	score float64
	order int
}

// Refine detaches the section's leading heading, preserves code blocks,
// bullets, and subheadings verbatim, scores the remaining prose's sentences,
// retains the top max(6, ceil(0.4*n)) by score, recomposes the retained
// sentences in their original order, appends any preserved blocks not
// already present, and truncates to tokenBudget.
func Refine(sectionBody string, queryTerms []string, hasCrossRefs bool, tokenBudget int) string {
	kw, err := config.LoadKeywords()
	if err != nil {
		kw = &config.Keywords{}
	}

	lines := strings.Split(sectionBody, "\n")
	start := 0
	if len(lines) > 0 && headingLinePattern.MatchString(lines[0]) {
		start = 1
	}

	var preserved []string
	var proseLines []string
	inFence := false
	for _, line := range lines[start:] {
		trimmed := line
		switch {
		case strings.HasPrefix(strings.TrimSpace(trimmed), "```"):
			inFence = !inFence
			preserved = append(preserved, line)
		case inFence:
			preserved = append(preserved, line)
		case bulletPattern.MatchString(trimmed):
			preserved = append(preserved, line)
		case subheadingPattern.MatchString(trimmed):
			preserved = append(preserved, line)
		default:
			proseLines = append(proseLines, line)
		}
	}

	prose := strings.Join(proseLines, " ")
	rawSentences := sentenceSplitter.Split(prose, -1)

	var sentences []sentence
	for i, s := range rawSentences {
		s = strings.TrimSpace(s)
		if len(s) <= 10 {
			continue
		}
		r := []rune(s)
		if !isAlnumOrHash(r[0]) {
			continue
		}
		sentences = append(sentences, sentence{
			text:  s,
			score: scoreSentence(s, i == 0, queryTerms, hasCrossRefs, kw),
			order: i,
		})
	}

	retain := int(math.Ceil(retainFraction * float64(len(sentences))))
	if retain < minRetained {
		retain = minRetained
	}
	if retain > len(sentences) {
		retain = len(sentences)
	}

	ranked := append([]sentence(nil), sentences...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if retain < len(ranked) {
		ranked = ranked[:retain]
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].order < ranked[j].order })

	var out []string
	for _, s := range ranked {
		out = append(out, s.text)
	}
	body := strings.Join(out, " ")

	for _, p := range preserved {
		if !strings.Contains(body, strings.TrimSpace(p)) {
			body += "\n" + p
		}
	}

	return truncateToBudget(body, tokenBudget)
}

func scoreSentence(s string, isFirst bool, queryTerms []string, hasCrossRefs bool, kw *config.Keywords) float64 {
	lower := strings.ToLower(s)
	var score float64

	for _, t := range queryTerms {
		if t == "" {
			continue
		}
		score += queryTermWeight * float64(strings.Count(lower, strings.ToLower(t)))
	}
	ac := buildHighValueAutomaton(kw.HighValue)
	score += highValueWeight * float64(len(ac.FindAll(lower)))
	for _, marker := range kw.CodeMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			score += codeMarkerWeight
			break
		}
	}
	if isFirst {
		score += firstSentenceBonus
	}
	if hasCrossRefs {
		for _, phrase := range kw.XrefPhrases {
			if strings.Contains(lower, phrase) {
				score += crossRefSentenceWt
				break
			}
		}
	}
	return score
}

func truncateToBudget(body string, tokenBudget int) string {
	maxChars := tokenBudget * charsPerToken
	if maxChars <= 0 || len(body) <= maxChars {
		return body
	}
	return body[:maxChars]
}

func isAlnumOrHash(r rune) bool {
	return r == '#' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
