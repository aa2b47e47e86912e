package docindex

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/corpusdigest/digest/internal/digesterrors"
	"github.com/corpusdigest/digest/internal/fingerprint"
	"github.com/corpusdigest/digest/internal/tokenize"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// Indexer builds DocumentEntry values from file content.
type Indexer struct {
	tok *tokenize.Tokenizer
}

// NewIndexer constructs an Indexer using the given tokenizer.
func NewIndexer(tok *tokenize.Tokenizer) *Indexer {
	return &Indexer{tok: tok}
}

// IndexFile reads path and builds its DocumentEntry. relPath is the stable
// identity stored as DocumentEntry.Path.
func (ix *Indexer) IndexFile(relPath, absPath string) (*DocumentEntry, error) {
	raw, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", digesterrors.ErrReadFailure, absPath, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", digesterrors.ErrReadFailure, absPath, err)
	}

	content := string(raw)
	lines := splitLines(content)

	headings := parseHeadings(lines)
	links := parseLinks(lines)

	keywordSet := make(map[string]bool)
	for _, h := range headings {
		for _, tok := range ix.tok.ExtractStemmedTokens(h.Text) {
			keywordSet[tok] = true
		}
	}

	headingLines := make(map[int]bool, len(headings))
	for _, h := range headings {
		headingLines[h.Line] = true
	}

	termFreq := make(map[string]int)
	bodyKeywordSet := make(map[string]bool)
	docLength := 0
	for i, line := range lines {
		if headingLines[i+1] || tokenize.IsCodeLine(line) {
			continue
		}
		for _, tok := range ix.tok.ExtractStemmedTokens(line) {
			termFreq[tok]++
			docLength++
			if !keywordSet[tok] {
				bodyKeywordSet[tok] = true
			}
		}
	}

	keywords := sortedKeys(keywordSet)
	bodyKeywords := sortedKeys(bodyKeywordSet)

	allTokens := make([]string, 0, len(keywordSet)+len(bodyKeywordSet))
	allTokens = append(allTokens, keywords...)
	allTokens = append(allTokens, bodyKeywords...)

	return &DocumentEntry{
		Path:                relPath,
		SizeBytes:           info.Size(),
		LineCount:           len(lines),
		Headings:            headings,
		Links:               links,
		Keywords:            keywords,
		BodyKeywords:        bodyKeywords,
		TermFrequencies:     termFreq,
		DocLength:           docLength,
		SimHash:             fingerprint.SimHash(content),
		MinHash:             fingerprint.ComputeMinHash(allTokens),
		SectionFingerprints: sectionFingerprints(lines, headings),
	}, nil
}

func parseHeadings(lines []string) []Heading {
	var out []Heading
	for i, line := range lines {
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Heading{Line: i + 1, Level: len(m[1]), Text: m[2]})
	}
	return out
}

func parseLinks(lines []string) []Link {
	var out []Link
	for i, line := range lines {
		for _, m := range linkPattern.FindAllStringSubmatch(line, -1) {
			out = append(out, Link{Line: i + 1, Text: m[1], Target: m[2]})
		}
	}
	return out
}

// sectionFingerprints computes one SimHash per heading-delimited section:
// section i spans [heading_i.line, heading_{i+1}.line) or end-of-file for
// the last heading. Documents with no headings yield no sections.
func sectionFingerprints(lines []string, headings []Heading) []SectionFingerprint {
	if len(headings) == 0 {
		return nil
	}
	out := make([]SectionFingerprint, 0, len(headings))
	for i, h := range headings {
		start := h.Line
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].Line - 1
		}
		body := strings.Join(lines[start-1:end], "\n")
		out = append(out, SectionFingerprint{
			Heading:   h.Text,
			Level:     h.Level,
			LineStart: start,
			LineEnd:   end,
			SimHash:   fingerprint.SimHash(body),
		})
	}
	return out
}

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
