// Package xref implements the Cross-Reference Expander: parses
// inline links and ADR identifier references out of primary-section
// content, classifies target documents, and selects sections from each
// target under a token sub-budget.
package xref

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/corpusdigest/digest/internal/config"
	"github.com/corpusdigest/digest/internal/docindex"
)

// Tag classifies a cross-reference target document.
type Tag int

const (
	TagADR Tag = iota
	TagDesign
	TagOps
	TagOther
)

var tagSectionCap = map[Tag]int{TagADR: 3, TagDesign: 2, TagOps: 2, TagOther: 1}

// Reference is one deduplicated (origin, target, anchor) cross-reference.
type Reference struct {
	OriginPath string
	TargetPath string
	Anchor     string
}

var (
	linkPattern      = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]+)\)`)
	adrIDPattern     = regexp.MustCompile(`ADR[-_ ]?(\d+)`)
	externalSchemes  = []string{"http://", "https://", "mailto:"}
	nonTextExtension = regexp.MustCompile(`\.(png|jpg|jpeg|gif|svg|pdf|zip|mp4)$`)
)

// ParseReferences extracts inline links and ADR identifier references from
// originContent, resolving link targets relative to originPath's
// directory; a relative target that already starts with that directory
// is taken as corpus-root-relative. adrIndex maps zero-padded three-digit
// ADR identifiers to document paths.
func ParseReferences(originPath, originContent string, adrIndex map[string]string) []Reference {
	seen := make(map[[3]string]bool)
	var refs []Reference

	add := func(target, anchor string) {
		if target == "" || target == originPath {
			return
		}
		key := [3]string{originPath, target, anchor}
		if seen[key] {
			return
		}
		seen[key] = true
		refs = append(refs, Reference{OriginPath: originPath, TargetPath: target, Anchor: anchor})
	}

	for _, m := range linkPattern.FindAllStringSubmatch(originContent, -1) {
		isImage, rawTarget := m[1], m[3]
		if isImage == "!" {
			continue
		}
		if isExternal(rawTarget) {
			continue
		}
		targetPath, anchor := splitTarget(rawTarget)
		if nonTextExtension.MatchString(targetPath) {
			continue
		}
		resolved := resolveTarget(originPath, targetPath)
		add(resolved, anchor)
	}

	for _, m := range adrIDPattern.FindAllStringSubmatch(originContent, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		padded := zeroPad3(n)
		if target, ok := adrIndex[padded]; ok {
			add(target, "")
		}
	}

	return refs
}

// HasReferences reports whether content carries at least one non-image,
// non-external inline link or an ADR identifier. Used by the extractive
// refiner's cross-reference sentence feature.
func HasReferences(content string) bool {
	for _, m := range linkPattern.FindAllStringSubmatch(content, -1) {
		if m[1] == "!" || isExternal(m[3]) {
			continue
		}
		return true
	}
	return adrIDPattern.MatchString(content)
}

// BuildADRIndex scans corpus paths for /adr/ or adr- segments, extracting
// zero-padded three-digit identifiers.
func BuildADRIndex(paths []string) map[string]string {
	idx := make(map[string]string)
	digitsPattern := regexp.MustCompile(`(\d+)`)
	for _, p := range paths {
		lower := strings.ToLower(p)
		if !strings.Contains(lower, "/adr/") && !strings.Contains(lower, "adr-") {
			continue
		}
		m := digitsPattern.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		idx[zeroPad3(n)] = p
	}
	return idx
}

// ClassifyTarget assigns a Tag to a target document path.
func ClassifyTarget(targetPath string) Tag {
	lower := strings.ToLower(targetPath)
	switch {
	case strings.Contains(lower, "/adr/") || strings.Contains(lower, "adr-"):
		return TagADR
	case strings.Contains(lower, "architecture") || strings.Contains(lower, "design"):
		return TagDesign
	case strings.Contains(lower, "runbook") || strings.Contains(lower, "operations") || strings.Contains(lower, "ops"):
		return TagOps
	default:
		return TagOther
	}
}

// SectionCap returns the per-document section cap for a tag.
func SectionCap(t Tag) int { return tagSectionCap[t] }

// targetGroup is one target document with its incoming reference count.
type targetGroup struct {
	Path  string
	Tag   Tag
	Count int
}

// RankTargets groups references by target path, classifies each, and sorts
// by tag priority (ADR < Design < Ops < Other), then reference-count
// descending, then path ascending.
func RankTargets(refs []Reference) []targetGroup {
	counts := make(map[string]int)
	for _, r := range refs {
		counts[r.TargetPath]++
	}
	groups := make([]targetGroup, 0, len(counts))
	for path, count := range counts {
		groups = append(groups, targetGroup{Path: path, Tag: ClassifyTarget(path), Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Tag != groups[j].Tag {
			return groups[i].Tag < groups[j].Tag
		}
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Path < groups[j].Path
	})
	return groups
}

// SelectedSection is one section chosen from a target document.
type SelectedSection struct {
	Path      string
	Heading   string
	LineStart int
	LineEnd   int
	Content   string
}

// SelectSections picks sections from a target document by tag rule:
// ADR favors context/decision/consequences/motivation/rationale/
// summary headings; Design honors an anchor match or falls back to the
// first cap sections; Ops favors deploy/restart/rollback/monitor/
// troubleshoot/debug/fix/restore headings; Other takes the first section
// only. Falls back to the document's first section, or its first 100
// lines if it has none.
func SelectSections(doc *docindex.DocumentEntry, lines []string, tag Tag, anchor string) []SelectedSection {
	kw, err := config.LoadKeywords()
	if err != nil {
		kw = &config.Keywords{}
	}
	secCap := SectionCap(tag)

	var matches []docindex.SectionFingerprint
	switch tag {
	case TagADR:
		matches = sectionsMatchingAny(doc.SectionFingerprints, kw.XrefHeadings["adr"])
	case TagOps:
		matches = sectionsMatchingAny(doc.SectionFingerprints, kw.XrefHeadings["ops"])
	case TagDesign:
		if anchor != "" {
			if s := sectionMatchingAnchor(doc.SectionFingerprints, anchor); s != nil {
				matches = []docindex.SectionFingerprint{*s}
			}
		}
	}

	if len(matches) == 0 && len(doc.SectionFingerprints) > 0 {
		// Design without an anchor match takes the first cap sections by
		// rule; every other tag falls back to the first section only.
		n := 1
		if tag == TagDesign {
			n = secCap
		}
		if n > len(doc.SectionFingerprints) {
			n = len(doc.SectionFingerprints)
		}
		matches = doc.SectionFingerprints[:n]
	}
	if len(matches) > secCap {
		matches = matches[:secCap]
	}

	if len(matches) == 0 {
		end := 100
		if end > len(lines) {
			end = len(lines)
		}
		if end == 0 {
			return nil
		}
		return []SelectedSection{{
			Path:      doc.Path,
			Heading:   "",
			LineStart: 1,
			LineEnd:   end,
			Content:   strings.Join(lines[:end], "\n"),
		}}
	}

	out := make([]SelectedSection, 0, len(matches))
	for _, m := range matches {
		start, end := m.LineStart, m.LineEnd
		if start < 1 {
			start = 1
		}
		if end > len(lines) {
			end = len(lines)
		}
		var body string
		if start <= end {
			body = strings.Join(lines[start-1:end], "\n")
		}
		out = append(out, SelectedSection{
			Path:      doc.Path,
			Heading:   m.Heading,
			LineStart: start,
			LineEnd:   end,
			Content:   body,
		})
	}
	return out
}

func sectionsMatchingAny(secs []docindex.SectionFingerprint, needles []string) []docindex.SectionFingerprint {
	var out []docindex.SectionFingerprint
	for _, s := range secs {
		h := strings.ToLower(s.Heading)
		for _, n := range needles {
			if strings.Contains(h, n) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func sectionMatchingAnchor(secs []docindex.SectionFingerprint, anchor string) *docindex.SectionFingerprint {
	anchor = strings.ToLower(anchor)
	for i, s := range secs {
		slug := strings.ToLower(strings.ReplaceAll(s.Heading, " ", "-"))
		if slug == anchor {
			return &secs[i]
		}
	}
	return nil
}

func isExternal(target string) bool {
	lower := strings.ToLower(target)
	for _, scheme := range externalSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

func splitTarget(raw string) (target, anchor string) {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

func resolveTarget(originPath, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	dir := path.Dir(originPath)
	if dir != "." && strings.HasPrefix(target, dir+"/") {
		return path.Clean(target)
	}
	return path.Clean(path.Join(dir, target))
}

func zeroPad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

const (
	charsPerToken  = 4
	perDocTokenCap = 600
)

// SubBudget computes the cross-reference phase's token sub-budget:
// min(0.3*maxTokens, 2000, maxTokens-primaryTokens).
func SubBudget(maxTokens, primaryTokens int) int {
	sub := int(0.3 * float64(maxTokens))
	if sub > 2000 {
		sub = 2000
	}
	if remaining := maxTokens - primaryTokens; remaining < sub {
		sub = remaining
	}
	if sub < 0 {
		sub = 0
	}
	return sub
}

// Expand iterates ranked targets in order, selecting sections from each
// (loadLines must return the target document's content lines, or an error
// to skip it) subject to both the global sub-budget and the 600-token
// per-document cap, stopping when the sub-budget is exhausted. A target
// contributing nothing advances to the next target without consuming
// budget.
func Expand(
	refs []Reference,
	files map[string]*docindex.DocumentEntry,
	loadLines func(path string) ([]string, error),
	subBudgetTokens int,
) []SelectedSection {
	targets := RankTargets(refs)
	anchorByTarget := make(map[string]string)
	for _, r := range refs {
		if _, ok := anchorByTarget[r.TargetPath]; !ok && r.Anchor != "" {
			anchorByTarget[r.TargetPath] = r.Anchor
		}
	}

	var out []SelectedSection
	remaining := subBudgetTokens
	for _, tg := range targets {
		if remaining <= 0 {
			break
		}
		doc, ok := files[tg.Path]
		if !ok {
			continue
		}
		lines, err := loadLines(tg.Path)
		if err != nil {
			continue
		}
		sections := SelectSections(doc, lines, tg.Tag, anchorByTarget[tg.Path])

		docBudget := perDocTokenCap
		if docBudget > remaining {
			docBudget = remaining
		}
		for _, sec := range sections {
			tokens := len(sec.Content) / charsPerToken
			if tokens > docBudget {
				if docBudget <= 0 {
					break
				}
				truncateChars := docBudget * charsPerToken
				if truncateChars < len(sec.Content) {
					sec.Content = sec.Content[:truncateChars]
				}
				tokens = docBudget
			}
			out = append(out, sec)
			docBudget -= tokens
			remaining -= tokens
			if docBudget <= 0 || remaining <= 0 {
				break
			}
		}
	}
	return out
}
