package digest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/corpusdigest/digest/internal/compose"
	"github.com/corpusdigest/digest/internal/docindex"
	"github.com/corpusdigest/digest/internal/refine"
	"github.com/corpusdigest/digest/internal/retrieve"
	"github.com/corpusdigest/digest/internal/tokenize"
	"github.com/corpusdigest/digest/internal/xref"
)

const (
	defaultMaxTokens   = 8000
	defaultMaxSections = 20
)

// AssembleOptions configures Assemble.
type AssembleOptions struct {
	MaxTokens   int
	MaxSections int
	XrefDepth   int
	Logger      *slog.Logger
}

// AssembleOption sets one AssembleOptions field.
type AssembleOption func(*AssembleOptions)

// WithMaxTokens overrides the global digest token budget (default 8000).
func WithMaxTokens(n int) AssembleOption {
	return func(o *AssembleOptions) { o.MaxTokens = n }
}

// WithMaxSections overrides the primary section cap (default 20).
func WithMaxSections(n int) AssembleOption {
	return func(o *AssembleOptions) { o.MaxSections = n }
}

// WithXrefDepth enables (depth > 0) or disables (depth == 0, the default)
// cross-reference expansion.
func WithXrefDepth(depth int) AssembleOption {
	return func(o *AssembleOptions) { o.XrefDepth = depth }
}

// WithAssembleLogger overrides the default slog logger.
func WithAssembleLogger(l *slog.Logger) AssembleOption {
	return func(o *AssembleOptions) { o.Logger = l }
}

// Assemble runs the retrieval and assembly pipeline end to end:
// BM25-rank documents, materialize candidate
// sections, optionally expand cross-references under a sub-budget, refine
// each section extractively, and compose the final markdown digest within
// the global token budget.
func Assemble(ctx context.Context, query string, forward *docindex.ForwardIndex, corpusRoot string, opts ...AssembleOption) (string, error) {
	o := &AssembleOptions{
		MaxTokens:   defaultMaxTokens,
		MaxSections: defaultMaxSections,
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	_, span := tracer.Start(ctx, "digest.Assemble",
		oteltrace.WithAttributes(
			attribute.String("query", query),
			attribute.Int("max_tokens", o.MaxTokens),
			attribute.Int("xref_depth", o.XrefDepth),
		),
	)
	defer span.End()

	tok, err := tokenize.New()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tokenizer init failed")
		return "", fmt.Errorf("digest: assemble: %w", err)
	}
	queryTerms := tok.ExtractStemmedTokens(query)

	primary := retrieve.Retrieve(query, forward, tok, corpusRoot, o.MaxSections)
	span.SetAttributes(attribute.Int("primary_sections", len(primary)))

	documents := summarizeDocuments(primary)

	var sections []compose.Section
	primaryTokens := 0
	for _, c := range primary {
		hasRefs := xref.HasReferences(c.Content)
		body := refine.Refine(c.Content, queryTerms, hasRefs, perSectionBudget(o.MaxTokens, len(primary)))
		sections = append(sections, compose.Section{
			Heading:        headingOrPath(c),
			Path:           c.Path,
			LineStart:      c.LineStart,
			LineEnd:        c.LineEnd,
			RefinedContent: body,
		})
		primaryTokens += len(body) / 4
	}

	if o.XrefDepth > 0 {
		expanded, err := expandCrossReferences(forward, corpusRoot, primary, o.MaxTokens, primaryTokens)
		if err != nil {
			o.Logger.Warn("cross-reference expansion skipped", "error", err)
		}
		for _, sec := range expanded {
			refinedBody := refine.Refine(sec.Content, queryTerms, true, perSectionBudget(o.MaxTokens, len(expanded)+1))
			sections = append(sections, compose.Section{
				Heading:        sec.Heading,
				Path:           sec.Path,
				LineStart:      sec.LineStart,
				LineEnd:        sec.LineEnd,
				RefinedContent: refinedBody,
			})
		}
		span.SetAttributes(attribute.Int("expanded_sections", len(expanded)))
	}

	out := compose.Compose(compose.Input{
		Query:     query,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		MaxTokens: o.MaxTokens,
		Documents: documents,
		Sections:  sections,
	})

	o.Logger.Info("digest assemble complete",
		"query", query,
		"sections", len(sections),
		"documents", len(documents),
	)
	return out, nil
}

// summarizeDocuments groups retrieval candidates by path for the digest's
// "Top Relevant Documents" table: combined score is the best-scoring
// section's score, section count is how many candidates survived per path.
func summarizeDocuments(candidates []retrieve.Candidate) []compose.DocumentSummary {
	byPath := make(map[string]*compose.DocumentSummary)
	var order []string
	for _, c := range candidates {
		s, ok := byPath[c.Path]
		if !ok {
			s = &compose.DocumentSummary{Path: c.Path}
			byPath[c.Path] = s
			order = append(order, c.Path)
		}
		s.SectionCount++
		if c.CombinedScore > s.CombinedScore {
			s.CombinedScore = c.CombinedScore
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return byPath[order[i]].CombinedScore > byPath[order[j]].CombinedScore
	})
	out := make([]compose.DocumentSummary, 0, len(order))
	for _, p := range order {
		out = append(out, *byPath[p])
	}
	return out
}

// expandCrossReferences parses inline links and ADR identifiers out of the
// primary candidates' section content and expands the highest-priority
// targets under the cross-reference sub-budget.
func expandCrossReferences(forward *docindex.ForwardIndex, corpusRoot string, primary []retrieve.Candidate, maxTokens, primaryTokens int) ([]xref.SelectedSection, error) {
	adrIndex := xref.BuildADRIndex(forward.SortedPaths())

	contentByOrigin := make(map[string][]string)
	var originOrder []string
	for _, c := range primary {
		if _, ok := contentByOrigin[c.Path]; !ok {
			originOrder = append(originOrder, c.Path)
		}
		contentByOrigin[c.Path] = append(contentByOrigin[c.Path], c.Content)
	}

	var refs []xref.Reference
	for _, origin := range originOrder {
		content := strings.Join(contentByOrigin[origin], "\n")
		refs = append(refs, xref.ParseReferences(origin, content, adrIndex)...)
	}
	if len(refs) == 0 {
		return nil, nil
	}

	loadLines := func(p string) ([]string, error) {
		content, err := readFile(corpusRoot, p)
		if err != nil {
			return nil, err
		}
		return strings.Split(strings.TrimSuffix(strings.ReplaceAll(content, "\r\n", "\n"), "\n"), "\n"), nil
	}

	subBudget := xref.SubBudget(maxTokens, primaryTokens)
	return xref.Expand(refs, forward.Files, loadLines, subBudget), nil
}

func readFile(corpusRoot, relPath string) (string, error) {
	absPath := filepath.Join(corpusRoot, filepath.FromSlash(relPath))
	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func headingOrPath(c retrieve.Candidate) string {
	if c.Heading != "" {
		return c.Heading
	}
	return c.Path
}

// perSectionBudget divides the global budget evenly across sections so no
// single section's extractive refinement dominates the digest.
func perSectionBudget(maxTokens, numSections int) int {
	if numSections <= 0 {
		return maxTokens
	}
	return maxTokens / numSections
}
