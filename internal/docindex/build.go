package docindex

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/corpusdigest/digest/internal/corpuswalk"
	"github.com/corpusdigest/digest/internal/digesterrors"
	"github.com/corpusdigest/digest/internal/tokenize"
)

// BuildOptions configures a corpus build.
type BuildOptions struct {
	Extensions      []string
	Roots           []string
	ExcludePatterns []string
	Logger          *slog.Logger
}

// BuildOption sets one BuildOptions field.
type BuildOption func(*BuildOptions)

// WithExtensions overrides the default extension allow-list.
func WithExtensions(exts []string) BuildOption {
	return func(o *BuildOptions) { o.Extensions = exts }
}

// WithRoots restricts the walk to the given corpus-relative roots.
func WithRoots(roots []string) BuildOption {
	return func(o *BuildOptions) { o.Roots = roots }
}

// WithExcludePatterns adds caller-supplied exclusion substrings.
func WithExcludePatterns(patterns []string) BuildOption {
	return func(o *BuildOptions) { o.ExcludePatterns = patterns }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *BuildOptions) { o.Logger = l }
}

// Build walks corpusRoot, indexes every matching file, and returns the
// completed forward index, reverse index, and stats.
func Build(corpusRoot string, opts ...BuildOption) (*ForwardIndex, *ReverseIndex, *Stats, error) {
	o := &BuildOptions{
		Extensions: []string{"md", "txt", "rst"},
		Logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	tok, err := tokenize.New()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", digesterrors.ErrInvalidInput, err)
	}
	indexer := NewIndexer(tok)

	files := make(map[string]*DocumentEntry)
	var batchErrs []error

	walkErr := corpuswalk.Walk(corpusRoot, corpuswalk.Options{
		Extensions:      o.Extensions,
		Roots:           o.Roots,
		ExcludePatterns: o.ExcludePatterns,
	}, func(rel, abs string) error {
		entry, err := indexer.IndexFile(rel, abs)
		if err != nil {
			o.Logger.Warn("skipping unreadable file", "path", abs, "error", err)
			batchErrs = append(batchErrs, err)
			return nil
		}
		files[rel] = entry
		return nil
	})
	if walkErr != nil {
		return nil, nil, nil, fmt.Errorf("%w: walking %s: %v", digesterrors.ErrInvalidInput, corpusRoot, walkErr)
	}

	avgDocLength, idfMap := ComputeCorpusStats(files)

	forward := &ForwardIndex{
		Files:        files,
		IndexedAt:    strconv.FormatInt(time.Now().Unix(), 10),
		Version:      CurrentVersion,
		AvgDocLength: avgDocLength,
		IDFMap:       idfMap,
		BuildID:      uuid.NewString(),
	}

	reverse := buildReverseIndex(files, tok)

	totalHeadings, totalLinks := 0, 0
	for _, doc := range files {
		totalHeadings += len(doc.Headings)
		totalLinks += len(doc.Links)
	}

	stats := &Stats{
		TotalFiles:    len(files),
		TotalKeywords: len(reverse.Keywords),
		TotalHeadings: totalHeadings,
		TotalLinks:    totalLinks,
		IndexedAt:     forward.IndexedAt,
	}

	o.Logger.Info("build complete",
		"files", stats.TotalFiles,
		"keywords", stats.TotalKeywords,
		"headings", stats.TotalHeadings,
		"links", stats.TotalLinks,
	)
	if len(batchErrs) > 0 {
		o.Logger.Warn("build completed with skipped files",
			"skipped", len(batchErrs),
			"error", &digesterrors.BatchError{Errors: batchErrs},
		)
	}

	return forward, reverse, stats, nil
}

// buildReverseIndex inverts the document collection into a term -> postings
// mapping. Heading tokens carry positional postings; body and
// heading-set tokens carry path-only postings.
func buildReverseIndex(files map[string]*DocumentEntry, tok *tokenize.Tokenizer) *ReverseIndex {
	keywords := make(map[string][]Posting)

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, path := range paths {
		doc := files[path]

		for _, kw := range doc.Keywords {
			keywords[kw] = append(keywords[kw], Posting{File: path})
		}
		for _, kw := range doc.BodyKeywords {
			keywords[kw] = append(keywords[kw], Posting{File: path})
		}
		for _, h := range doc.Headings {
			line := h.Line
			heading := h.Text
			level := h.Level
			// Re-derive stemmed heading tokens for positional postings;
			// these duplicate entries in doc.Keywords but carry line info.
			for _, kw := range tok.ExtractStemmedTokens(h.Text) {
				keywords[kw] = append(keywords[kw], Posting{
					File:    path,
					Line:    &line,
					Heading: &heading,
					Level:   &level,
				})
			}
		}
	}
	return &ReverseIndex{Keywords: keywords}
}
